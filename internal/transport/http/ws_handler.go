package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/koinonia-app/rooms-gateway/internal/auth"
	"github.com/koinonia-app/rooms-gateway/internal/core"
	"github.com/koinonia-app/rooms-gateway/internal/proto"
	"github.com/koinonia-app/rooms-gateway/internal/ratelimit"
)

// WSHandler admits connections and bridges them to core.Client.
type WSHandler struct {
	hub           *core.Hub
	verifier      auth.Verifier // nil disables verification entirely
	limiter       *ratelimit.Limiter
	verifyTimeout time.Duration
	log           *zerolog.Logger
}

// NewWSHandler builds the websocket handler.
func NewWSHandler(hub *core.Hub, verifier auth.Verifier, limiter *ratelimit.Limiter, verifyTimeout time.Duration, logger *zerolog.Logger) *WSHandler {
	if verifyTimeout <= 0 {
		verifyTimeout = 5 * time.Second
	}
	return &WSHandler{
		hub:           hub,
		verifier:      verifier,
		limiter:       limiter,
		verifyTimeout: verifyTimeout,
		log:           logger,
	}
}

// Handle upgrades the connection after the handshake checks pass.
//
// The admission policy favors availability: a failed token verification
// degrades to an anonymous identity instead of rejecting; only rate
// limiting (and the defensive no-identity case) refuses a connection.
func (h *WSHandler) Handle(c *gin.Context) {
	r := c.Request
	token := bearerToken(r)

	// The pool is chosen from the prospective status, before verification.
	prospective := token != "" && h.verifier != nil
	if h.limiter != nil && !h.limiter.Allow(c.ClientIP(), prospective) {
		h.log.Warn().Str("addr", c.ClientIP()).Msg("connection rate limited")
		c.JSON(stdhttp.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded, try again later"})
		return
	}

	connectionID := uuid.NewString()
	client := h.authenticate(r.Context(), connectionID, token)
	if client == nil {
		c.JSON(stdhttp.StatusForbidden, ErrorResponse{Error: "invalid user identification"})
		return
	}

	conn, err := websocket.Accept(c.Writer, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	h.hub.RegisterClient(client)
	defer h.hub.UnregisterClient(client)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh
	close(client.Commands)

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("connection_id", client.ID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

// authenticate resolves the connection identity. Returns nil only when no
// identity could be produced at all, which the anonymous fallback makes a
// should-not-happen case.
func (h *WSHandler) authenticate(ctx context.Context, connectionID, token string) *core.Client {
	if token != "" && h.verifier != nil {
		verifyCtx, cancel := context.WithTimeout(ctx, h.verifyTimeout)
		defer cancel()

		identity, err := h.verifier.Verify(verifyCtx, token)
		if err == nil && identity.UserID != "" {
			h.log.Debug().Str("connection_id", connectionID).Str("user_id", identity.UserID).Msg("authenticated connection")
			return core.NewClient(connectionID, identity.UserID, identity.Name, true)
		}
		h.log.Warn().Err(err).Str("connection_id", connectionID).Msg("token verification failed, falling back to anonymous")
	}

	if connectionID == "" {
		return nil
	}
	return core.NewClient(connectionID, "", "", false)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}

		cmd, protoErr := inboundToCommand(inbound)
		if protoErr != nil {
			if writeErr := wsjson.Write(ctx, conn, proto.Outbound{
				Type:  proto.OutboundError,
				Error: protoErr,
			}); writeErr != nil {
				return writeErr
			}
			continue
		}

		select {
		case client.Commands <- cmd:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// bearerToken pulls the optional handshake token from the query string or
// the Authorization header. Absence is legal.
func bearerToken(r *stdhttp.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
