package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/koinonia-app/rooms-gateway/internal/auth"
	"github.com/koinonia-app/rooms-gateway/internal/config"
	"github.com/koinonia-app/rooms-gateway/internal/core"
	"github.com/koinonia-app/rooms-gateway/internal/log"
	"github.com/koinonia-app/rooms-gateway/internal/store/sqlite"
)

func startAPIServer(t *testing.T) (*httptest.Server, *auth.JWTConfig) {
	t.Helper()

	st, err := sqlite.New(filepath.Join(t.TempDir(), "api_test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	jwtCfg := &auth.JWTConfig{
		Secret:   []byte("api-test-secret"),
		Issuer:   "test",
		Audience: "test",
		TTL:      time.Hour,
	}
	service := auth.NewService(st, jwtCfg)

	hub := core.NewHub(nil, core.HubOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	router := NewRouter(hub, auth.NewJWTVerifier(jwtCfg), service, nil, config.Default(), log.Nop())
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return ts, jwtCfg
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body any) (int, AuthResponse) {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := ts.Client().Post(ts.URL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()

	var out AuthResponse
	if resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode, out
}

func TestRegisterLoginFlow(t *testing.T) {
	ts, jwtCfg := startAPIServer(t)

	status, reg := postJSON(t, ts, "/api/register", RegisterRequest{Username: "alice", Password: "secret123"})
	if status != 201 {
		t.Fatalf("register status = %d", status)
	}
	if reg.Token == "" {
		t.Fatalf("register returned empty token")
	}

	status, login := postJSON(t, ts, "/api/login", LoginRequest{Username: "alice", Password: "secret123"})
	if status != 200 {
		t.Fatalf("login status = %d", status)
	}

	claims, err := auth.ValidateToken(jwtCfg, login.Token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.Username != "alice" || claims.IsGuest {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ts, _ := startAPIServer(t)

	if status, _ := postJSON(t, ts, "/api/register", RegisterRequest{Username: "bob", Password: "secret123"}); status != 201 {
		t.Fatalf("first register status = %d", status)
	}
	if status, _ := postJSON(t, ts, "/api/register", RegisterRequest{Username: "bob", Password: "other456"}); status != 409 {
		t.Fatalf("duplicate register status = %d", status)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ts, _ := startAPIServer(t)

	if status, _ := postJSON(t, ts, "/api/register", RegisterRequest{Username: "carol", Password: "secret123"}); status != 201 {
		t.Fatalf("register status = %d", status)
	}
	if status, _ := postJSON(t, ts, "/api/login", LoginRequest{Username: "carol", Password: "wrong"}); status != 401 {
		t.Fatalf("wrong-password login status = %d", status)
	}
}

func TestGuestToken(t *testing.T) {
	ts, jwtCfg := startAPIServer(t)

	status, out := postJSON(t, ts, "/api/guest", struct{}{})
	if status != 200 {
		t.Fatalf("guest status = %d", status)
	}

	claims, err := auth.ValidateToken(jwtCfg, out.Token)
	if err != nil {
		t.Fatalf("guest token does not validate: %v", err)
	}
	if !claims.IsGuest {
		t.Fatalf("guest token not flagged as guest: %+v", claims)
	}
	if !strings.HasPrefix(claims.Username, "guest_") {
		t.Fatalf("unexpected guest username %q", claims.Username)
	}
}

func TestStatsEndpoint(t *testing.T) {
	ts, _ := startAPIServer(t)

	resp, err := ts.Client().Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("stats request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("stats status = %d", resp.StatusCode)
	}

	var stats core.Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.ActiveConnections != 0 {
		t.Fatalf("expected no active connections, got %d", stats.ActiveConnections)
	}
}
