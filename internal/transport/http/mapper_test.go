package http

import (
	"encoding/json"
	"testing"

	"github.com/koinonia-app/rooms-gateway/internal/core"
	"github.com/koinonia-app/rooms-gateway/internal/proto"
)

func TestContentChangeAcceptsNumericID(t *testing.T) {
	// Numerically-keyed entities put a JSON number on the wire.
	cmd, perr := inboundToCommand(proto.Inbound{
		Type: proto.InboundContentUpdate,
		Data: json.RawMessage(`{"type":"post","id":42}`),
	})
	if perr != nil {
		t.Fatalf("numeric id rejected: %+v", perr)
	}
	if cmd.Kind != core.CommandContentChange || cmd.ContentType != "post" || cmd.ContentID != "42" {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestContentChangeAcceptsStringID(t *testing.T) {
	cmd, perr := inboundToCommand(proto.Inbound{
		Type: proto.InboundContentCreate,
		Data: json.RawMessage(`{"type":"event","id":"abc-1"}`),
	})
	if perr != nil {
		t.Fatalf("string id rejected: %+v", perr)
	}
	if cmd.ContentID != "abc-1" {
		t.Fatalf("unexpected content id: %q", cmd.ContentID)
	}
}

func TestContentChangeRejectsMissingID(t *testing.T) {
	_, perr := inboundToCommand(proto.Inbound{
		Type: proto.InboundContentDelete,
		Data: json.RawMessage(`{"type":"post"}`),
	})
	if perr == nil || perr.Code != core.ErrCodeBadRequest {
		t.Fatalf("expected bad_request, got %+v", perr)
	}
}
