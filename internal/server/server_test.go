package server

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ironsheep/omr-grader/internal/config"
	"github.com/ironsheep/omr-grader/internal/logging"
)

func TestNew(t *testing.T) {
	s := New(config.Default(), logging.Discard())
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.cache == nil {
		t.Fatal("New() did not initialize cache")
	}
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{"string id", `{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`, "test-1", "tools/list"},
		{"number id", `{"jsonrpc":"2.0","id":42,"method":"ping"}`, float64(42), "ping"},
		{"null id", `{"jsonrpc":"2.0","id":null,"method":"initialize"}`, nil, "initialize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			if err := json.Unmarshal([]byte(tt.json), &req); err != nil {
				t.Fatalf("Failed to unmarshal: %v", err)
			}
			if req.ID != tt.wantID {
				t.Errorf("ID: got %v (%T), want %v (%T)", req.ID, req.ID, tt.wantID, tt.wantID)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("Method: got %s, want %s", req.Method, tt.wantMethod)
			}
		})
	}
}

func TestHandleRequest_Initialize(t *testing.T) {
	s := newTestServer()
	resp := s.handleRequest(t.Context(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "initialize"})

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("result has type %T", resp.Result)
	}
	if result["protocolVersion"] != protocolVersion {
		t.Errorf("protocolVersion = %v", result["protocolVersion"])
	}
	info := result["serverInfo"].(map[string]interface{})
	if info["name"] != serverName || info["version"] != Version {
		t.Errorf("serverInfo = %v", info)
	}
}

func TestHandleRequest_Routing(t *testing.T) {
	s := newTestServer()

	if resp := s.handleRequest(t.Context(), &MCPRequest{Method: "notifications/initialized"}); resp != nil {
		t.Errorf("notification got a response: %+v", resp)
	}
	if resp := s.handleRequest(t.Context(), &MCPRequest{ID: 2, Method: "ping"}); resp == nil || resp.Error != nil {
		t.Errorf("ping: %+v", resp)
	}

	resp := s.handleRequest(t.Context(), &MCPRequest{ID: 3, Method: "resources/list"})
	if resp.Error == nil || resp.Error.Code != -32601 {
		t.Fatalf("unknown method: %+v", resp)
	}
	if resp.Error.Data != nil {
		t.Errorf("method-not-found error carries data: %v", resp.Error.Data)
	}
}

func TestServe(t *testing.T) {
	s := newTestServer()
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`this is not json`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"ping"}`,
	}, "\n")

	var out bytes.Buffer
	if err := s.Serve(t.Context(), strings.NewReader(in), &out); err != nil {
		t.Fatalf("Serve() error = %v", err)
	}

	dec := json.NewDecoder(&out)
	var ids []float64
	for dec.More() {
		var resp struct {
			ID     float64                `json:"id"`
			Result map[string]interface{} `json:"result"`
		}
		if err := dec.Decode(&resp); err != nil {
			t.Fatalf("invalid response line: %v", err)
		}
		ids = append(ids, resp.ID)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Errorf("response ids = %v, want [1 2 3]", ids)
	}
}

func TestServe_CancelledContext(t *testing.T) {
	s := newTestServer()
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	var out bytes.Buffer
	err := s.Serve(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &out)
	if err == nil {
		t.Error("expected context error")
	}
	if out.Len() != 0 {
		t.Errorf("responded after cancellation: %s", out.String())
	}
}
