// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	json "github.com/segmentio/encoding/json"

	"github.com/coremcp/mcpd/content"
	"github.com/coremcp/mcpd/registry"
	"github.com/coremcp/mcpd/toolschema"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	s := New(Config{ResourcesEnabled: true, Workers: 2, QueueSize: 16}, nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})
	return s
}

// syncReply collects exactly one reply synchronously, for tests that don't
// want to race a worker goroutine against assertions.
func syncReply() (replyFunc, func() []byte) {
	var mu sync.Mutex
	var got []byte
	done := make(chan struct{}, 1)
	return func(ctx context.Context, resp []byte) error {
			mu.Lock()
			got = append([]byte(nil), resp...)
			mu.Unlock()
			done <- struct{}{}
			return nil
		}, func() []byte {
			<-done
			mu.Lock()
			defer mu.Unlock()
			return got
		}
}

func TestDispatchCallToolSuccess(t *testing.T) {
	s := testServer(t)
	err := s.Registry().RegisterTool(registry.Tool{
		Name: "echo",
		Params: []toolschema.ParamSchema{
			{Name: "message", Type: "string", Required: true},
		},
	}, func(ctx context.Context, arguments []byte) ([]content.Item, bool, error) {
		var args struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(arguments, &args); err != nil {
			return nil, true, err
		}
		return []content.Item{content.Text(args.Message, "text/plain")}, false, nil
	})
	if err != nil {
		t.Fatalf("RegisterTool: %v", err)
	}

	reply, wait := syncReply()
	body := []byte(`{"jsonrpc":"2.0","id":1,"method":"call_tool","params":{"name":"echo","arguments":{"message":"hi"}}}`)
	s.dispatch(context.Background(), body, "test-client", reply)

	var resp struct {
		JSONRPC string `json:"jsonrpc"`
		ID      uint64 `json:"id"`
		Result  struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
	}
	if err := json.Unmarshal(wait(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	want := []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{{Type: "text", Text: "hi"}}
	if diff := cmp.Diff(want, resp.Result.Content); diff != "" {
		t.Errorf("call_tool content mismatch (-want +got):\n%s", diff)
	}
	if resp.Result.IsError {
		t.Error("call_tool reported isError for a successful call")
	}
	if resp.ID != 1 {
		t.Errorf("response id = %d, want 1", resp.ID)
	}
}

func TestDispatchCallToolNotFound(t *testing.T) {
	s := testServer(t)
	reply, wait := syncReply()
	body := []byte(`{"jsonrpc":"2.0","id":2,"method":"call_tool","params":{"name":"missing"}}`)
	s.dispatch(context.Background(), body, "test-client", reply)

	var resp struct {
		Error *struct {
			Code    int32  `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(wait(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Errorf("got error %+v, want code -32000", resp.Error)
	}
}

func TestDispatchReadResourceDisabled(t *testing.T) {
	s := New(Config{ResourcesEnabled: false}, nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})
	reply, wait := syncReply()
	body := []byte(`{"jsonrpc":"2.0","id":3,"method":"read_resource","params":{"uri":"res://a"}}`)
	s.dispatch(context.Background(), body, "test-client", reply)

	var resp struct {
		Error *struct {
			Code int32 `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(wait(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != -32601 {
		t.Errorf("got error %+v, want code -32601", resp.Error)
	}
}

func TestDispatchNotificationGetsNoReply(t *testing.T) {
	s := testServer(t)
	called := make(chan struct{})
	replied := false
	reply := func(ctx context.Context, resp []byte) error {
		replied = true
		return nil
	}
	_ = s.Registry().RegisterTool(registry.Tool{Name: "noop"}, func(ctx context.Context, arguments []byte) ([]content.Item, bool, error) {
		close(called)
		return []content.Item{content.Text("ok", "")}, false, nil
	})

	body := []byte(`{"jsonrpc":"2.0","method":"call_tool","params":{"name":"noop"}}`)
	s.dispatch(context.Background(), body, "test-client", reply)

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("notification handler never ran")
	}
	if replied {
		t.Error("a notification (no id) should never receive a reply")
	}
}
