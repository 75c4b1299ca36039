// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package protocol

import (
	"testing"

	json "github.com/segmentio/encoding/json"
)

func TestDecodeRequest(t *testing.T) {
	data := []byte(`{"jsonrpc":"2.0","id":7,"method":"call_tool","params":{"name":"echo"}}`)
	req, resp, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if resp != nil {
		t.Fatalf("got Response, want Request")
	}
	if req.ID != 7 || req.Method != "call_tool" {
		t.Errorf("req = %+v", req)
	}
	if req.IsNotification() {
		t.Error("IsNotification() = true, want false")
	}
}

func TestDecodeNotification(t *testing.T) {
	req, _, err := Decode([]byte(`{"jsonrpc":"2.0","method":"progress"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !req.IsNotification() {
		t.Error("IsNotification() = false, want true")
	}
}

func TestDecodeResponse(t *testing.T) {
	_, resp, err := Decode([]byte(`{"jsonrpc":"2.0","id":3,"result":{"ok":true}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if resp.ID != 3 || resp.Error != nil {
		t.Errorf("resp = %+v", resp)
	}
}

func TestDecodeBatchRejected(t *testing.T) {
	_, _, err := Decode([]byte(`[{"jsonrpc":"2.0","id":1,"method":"a"}]`))
	werr, ok := err.(*WireError)
	if !ok || werr.Code != CodeInvalidRequest {
		t.Fatalf("err = %v, want CodeInvalidRequest", err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	_, _, err := Decode([]byte(`{not json`))
	werr, ok := err.(*WireError)
	if !ok || werr.Code != CodeParseError {
		t.Fatalf("err = %v, want CodeParseError", err)
	}
}

func TestNewRequestAndResponse(t *testing.T) {
	req, err := NewRequest(1, "echo", map[string]string{"text": "hi"})
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	var params map[string]string
	if err := json.Unmarshal(req.Params, &params); err != nil {
		t.Fatalf("unmarshal params: %v", err)
	}
	if params["text"] != "hi" {
		t.Errorf("params = %v", params)
	}

	resp, err := NewResultResponse(1, map[string]bool{"ok": true})
	if err != nil {
		t.Fatalf("NewResultResponse: %v", err)
	}
	if resp.Error != nil {
		t.Errorf("resp.Error = %v, want nil", resp.Error)
	}

	errResp := NewErrorResponse(1, NewError(CodeMethodNotFound, "Method not found"))
	if errResp.Error.Code != CodeMethodNotFound {
		t.Errorf("errResp.Error.Code = %d", errResp.Error.Code)
	}
}
