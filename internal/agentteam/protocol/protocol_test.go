package protocol

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestSessionRequestRoundTrips(t *testing.T) {
	cases := []SessionRequest{
		{Type: TypeGetStatus},
		{Type: TypePrompt, Text: "hello", Files: []FileAttachment{{Path: "a.go", Content: "package a"}}},
		{Type: TypeGetOutput, Last: 5, AgentOnly: true},
		{Type: TypeCancel},
		{Type: TypeApprovePermission},
		{Type: TypeDenyPermission},
		{Type: TypeRestart},
		{Type: TypeShutdown},
		{Type: TypeSetMode, Mode: "code"},
		{Type: TypeSetConfig, Key: "model", Value: "gpt"},
	}
	for _, want := range cases {
		data, err := json.Marshal(want)
		if err != nil {
			t.Fatalf("marshal %+v: %v", want, err)
		}
		var got SessionRequest
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if !reflect.DeepEqual(want, got) {
			t.Errorf("round trip mismatch: want %+v, got %+v", want, got)
		}
	}
}

func TestSessionResponseRoundTrips(t *testing.T) {
	cases := []SessionResponse{
		Ok("Prompt submitted"),
		Err("Agent is already running"),
		StatusResp(StatusSummary{Name: "test-1", AgentType: "mock", Status: "idle"}),
		OutputResp("mock", []OutputEntry{{Timestamp: "2024-01-01T00:00:00.000Z", UpdateType: "message", Content: "hi"}}),
	}
	for _, want := range cases {
		data, err := json.Marshal(want)
		if err != nil {
			t.Fatalf("marshal %+v: %v", want, err)
		}
		var got SessionResponse
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if !reflect.DeepEqual(want, got) {
			t.Errorf("round trip mismatch: want %+v, got %+v", want, got)
		}
	}
}

func TestGetStatusDiscriminatorMatchesSpec(t *testing.T) {
	data, err := json.Marshal(SessionRequest{Type: TypeGetStatus})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"type":"GetStatus"}` {
		t.Errorf("got %s, want exactly {\"type\":\"GetStatus\"}", data)
	}
}
