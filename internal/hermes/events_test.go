package hermes

import (
	"encoding/json"
	"testing"
)

func TestGenerateRequestParsing(t *testing.T) {
	raw := `{
		"user_input": "hello",
		"history": ["Alice: hi"],
		"avatars": ["Alice", "Benji", "Caden"],
		"participant_role": "Alice",
		"turn_id": 2,
		"variant": "autotalk"
	}`

	var req GenerateRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		t.Fatalf("failed to parse GenerateRequest: %v", err)
	}

	if req.Variant != "autotalk" {
		t.Errorf("expected variant 'autotalk', got '%s'", req.Variant)
	}
	if req.ParticipantRole != "Alice" {
		t.Errorf("expected participant_role 'Alice', got '%s'", req.ParticipantRole)
	}
	if len(req.Avatars) != 3 {
		t.Errorf("expected 3 avatars, got %d", len(req.Avatars))
	}
	if req.TurnID == nil || *req.TurnID != 2 {
		t.Errorf("expected turn_id 2, got %v", req.TurnID)
	}
}

func TestGenerateReplyOmitsEmpty(t *testing.T) {
	data, err := json.Marshal(GenerateReply{Error: "no persona for Zed", Kind: "configuration"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := fields["dialogue"]; ok {
		t.Errorf("expected dialogue to be omitted on error, got %s", data)
	}
	if fields["kind"] != "configuration" {
		t.Errorf("expected kind 'configuration', got %v", fields["kind"])
	}
}
