package dialogue

import (
	"errors"
	"testing"
)

func intPtr(n int) *int { return &n }

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"valid", Request{Avatars: []string{"Alice", "Benji", "Caden"}, ParticipantRole: "Alice"}, false},
		{"empty avatars", Request{ParticipantRole: "Alice"}, true},
		{"participant not an avatar", Request{Avatars: []string{"Alice", "Benji"}, ParticipantRole: "Zed"}, true},
		{"duplicate avatar", Request{Avatars: []string{"Alice", "Alice"}, ParticipantRole: "Alice"}, true},
		{"blank avatar", Request{Avatars: []string{"Alice", " "}, ParticipantRole: "Alice"}, true},
		{"sentinel avatar", Request{Avatars: []string{"Alice", SentinelSpeaker}, ParticipantRole: "Alice"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestAllowedSpeakers_Group(t *testing.T) {
	req := &Request{Avatars: []string{"Alice", "Benji", "Caden"}, ParticipantRole: "Benji"}

	got, err := AllowedSpeakers(req, PolicyGroup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "Alice" || got[1] != "Caden" {
		t.Errorf("expected [Alice Caden], got %v", got)
	}
}

func TestAllowedSpeakers_Rotation(t *testing.T) {
	avatars := []string{"Alice", "Benji", "Caden"}
	tests := []struct {
		turn int
		want string
	}{
		{0, "Alice"},
		{1, "Benji"},
		{5, "Caden"},
		{-1, "Caden"},
	}

	for _, tt := range tests {
		req := &Request{Avatars: avatars, ParticipantRole: "Alice", TurnID: intPtr(tt.turn)}
		got, err := AllowedSpeakers(req, PolicyRotation)
		if err != nil {
			t.Fatalf("turn %d: unexpected error: %v", tt.turn, err)
		}
		if len(got) != 1 || got[0] != tt.want {
			t.Errorf("turn %d: expected [%s], got %v", tt.turn, tt.want, got)
		}
	}
}

func TestAllowedSpeakers_RotationNeedsTurnID(t *testing.T) {
	req := &Request{Avatars: []string{"Alice"}, ParticipantRole: "Alice"}
	if _, err := AllowedSpeakers(req, PolicyRotation); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestFallback(t *testing.T) {
	turns := Fallback("garbage")
	if !IsFallback(turns) {
		t.Fatalf("expected fallback, got %+v", turns)
	}
	if turns[0].Emotion != EmotionNeutral || turns[0].Gesture != GestureClapping {
		t.Errorf("unexpected fallback tags: %+v", turns[0])
	}
	if turns[0].Text != "Model response format error. Raw output:\ngarbage" {
		t.Errorf("unexpected fallback text %q", turns[0].Text)
	}
}

func TestVocabulary(t *testing.T) {
	v := DefaultVocabulary

	if !v.Allows("Benji", GestureThumbsUp) {
		t.Error("Benji should be allowed thumbsUp")
	}
	if v.Allows("Caden", GestureThumbsUp) {
		t.Error("Caden should not be allowed thumbsUp")
	}
	if !v.Allows("Dana", GestureListening) {
		t.Error("unknown speakers should get the full gesture set")
	}
	if v.DefaultGesture("Alice") != GestureStartTalking {
		t.Errorf("expected start talking, got %q", v.DefaultGesture("Alice"))
	}

	narrowed := v.Restrict("Dana", []string{"listening", "not-a-gesture"})
	if narrowed.Allows("Dana", GestureClapping) {
		t.Error("restricted Dana should not clap")
	}
	if !narrowed.Allows("Dana", GestureListening) {
		t.Error("restricted Dana should listen")
	}
	if !v.Allows("Dana", GestureClapping) {
		t.Error("Restrict must not mutate the receiver")
	}
}
