package dialogue

import (
	"errors"
	"fmt"
	"strings"
)

// SentinelSpeaker marks a degraded reply. It is never a valid avatar name.
const SentinelSpeaker = "System"

// ErrInvalidRequest is returned by Request.Validate and anything that derives from it.
var ErrInvalidRequest = errors.New("invalid turn request")

// Turn is one attributed utterance returned to the client.
type Turn struct {
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
	Emotion Emotion `json:"emotion"`
	Gesture Gesture `json:"gesture"`
}

// Request is the inbound turn request. History is oldest first.
type Request struct {
	UserInput       string   `json:"user_input"`
	History         []string `json:"history"`
	Avatars         []string `json:"avatars"`
	ParticipantRole string   `json:"participant_role"`
	TurnID          *int     `json:"turn_id,omitempty"`
}

// Validate checks the avatar/participant invariants.
func (r *Request) Validate() error {
	if len(r.Avatars) == 0 {
		return fmt.Errorf("%w: avatars must not be empty", ErrInvalidRequest)
	}
	seen := make(map[string]struct{}, len(r.Avatars))
	for _, name := range r.Avatars {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: avatar names must not be blank", ErrInvalidRequest)
		}
		if name == SentinelSpeaker {
			return fmt.Errorf("%w: %q is a reserved speaker name", ErrInvalidRequest, name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: duplicate avatar %q", ErrInvalidRequest, name)
		}
		seen[name] = struct{}{}
	}
	if _, ok := seen[r.ParticipantRole]; !ok {
		return fmt.Errorf("%w: participant_role %q is not one of avatars", ErrInvalidRequest, r.ParticipantRole)
	}
	return nil
}

// SpeakerPolicy decides who may speak in the upcoming turn.
type SpeakerPolicy string

const (
	// PolicyGroup lets every avatar except the human participant speak.
	PolicyGroup SpeakerPolicy = "group"
	// PolicyRotation picks exactly one speaker, avatars[turn_id mod len].
	PolicyRotation SpeakerPolicy = "rotation"
)

// AllowedSpeakers derives the allowed-speaker set for req under policy.
// The result keeps avatar order. req must already be valid.
func AllowedSpeakers(req *Request, policy SpeakerPolicy) ([]string, error) {
	switch policy {
	case PolicyRotation:
		if req.TurnID == nil {
			return nil, fmt.Errorf("%w: turn_id is required for rotation", ErrInvalidRequest)
		}
		return []string{CurrentSpeaker(req.Avatars, *req.TurnID)}, nil
	case PolicyGroup, "":
		allowed := make([]string, 0, len(req.Avatars))
		for _, name := range req.Avatars {
			if name != req.ParticipantRole {
				allowed = append(allowed, name)
			}
		}
		if len(allowed) == 0 {
			return nil, fmt.Errorf("%w: no avatars left besides the participant", ErrInvalidRequest)
		}
		return allowed, nil
	default:
		return nil, fmt.Errorf("unknown speaker policy %q", policy)
	}
}

// CurrentSpeaker returns the rotated speaker for turnID. Negative ids wrap.
func CurrentSpeaker(avatars []string, turnID int) string {
	n := len(avatars)
	idx := turnID % n
	if idx < 0 {
		idx += n
	}
	return avatars[idx]
}

// Fallback builds the single-turn degraded reply embedding raw for debugging.
func Fallback(raw string) []Turn {
	return []Turn{{
		Speaker: SentinelSpeaker,
		Text:    "Model response format error. Raw output:\n" + raw,
		Emotion: EmotionNeutral,
		Gesture: GestureClapping,
	}}
}

// IsFallback reports whether turns is the degraded sentinel reply.
func IsFallback(turns []Turn) bool {
	return len(turns) == 1 && turns[0].Speaker == SentinelSpeaker
}
