package hermes

import (
	"time"

	"github.com/MikeSquared-Agency/colive/internal/dialogue"
)

const (
	// SubjectGenerated carries a DialogueEvent after every completed turn.
	SubjectGenerated = "colive.dialogue.generated"
	// SubjectGenerate serves GenerateRequest over request-reply.
	SubjectGenerate = "colive.dialogue.generate"
	// QueueGenerate is the queue group replicas share on SubjectGenerate.
	QueueGenerate = "colive"
)

// DialogueEvent is emitted once per completed turn, fallback included.
type DialogueEvent struct {
	RequestID       string          `json:"request_id"`
	Variant         string          `json:"variant"`
	Model           string          `json:"model"`
	Avatars         []string        `json:"avatars"`
	ParticipantRole string          `json:"participant_role"`
	Dialogue        []dialogue.Turn `json:"dialogue"`
	Degraded        bool            `json:"degraded"`
	Stage           string          `json:"stage"`
	Timestamp       time.Time       `json:"timestamp"`
}

// GenerateRequest is a turn request sent over NATS, with an optional variant.
type GenerateRequest struct {
	dialogue.Request
	Variant string `json:"variant,omitempty"`
}

// GenerateReply mirrors the HTTP response body: dialogue on success, error
// and kind otherwise.
type GenerateReply struct {
	RequestID string          `json:"request_id,omitempty"`
	Dialogue  []dialogue.Turn `json:"dialogue,omitempty"`
	Error     string          `json:"error,omitempty"`
	Kind      string          `json:"kind,omitempty"`
}
