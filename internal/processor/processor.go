package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/colive/internal/composer"
	"github.com/MikeSquared-Agency/colive/internal/dialogue"
	"github.com/MikeSquared-Agency/colive/internal/extractor"
	"github.com/MikeSquared-Agency/colive/internal/hermes"
	"github.com/MikeSquared-Agency/colive/internal/llm"
	"github.com/MikeSquared-Agency/colive/internal/metrics"
	"github.com/MikeSquared-Agency/colive/internal/persona"
)

// Publisher sends events to the message bus.
type Publisher interface {
	Publish(subject string, data any) error
}

type Options struct {
	DefaultVariant string
	// Model overrides every variant's model when set.
	Model   string
	Timeout time.Duration
	// Strict enforces the emotion and gesture vocabulary on replies.
	Strict     bool
	Vocabulary dialogue.Vocabulary
}

// Reply is the outcome of one turn.
type Reply struct {
	RequestID string          `json:"request_id"`
	Turns     []dialogue.Turn `json:"dialogue"`
	Degraded  bool            `json:"degraded"`
	Stage     extractor.Stage `json:"stage"`
	Variant   string          `json:"variant"`
	Model     string          `json:"model"`
}

// Processor runs the turn pipeline: compose, one completion call, extract.
type Processor struct {
	personas  persona.Store
	llm       llm.Completer
	extractor *extractor.Extractor
	hermes    Publisher
	opts      Options
	logger    *slog.Logger
}

// New builds a Processor. pub may be nil to disable events.
func New(personas persona.Store, completer llm.Completer, ext *extractor.Extractor, pub Publisher, opts Options, logger *slog.Logger) *Processor {
	if opts.DefaultVariant == "" {
		opts.DefaultVariant = composer.DefaultVariant
	}
	return &Processor{
		personas:  personas,
		llm:       completer,
		extractor: ext,
		hermes:    pub,
		opts:      opts,
		logger:    logger,
	}
}

// Variant resolves name, or the default when empty, with the model override applied.
func (p *Processor) Variant(name string) (composer.Variant, error) {
	if name == "" {
		name = p.opts.DefaultVariant
	}
	v, err := composer.LookupVariant(name)
	if err != nil {
		return composer.Variant{}, err
	}
	return v.WithModel(p.opts.Model), nil
}

// Prompt validates req and composes the messages without calling the model.
func (p *Processor) Prompt(ctx context.Context, req *dialogue.Request, variantName string) (*composer.Prompt, error) {
	v, err := p.Variant(variantName)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	personas, err := p.personas.Lookup(ctx, req.Avatars)
	if err != nil {
		return nil, fmt.Errorf("lookup personas: %w", err)
	}
	return composer.Compose(req, personas, v, p.opts.Vocabulary)
}

// Generate produces the next dialogue turns for req. Malformed model output
// degrades to the fallback reply; only request, configuration and transport
// problems are returned as errors.
func (p *Processor) Generate(ctx context.Context, req *dialogue.Request, variantName string) (*Reply, error) {
	requestID := uuid.NewString()
	logger := p.logger.With("request_id", requestID)

	prompt, err := p.Prompt(ctx, req, variantName)
	if err != nil {
		return nil, err
	}
	v := prompt.Variant

	callCtx := ctx
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := p.llm.Complete(callCtx, prompt.Request())
	metrics.CompletionDuration.WithLabelValues(v.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		timeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded)
		status := "error"
		if timeout {
			status = "timeout"
		}
		metrics.CompletionsTotal.WithLabelValues(v.Model, status).Inc()
		logger.Error("completion failed", "variant", v.Name, "model", v.Model, "timeout", timeout, "error", err)
		return nil, &UpstreamError{Model: v.Model, Timeout: timeout, Err: err}
	}
	metrics.CompletionsTotal.WithLabelValues(v.Model, "ok").Inc()

	constraints := extractor.Constraints{Allowed: prompt.Allowed}
	if p.opts.Strict {
		constraints.Vocabulary = prompt.Vocabulary
	}
	result := p.extractor.Extract(raw, constraints)
	metrics.ExtractionsTotal.WithLabelValues(string(result.Stage)).Inc()
	metrics.DroppedTurnsTotal.Add(float64(result.Dropped))

	reply := &Reply{
		RequestID: requestID,
		Turns:     result.Turns,
		Degraded:  result.Degraded,
		Stage:     result.Stage,
		Variant:   v.Name,
		Model:     v.Model,
	}

	logger.Info("turn generated",
		"variant", v.Name,
		"model", v.Model,
		"turns", len(reply.Turns),
		"stage", result.Stage,
		"dropped", result.Dropped,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	p.publish(logger, req, reply)
	return reply, nil
}

func (p *Processor) publish(logger *slog.Logger, req *dialogue.Request, reply *Reply) {
	if p.hermes == nil {
		return
	}
	evt := hermes.DialogueEvent{
		RequestID:       reply.RequestID,
		Variant:         reply.Variant,
		Model:           reply.Model,
		Avatars:         req.Avatars,
		ParticipantRole: req.ParticipantRole,
		Dialogue:        reply.Turns,
		Degraded:        reply.Degraded,
		Stage:           string(reply.Stage),
		Timestamp:       time.Now().UTC(),
	}
	if err := p.hermes.Publish(hermes.SubjectGenerated, evt); err != nil {
		logger.Warn("failed to publish dialogue event", "error", err)
	}
}

// HandleGenerate is the NATS request-reply handler for hermes.SubjectGenerate.
// ctx bounds the whole turn; the completion call is further bounded by the
// configured timeout.
func (p *Processor) HandleGenerate(ctx context.Context, data []byte) []byte {
	var out hermes.GenerateReply

	var req hermes.GenerateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		out.Error = "invalid request body: " + err.Error()
		out.Kind = string(KindInvalidRequest)
	} else {
		reply, err := p.Generate(ctx, &req.Request, req.Variant)
		if err != nil {
			out.Error = err.Error()
			out.Kind = string(KindOf(err))
		} else {
			out.RequestID = reply.RequestID
			out.Dialogue = reply.Turns
		}
	}

	payload, err := json.Marshal(out)
	if err != nil {
		p.logger.Error("failed to marshal generate reply", "error", err)
		return []byte(`{"error":"internal error","kind":"internal"}`)
	}
	return payload
}
