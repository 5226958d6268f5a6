package processor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/colive/internal/composer"
	"github.com/MikeSquared-Agency/colive/internal/dialogue"
	"github.com/MikeSquared-Agency/colive/internal/extractor"
	"github.com/MikeSquared-Agency/colive/internal/hermes"
	"github.com/MikeSquared-Agency/colive/internal/llm"
	"github.com/MikeSquared-Agency/colive/internal/persona"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePersonas map[string]persona.Record

func (f fakePersonas) Lookup(_ context.Context, names []string) (map[string]persona.Record, error) {
	out := make(map[string]persona.Record)
	var missing []string
	for _, n := range names {
		rec, ok := f[n]
		if !ok {
			missing = append(missing, n)
			continue
		}
		out[n] = rec
	}
	if len(missing) > 0 {
		return nil, &persona.MissingPersonaError{Names: missing}
	}
	return out, nil
}

var allPersonas = fakePersonas{
	"Alice": {Name: "Alice", Age: 27},
	"Benji": {Name: "Benji", Age: 24},
	"Caden": {Name: "Caden", Age: 31},
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []hermes.DialogueEvent
	err    error
}

func (r *recordingPublisher) Publish(subject string, data any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if evt, ok := data.(hermes.DialogueEvent); ok && subject == hermes.SubjectGenerated {
		r.events = append(r.events, evt)
	}
	return r.err
}

func fixedCompleter(raw string, seen *llm.Request) llm.Completer {
	return llm.CompleterFunc(func(ctx context.Context, req llm.Request) (string, error) {
		if seen != nil {
			*seen = req
		}
		return raw, nil
	})
}

func newRequest() *dialogue.Request {
	return &dialogue.Request{
		UserInput:       "Quiet hours are too early.",
		History:         []string{"Alice: hi"},
		Avatars:         []string{"Alice", "Benji", "Caden"},
		ParticipantRole: "Alice",
	}
}

func newProcessor(c llm.Completer, pub Publisher, opts Options) *Processor {
	return New(allPersonas, c, extractor.New(discardLogger()), pub, opts, discardLogger())
}

func TestGenerate_Success(t *testing.T) {
	var seen llm.Request
	raw := `[{"speaker": "Benji", "text": "Agreed!", "emotion": "happy", "gesture": "thumbsUp"}]`
	pub := &recordingPublisher{}
	p := newProcessor(fixedCompleter(raw, &seen), pub, Options{Timeout: time.Second, Strict: true})

	reply, err := p.Generate(context.Background(), newRequest(), "")
	require.NoError(t, err)

	assert.Equal(t, []dialogue.Turn{{Speaker: "Benji", Text: "Agreed!", Emotion: "happy", Gesture: "thumbsUp"}}, reply.Turns)
	assert.False(t, reply.Degraded)
	assert.Equal(t, "gpt4o", reply.Variant)
	assert.Equal(t, "gpt-4o", reply.Model)
	assert.NotEmpty(t, reply.RequestID)

	assert.Equal(t, "gpt-4o", seen.Model)
	assert.Equal(t, 300, seen.MaxTokens)
	require.Len(t, seen.Messages, 3)
	assert.Equal(t, llm.RoleSystem, seen.Messages[0].Role)

	require.Len(t, pub.events, 1)
	assert.Equal(t, reply.RequestID, pub.events[0].RequestID)
	assert.Equal(t, "direct", pub.events[0].Stage)
}

func TestGenerate_FallbackIsNotAnError(t *testing.T) {
	p := newProcessor(fixedCompleter("Sure! Here's the response you wanted.", nil), nil, Options{})

	reply, err := p.Generate(context.Background(), newRequest(), "")
	require.NoError(t, err)
	assert.True(t, reply.Degraded)
	assert.True(t, dialogue.IsFallback(reply.Turns))
	assert.Equal(t, extractor.StageFallback, reply.Stage)
}

func TestGenerate_ModelOverride(t *testing.T) {
	var seen llm.Request
	p := newProcessor(fixedCompleter("[]", &seen), nil, Options{Model: "gpt-4o-mini", DefaultVariant: "llama"})

	reply, err := p.Generate(context.Background(), newRequest(), "")
	require.NoError(t, err)
	assert.Equal(t, "llama", reply.Variant)
	assert.Equal(t, "gpt-4o-mini", seen.Model)
	assert.Equal(t, 250, seen.MaxTokens)
}

func TestGenerate_ModelOverrideAppliesToEveryVariant(t *testing.T) {
	for _, v := range composer.Variants() {
		var seen llm.Request
		p := newProcessor(fixedCompleter("[]", &seen), nil, Options{Model: "claude-sonnet-4-20250514"})
		req := newRequest()
		turn := 1
		req.TurnID = &turn

		reply, err := p.Generate(context.Background(), req, v.Name)
		require.NoError(t, err, v.Name)
		assert.Equal(t, "claude-sonnet-4-20250514", seen.Model, v.Name)
		assert.Equal(t, "claude-sonnet-4-20250514", reply.Model, v.Name)
	}
}

func TestGenerate_StrictVocabulary(t *testing.T) {
	raw := `[{"speaker": "Caden", "text": "Hm.", "emotion": "sympathetic", "gesture": "thumbsUp"}]`

	strict := newProcessor(fixedCompleter(raw, nil), nil, Options{Strict: true})
	reply, err := strict.Generate(context.Background(), newRequest(), "")
	require.NoError(t, err)
	assert.Equal(t, dialogue.EmotionNeutral, reply.Turns[0].Emotion)
	assert.Equal(t, dialogue.GestureStartTalking, reply.Turns[0].Gesture)

	lax := newProcessor(fixedCompleter(raw, nil), nil, Options{})
	reply, err = lax.Generate(context.Background(), newRequest(), "")
	require.NoError(t, err)
	assert.Equal(t, dialogue.Emotion("sympathetic"), reply.Turns[0].Emotion)
}

func TestGenerate_Errors(t *testing.T) {
	ok := fixedCompleter("[]", nil)

	tests := []struct {
		name    string
		c       llm.Completer
		req     func() *dialogue.Request
		variant string
		kind    Kind
	}{
		{"unknown variant", ok, newRequest, "gpt5", KindInvalidRequest},
		{"participant not an avatar", ok, func() *dialogue.Request {
			r := newRequest()
			r.ParticipantRole = "Zed"
			return r
		}, "", KindInvalidRequest},
		{"rotation without turn id", ok, newRequest, "autotalk", KindInvalidRequest},
		{"missing persona", ok, func() *dialogue.Request {
			r := newRequest()
			r.Avatars = []string{"Alice", "Benji", "Dana"}
			return r
		}, "", KindConfiguration},
		{"transport failure", llm.CompleterFunc(func(ctx context.Context, req llm.Request) (string, error) {
			return "", errors.New("connection refused")
		}), newRequest, "", KindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProcessor(tt.c, nil, Options{})
			_, err := p.Generate(context.Background(), tt.req(), tt.variant)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestGenerate_Timeout(t *testing.T) {
	called := 0
	slow := llm.CompleterFunc(func(ctx context.Context, req llm.Request) (string, error) {
		called++
		<-ctx.Done()
		return "", ctx.Err()
	})
	p := newProcessor(slow, nil, Options{Timeout: 10 * time.Millisecond})

	_, err := p.Generate(context.Background(), newRequest(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamTimeout)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.Equal(t, 1, called, "completion calls are never retried")

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "gpt-4o", upstream.Model)
}

func TestGenerate_PublishFailureIsIgnored(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("nats down")}
	p := newProcessor(fixedCompleter(`[{"speaker": "Caden", "text": "ok", "emotion": "calm", "gesture": "clapping"}]`, nil), pub, Options{})

	reply, err := p.Generate(context.Background(), newRequest(), "")
	require.NoError(t, err)
	assert.Len(t, reply.Turns, 1)
	assert.Len(t, pub.events, 1)
}

func TestHandleGenerate(t *testing.T) {
	p := newProcessor(fixedCompleter(`[{"speaker": "Benji", "text": "hey", "emotion": "happy", "gesture": "laughing"}]`, nil), nil, Options{})

	payload, _ := json.Marshal(hermes.GenerateRequest{Request: *newRequest(), Variant: "chatai"})
	var out hermes.GenerateReply
	require.NoError(t, json.Unmarshal(p.HandleGenerate(context.Background(), payload), &out))
	assert.Empty(t, out.Error)
	assert.NotEmpty(t, out.RequestID)
	assert.Equal(t, "Benji", out.Dialogue[0].Speaker)

	require.NoError(t, json.Unmarshal(p.HandleGenerate(context.Background(), []byte("{")), &out))
	assert.Equal(t, "invalid_request", out.Kind)

	payload, _ = json.Marshal(hermes.GenerateRequest{Request: *newRequest(), Variant: "gpt5"})
	out = hermes.GenerateReply{}
	require.NoError(t, json.Unmarshal(p.HandleGenerate(context.Background(), payload), &out))
	assert.Equal(t, "invalid_request", out.Kind)
	assert.Empty(t, out.Dialogue)
}

func TestHandleGenerate_Cancelled(t *testing.T) {
	blocking := llm.CompleterFunc(func(ctx context.Context, req llm.Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	p := newProcessor(blocking, nil, Options{Timeout: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	payload, _ := json.Marshal(hermes.GenerateRequest{Request: *newRequest()})
	var out hermes.GenerateReply
	require.NoError(t, json.Unmarshal(p.HandleGenerate(ctx, payload), &out))
	assert.Equal(t, string(KindTransport), out.Kind)
	assert.Empty(t, out.Dialogue)
}
