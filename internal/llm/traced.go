package llm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/MikeSquared-Agency/colive/internal/llm"

type traced struct {
	provider string
	next     Completer
	tracer   trace.Tracer
}

// Traced wraps c so every call runs inside a client span.
func Traced(provider string, c Completer) Completer {
	return &traced{provider: provider, next: c, tracer: otel.Tracer(tracerName)}
}

func (t *traced) Complete(ctx context.Context, req Request) (string, error) {
	ctx, span := t.tracer.Start(ctx, "llm.complete",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("llm.provider", t.provider),
			attribute.String("llm.model", req.Model),
			attribute.Int("llm.max_tokens", req.MaxTokens),
			attribute.Int("llm.messages", len(req.Messages)),
		),
	)
	defer span.End()

	out, err := t.next.Complete(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.Int("llm.completion_chars", len(out)))
	return out, nil
}
