package extractor

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/MikeSquared-Agency/colive/internal/dialogue"
)

// Stage records how far the pipeline had to go to produce a result.
type Stage string

const (
	StageDirect   Stage = "direct"
	StageRepaired Stage = "repaired"
	StageFallback Stage = "fallback"
)

var (
	openFencePattern = regexp.MustCompile("^```[A-Za-z0-9_+-]*")
	jsonStartPattern = regexp.MustCompile(`\[\s*\{`)
	arrayPattern     = regexp.MustCompile(`\[\s*\{[\s\S]+?\}\s*,?\s*\]`)
)

// Constraints is what a reply must satisfy to be returned.
type Constraints struct {
	Allowed []string
	// Vocabulary enables emotion/gesture enforcement. Nil passes values through.
	Vocabulary dialogue.Vocabulary
}

// Result is the outcome of one extraction.
type Result struct {
	Turns    []dialogue.Turn
	Degraded bool
	Stage    Stage
	Dropped  int // parsed elements removed by the speaker or text filter
}

// Extractor turns raw model text into validated dialogue turns.
type Extractor struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract runs the repair pipeline over raw. It never fails: anything it
// cannot recover becomes the single sentinel turn from dialogue.Fallback.
func (e *Extractor) Extract(raw string, c Constraints) Result {
	e.logger.Debug("model raw output", "raw", raw)

	body := openFencePattern.ReplaceAllString(strings.TrimSpace(raw), "")

	loc := jsonStartPattern.FindStringIndex(body)
	if loc == nil {
		e.logger.Warn("no JSON array in model output", "raw_len", len(raw))
		return fallback(raw, 0)
	}
	body = stripCloseFence(body[loc[0]:])

	stage := StageDirect
	items, err := parseArray(body)
	if err != nil {
		candidate := arrayPattern.FindString(body)
		if candidate == "" {
			e.logger.Warn("model output is not repairable", "error", err, "raw_len", len(raw))
			return fallback(raw, 0)
		}
		items, err = parseArray(dropTrailingCommas(candidate))
		if err != nil {
			e.logger.Warn("repaired model output still invalid", "error", err, "raw_len", len(raw))
			return fallback(raw, 0)
		}
		stage = StageRepaired
		e.logger.Warn("repaired model output", "raw_len", len(raw))
	}

	turns, dropped := filter(items, c)
	if len(turns) == 0 {
		e.logger.Warn("no turns from allowed speakers", "parsed", len(items), "allowed", c.Allowed)
		return fallback(raw, dropped)
	}
	if dropped > 0 {
		e.logger.Info("dropped disallowed turns", "dropped", dropped, "kept", len(turns))
	}

	return Result{Turns: turns, Stage: stage, Dropped: dropped}
}

// stripCloseFence removes one closing fence that ends the payload.
func stripCloseFence(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// dropTrailingCommas removes commas that directly precede } or ], leaving
// string contents alone.
func dropTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
		}
		if c == ',' {
			j := i + 1
			for j < len(s) && strings.IndexByte(" \t\r\n", s[j]) >= 0 {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func parseArray(s string) ([]any, error) {
	var items []any
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func filter(items []any, c Constraints) ([]dialogue.Turn, int) {
	allowed := make(map[string]struct{}, len(c.Allowed))
	for _, name := range c.Allowed {
		allowed[name] = struct{}{}
	}

	turns := make([]dialogue.Turn, 0, len(items))
	dropped := 0
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			dropped++
			continue
		}
		speaker, _ := obj["speaker"].(string)
		if _, ok := allowed[speaker]; !ok {
			dropped++
			continue
		}
		turn := dialogue.Turn{
			Speaker: speaker,
			Text:    stringField(obj, "text"),
			Emotion: dialogue.Emotion(stringField(obj, "emotion")),
			Gesture: dialogue.Gesture(stringField(obj, "gesture")),
		}
		if c.Vocabulary != nil {
			if strings.TrimSpace(turn.Text) == "" {
				dropped++
				continue
			}
			turn = enforce(turn, c.Vocabulary)
		}
		turns = append(turns, turn)
	}
	return turns, dropped
}

func enforce(t dialogue.Turn, v dialogue.Vocabulary) dialogue.Turn {
	if !t.Emotion.Valid() {
		t.Emotion = dialogue.EmotionNeutral
	}
	if !v.Allows(t.Speaker, t.Gesture) {
		t.Gesture = v.DefaultGesture(t.Speaker)
	}
	return t
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func fallback(raw string, dropped int) Result {
	return Result{
		Turns:    dialogue.Fallback(raw),
		Degraded: true,
		Stage:    StageFallback,
		Dropped:  dropped,
	}
}
