package composer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/MikeSquared-Agency/colive/internal/dialogue"
	"github.com/MikeSquared-Agency/colive/internal/llm"
	"github.com/MikeSquared-Agency/colive/internal/persona"
)

// Prompt is a composed conversation ready to send, plus the constraints the
// reply is checked against.
type Prompt struct {
	System     string
	Messages   []llm.Message
	Allowed    []string
	Variant    Variant
	Vocabulary dialogue.Vocabulary
}

// Request builds the completion request for p.
func (p *Prompt) Request() llm.Request {
	return llm.Request{
		Model:       p.Variant.Model,
		Messages:    p.Messages,
		Temperature: p.Variant.Temperature,
		TopP:        p.Variant.TopP,
		MaxTokens:   p.Variant.MaxTokens,
		Stop:        p.Variant.Stop,
	}
}

// Compose renders the instruction for req and assembles the message list:
// instruction, history oldest first, then the new input. It does no I/O and
// gives the same output for the same input.
//
// vocab is the base gesture table; nil means dialogue.DefaultVocabulary.
// Persona gesture lists narrow it per avatar.
func Compose(req *dialogue.Request, personas map[string]persona.Record, v Variant, vocab dialogue.Vocabulary) (*Prompt, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	allowed, err := dialogue.AllowedSpeakers(req, v.Policy)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, name := range req.Avatars {
		if _, ok := personas[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &persona.MissingPersonaError{Names: missing}
	}

	if vocab == nil {
		vocab = dialogue.DefaultVocabulary
	}
	for _, name := range req.Avatars {
		vocab = vocab.Restrict(name, personas[name].Gestures)
	}

	system := renderSystem(req, personas, v, allowed, vocab)

	msgs := make([]llm.Message, 0, 2*len(req.History)+3)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: system})
	guard := llm.Message{Role: llm.RoleSystem, Content: speakerReminder(req.ParticipantRole, allowed)}
	for _, h := range req.History {
		msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: h})
		if v.SpeakerGuard {
			msgs = append(msgs, guard)
		}
	}
	input := req.UserInput
	if v.ContinuePrompt != "" {
		input = v.ContinuePrompt
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: input})
	if v.SpeakerGuard {
		msgs = append(msgs, guard)
	}

	return &Prompt{
		System:     system,
		Messages:   msgs,
		Allowed:    allowed,
		Variant:    v,
		Vocabulary: vocab,
	}, nil
}

func speakerReminder(participant string, allowed []string) string {
	return fmt.Sprintf("The previous message was from the participant %s. Now only generate a response from %s. Do NOT speak for %s.",
		participant, joinNames(allowed), participant)
}

func renderSystem(req *dialogue.Request, personas map[string]persona.Record, v Variant, allowed []string, vocab dialogue.Vocabulary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are simulating a group discussion among %s housemates living together in a shared intentional living\n", countWord(len(req.Avatars)))
	b.WriteString("community called CoLive.\n\n")
	b.WriteString(background)
	b.WriteString("\n\n---\n")
	writeRoles(&b, req, v, allowed)
	b.WriteString("\n---\n")
	b.WriteString(houseRules)
	b.WriteString("\n---\n\n---\nDiscussion Topics:\nThe retrospective meeting should follow this sequence of topics, one at a time:\n\n")
	for i, t := range Topics {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t)
	}
	b.WriteString("\n")
	b.WriteString(topicGuidance)
	if v.Closing {
		b.WriteString("\n\n")
		b.WriteString(closing)
	}
	b.WriteString("\n---\n\n---\nAvatar Profiles:\n")
	for i, name := range req.Avatars {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		writePersona(&b, personas[name])
	}
	b.WriteString("\n")
	b.WriteString(privacyNote)
	b.WriteString("\n---\n\n")
	writeOutputRules(&b, req.ParticipantRole, allowed, vocab)
	return b.String()
}

func writeRoles(b *strings.Builder, req *dialogue.Request, v Variant, allowed []string) {
	b.WriteString("Roles:\n")
	fmt.Fprintf(b, "The human participant is currently role-playing as %s.\n", req.ParticipantRole)
	if v.Policy == dialogue.PolicyRotation {
		speaker := allowed[0]
		fmt.Fprintf(b, "This is Turn %d, and it is now %s's turn to speak.\n", *req.TurnID, speaker)
		fmt.Fprintf(b, "Only generate a reply for %s. The other avatars should remain silent in this turn.\n", speaker)
	} else {
		fmt.Fprintf(b, "The other avatars, %s, are simulated by you, the AI.\n", joinNames(allowed))
	}
	b.WriteString("Each avatar has a unique personality, lifestyle log, speaking style, and hidden motivations.\n")

	if v.SpeakerGuard {
		b.WriteString("\nRules for Speaking:\n")
		fmt.Fprintf(b, "- Only simulate the AI-controlled avatars: %s.\n", joinNames(allowed))
		fmt.Fprintf(b, "- NEVER simulate or speak for the human participant: %s.\n", req.ParticipantRole)
		fmt.Fprintf(b, "- NEVER include %s in the output speaker field.\n", req.ParticipantRole)
		fmt.Fprintf(b, "- ALWAYS treat %s as an external input. You must not respond on their behalf.\n", req.ParticipantRole)
	}
}

func writePersona(b *strings.Builder, p persona.Record) {
	fmt.Fprintf(b, "Name: %s, Age: %d", p.Name, p.Age)
	if p.Gender != "" {
		fmt.Fprintf(b, ", Gender: %s", p.Gender)
	}
	if p.Occupation != "" {
		fmt.Fprintf(b, ", Occupation: %s", p.Occupation)
	}
	b.WriteString(".\n")

	t := p.PersonalityTraits
	b.WriteString("Personality Traits (NEO-FFI-30 scale, 0-24):\n")
	fmt.Fprintf(b, "  - Openness: %d\n", t.Openness)
	fmt.Fprintf(b, "  - Conscientiousness: %d\n", t.Conscientiousness)
	fmt.Fprintf(b, "  - Extraversion: %d\n", t.Extraversion)
	fmt.Fprintf(b, "  - Agreeableness: %d\n", t.Agreeableness)
	fmt.Fprintf(b, "  - Neuroticism: %d\n", t.Neuroticism)
	if p.PersonalityDescription != "" {
		b.WriteString(p.PersonalityDescription)
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "Lifestyle Log: %s\n", p.LifestyleLog)
	fmt.Fprintf(b, "Hidden Motivation (private, only known to %s): %s\n", p.Name, p.HiddenMotivation)
	fmt.Fprintf(b, "Stance on House Rules: For %s; Against %s.\n",
		strings.Join(p.StanceOnHouseRules.For, ", "),
		strings.Join(p.StanceOnHouseRules.Against, ", "))
}

func writeOutputRules(b *strings.Builder, participant string, allowed []string, vocab dialogue.Vocabulary) {
	b.WriteString(styleRules)
	b.WriteString("\n\nFor each turn, output a structured object with the following fields:\n")
	fmt.Fprintf(b, "- \"speaker\": The avatar's name, which must be one of: %s\n", quoteList(allowed))
	b.WriteString("- \"text\": What they say, in natural conversation style. Never empty.\n")
	b.WriteString("- \"emotion\": The emotional tone of the speaker's expression, selected **only from the following predefined list**:\n")
	emotions := make([]string, len(dialogue.Emotions))
	for i, e := range dialogue.Emotions {
		emotions[i] = string(e)
	}
	fmt.Fprintf(b, "%s\n", quoteList(emotions))
	b.WriteString("- \"gesture\": A simple expressive behavior accompanying the utterance, selected **only from the speaker's\ngesture options below**.\n\n")

	for _, name := range allowed {
		fmt.Fprintf(b, "%s gesture options:\n", name)
		for _, opt := range vocab.Options(name) {
			fmt.Fprintf(b, "- %q", string(opt.Gesture))
			if opt.Usage != "" {
				fmt.Fprintf(b, ": %s", opt.Usage)
			}
			if pair := validEmotions(opt.Emotions); len(pair) > 0 {
				fmt.Fprintf(b, " Pairs with: %s.", strings.Join(pair, ", "))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Do not create new emotions or gestures. Always select from the predefined lists.\n\n")
	b.WriteString("Do NOT include:\n")
	fmt.Fprintf(b, "- Lines for the participant (%s)\n", participant)
	b.WriteString("- Lines for anyone other than ")
	b.WriteString(joinNames(allowed))
	b.WriteString("\n- Narration or commentary\n- Any formatting outside the JSON list\n\n")
	b.WriteString("Output Format Example:\n")
	b.WriteString(example(allowed, vocab))
	b.WriteString("\n\nPlease return the JSON array directly, without markdown formatting (no ```json or ```).\n")
}

func example(allowed []string, vocab dialogue.Vocabulary) string {
	lines := []string{
		"I'm honestly feeling a bit overwhelmed by how messy the kitchen gets.",
		"That's fair. I didn't realize it was affecting you so much.",
	}
	emotions := []dialogue.Emotion{dialogue.EmotionFrustrated, dialogue.EmotionCalm}

	n := len(allowed)
	if n > 2 {
		n = 2
	}
	turns := make([]dialogue.Turn, n)
	for i := 0; i < n; i++ {
		turns[i] = dialogue.Turn{
			Speaker: allowed[i],
			Text:    lines[i],
			Emotion: emotions[i],
			Gesture: vocab.DefaultGesture(allowed[i]),
		}
	}
	out, _ := json.MarshalIndent(turns, "", "  ")
	return string(out)
}

func validEmotions(hints []string) []string {
	var out []string
	for _, h := range hints {
		if dialogue.Emotion(h).Valid() {
			out = append(out, h)
		}
	}
	return out
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// joinNames renders names as "A", "A and B" or "A, B and C".
func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}

func countWord(n int) string {
	words := []string{"zero", "one", "two", "three", "four", "five", "six"}
	if n < len(words) {
		return words[n]
	}
	return strconv.Itoa(n)
}
