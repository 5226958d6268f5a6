package dialogue

// Emotion is the tone tag attached to a turn.
type Emotion string

const (
	EmotionNeutral    Emotion = "neutral"
	EmotionHappy      Emotion = "happy"
	EmotionCheerful   Emotion = "cheerful"
	EmotionFrustrated Emotion = "frustrated"
	EmotionCalm       Emotion = "calm"
	EmotionHopeful    Emotion = "hopeful"
	EmotionAngry      Emotion = "angry"
	EmotionSad        Emotion = "sad"
	EmotionThinking   Emotion = "thinking"
)

// Emotions lists the full emotion set in prompt order.
var Emotions = []Emotion{
	EmotionNeutral, EmotionHappy, EmotionCheerful, EmotionFrustrated, EmotionCalm,
	EmotionHopeful, EmotionAngry, EmotionSad, EmotionThinking,
}

// Valid reports whether e is in the emotion set.
func (e Emotion) Valid() bool {
	for _, known := range Emotions {
		if e == known {
			return true
		}
	}
	return false
}

// Gesture is the animation tag attached to a turn.
type Gesture string

const (
	GestureStartTalking Gesture = "start talking"
	GestureShortTalking Gesture = "short talking"
	GestureClapping     Gesture = "clapping"
	GestureClapQuick    Gesture = "clap quick"
	GestureDisapproval  Gesture = "disapproval"
	GestureLaughing     Gesture = "laughing"
	GestureThumbsUp     Gesture = "thumbsUp"
	GestureListening    Gesture = "listening"
)

// Gestures lists the full gesture set.
var Gestures = []Gesture{
	GestureStartTalking, GestureShortTalking, GestureClapping, GestureClapQuick,
	GestureDisapproval, GestureLaughing, GestureThumbsUp, GestureListening,
}

// Valid reports whether g is in the gesture set.
func (g Gesture) Valid() bool {
	for _, known := range Gestures {
		if g == known {
			return true
		}
	}
	return false
}

// GestureOption is one gesture a speaker may use, with prompt guidance.
type GestureOption struct {
	Gesture  Gesture
	Usage    string
	Emotions []string // pairing hints; may include words outside Emotions
}

// Vocabulary maps a speaker to the gestures their avatar can animate.
type Vocabulary map[string][]GestureOption

// DefaultVocabulary is the gesture table for the shipped CoLive avatars.
var DefaultVocabulary = Vocabulary{
	"Alice": {
		{GestureStartTalking, "A composed raise of one hand to open a longer point; use when explaining or leading.", []string{"neutral", "calm", "reflective", "hopeful"}},
		{GestureShortTalking, "A small nod or palm flick with a brief reply or acknowledgment.", []string{"neutral", "happy", "calm"}},
		{GestureClapping, "Two or three deliberate claps before speaking, showing clear support.", []string{"excited", "happy", "hopeful"}},
		{GestureDisapproval, "A subtle side-to-side finger wave; posture tightens before she explains an objection.", []string{"disapproving", "angry", "reflective"}},
	},
	"Benji": {
		{GestureStartTalking, "Wide, animated arm movement opening an enthusiastic full thought.", []string{"excited", "hopeful", "happy"}},
		{GestureShortTalking, "A shrug or quick hand flick for a joke or fast reply.", []string{"cheerful", "calm", "neutral"}},
		{GestureClapping, "Loud excited claps while smiling, hyping the moment up.", []string{"excited", "happy", "hopeful"}},
		{GestureDisapproval, "A playful finger wag or briefly crossed arms; critical but light.", []string{"disapproving", "frustrated"}},
		{GestureLaughing, "Full-body laugh, head back, often followed by a teasing remark.", []string{"happy", "excited"}},
		{GestureThumbsUp, "Bold thumbs-up with a confident nod; his signature way of affirming others.", []string{"happy", "excited"}},
		{GestureListening, "Relaxed but attentive, head tilted, nodding along.", []string{"neutral", "reflective"}},
	},
	"Caden": {
		{GestureStartTalking, "A calm, gentle hand raise introducing a measured, structured point.", []string{"calm", "reflective", "neutral"}},
		{GestureClapping, "Two soft, polite claps before a short comment of respectful approval.", []string{"calm", "happy", "hopeful"}},
		{GestureClapQuick, "A brief, sharp pair of claps signalling quick agreement.", []string{"happy", "neutral"}},
	},
}

// Options returns the gestures speaker may use. Speakers without an entry
// may use every gesture.
func (v Vocabulary) Options(speaker string) []GestureOption {
	if opts, ok := v[speaker]; ok && len(opts) > 0 {
		return opts
	}
	all := make([]GestureOption, len(Gestures))
	for i, g := range Gestures {
		all[i] = GestureOption{Gesture: g}
	}
	return all
}

// Allows reports whether speaker may use g.
func (v Vocabulary) Allows(speaker string, g Gesture) bool {
	for _, opt := range v.Options(speaker) {
		if opt.Gesture == g {
			return true
		}
	}
	return false
}

// DefaultGesture is the gesture substituted when a speaker's gesture is out of range.
func (v Vocabulary) DefaultGesture(speaker string) Gesture {
	return v.Options(speaker)[0].Gesture
}

// Restrict returns a copy of v where speaker may only use gestures.
// Unknown gesture names are ignored; an empty result leaves v unchanged.
func (v Vocabulary) Restrict(speaker string, gestures []string) Vocabulary {
	if len(gestures) == 0 {
		return v
	}
	current := v.Options(speaker)
	var narrowed []GestureOption
	for _, name := range gestures {
		g := Gesture(name)
		if !g.Valid() {
			continue
		}
		opt := GestureOption{Gesture: g}
		for _, c := range current {
			if c.Gesture == g {
				opt = c
				break
			}
		}
		narrowed = append(narrowed, opt)
	}
	if len(narrowed) == 0 {
		return v
	}
	out := make(Vocabulary, len(v)+1)
	for k, opts := range v {
		out[k] = opts
	}
	out[speaker] = narrowed
	return out
}
