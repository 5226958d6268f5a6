package persona

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingPersona matches any *MissingPersonaError.
var ErrMissingPersona = errors.New("missing persona")

// Traits are NEO-FFI-30 scores, each on a 0-24 scale.
type Traits struct {
	Openness          int `json:"Openness" yaml:"Openness" toml:"Openness"`
	Conscientiousness int `json:"Conscientiousness" yaml:"Conscientiousness" toml:"Conscientiousness"`
	Extraversion      int `json:"Extraversion" yaml:"Extraversion" toml:"Extraversion"`
	Agreeableness     int `json:"Agreeableness" yaml:"Agreeableness" toml:"Agreeableness"`
	Neuroticism       int `json:"Neuroticism" yaml:"Neuroticism" toml:"Neuroticism"`
}

// Stance lists the house rules a persona supports and opposes.
type Stance struct {
	For     []string `json:"for" yaml:"for" toml:"for"`
	Against []string `json:"against" yaml:"against" toml:"against"`
}

// Record is one avatar's character sheet.
type Record struct {
	Name                   string `json:"name" yaml:"name" toml:"name"`
	Age                    int    `json:"age" yaml:"age" toml:"age"`
	Gender                 string `json:"gender,omitempty" yaml:"gender,omitempty" toml:"gender,omitempty"`
	Occupation             string `json:"occupation,omitempty" yaml:"occupation,omitempty" toml:"occupation,omitempty"`
	PersonalityTraits      Traits `json:"personality_traits" yaml:"personality_traits" toml:"personality_traits"`
	PersonalityDescription string `json:"personality_description,omitempty" yaml:"personality_description,omitempty" toml:"personality_description,omitempty"`
	LifestyleLog           string `json:"lifestyle_log" yaml:"lifestyle_log" toml:"lifestyle_log"`
	HiddenMotivation       string `json:"hidden_motivation" yaml:"hidden_motivation" toml:"hidden_motivation"`
	StanceOnHouseRules     Stance `json:"stance_on_house_rules" yaml:"stance_on_house_rules" toml:"stance_on_house_rules"`

	// Gestures narrows the speaker's gesture vocabulary when set.
	Gestures []string `json:"gestures,omitempty" yaml:"gestures,omitempty" toml:"gestures,omitempty"`
}

// Store resolves persona records by avatar name.
type Store interface {
	// Lookup returns a record for every name, or a *MissingPersonaError
	// naming each one it could not find.
	Lookup(ctx context.Context, names []string) (map[string]Record, error)
}

// MissingPersonaError names the avatars without a persona record.
type MissingPersonaError struct {
	Names []string
}

func (e *MissingPersonaError) Error() string {
	return fmt.Sprintf("no persona for %s", strings.Join(e.Names, ", "))
}

func (e *MissingPersonaError) Is(target error) bool {
	return target == ErrMissingPersona
}

// pick copies the requested records out of all and reports missing names in request order.
func pick(all map[string]Record, names []string) (map[string]Record, error) {
	out := make(map[string]Record, len(names))
	var missing []string
	for _, name := range names {
		rec, ok := all[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		out[name] = rec
	}
	if len(missing) > 0 {
		return nil, &MissingPersonaError{Names: missing}
	}
	return out, nil
}
