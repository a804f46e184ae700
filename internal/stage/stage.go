package stage

import (
	"fmt"
	"strings"
)

// Stage is an authoring stage. Later stages reveal more of the document.
type Stage int

const (
	Seed Stage = iota
	Prompt
	JSON
	Media
	Audio
	SCORM
)

var stageNames = [...]string{
	Seed:   "seed",
	Prompt: "prompt",
	JSON:   "json",
	Media:  "media",
	Audio:  "audio",
	SCORM:  "scorm",
}

// All returns every stage in order.
func All() []Stage {
	return []Stage{Seed, Prompt, JSON, Media, Audio, SCORM}
}

func (s Stage) String() string {
	if s < Seed || s > SCORM {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Valid reports whether s is a defined stage.
func (s Stage) Valid() bool {
	return s >= Seed && s <= SCORM
}

// Parse maps a stage name to its Stage. Matching ignores case and
// surrounding whitespace.
func Parse(name string) (Stage, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for i, n := range stageNames {
		if n == normalized {
			return Stage(i), nil
		}
	}
	return Seed, fmt.Errorf("unknown stage %q (want one of %s)", name, strings.Join(stageNames[:], ", "))
}

// MarshalText encodes the stage name.
func (s Stage) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid stage %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a stage name.
func (s *Stage) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
