package daily

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/daily/internal/words"
)

// Overrides maps a date key to the word pinned for that day.
// Loaded once and treated as read-only.
type Overrides map[string]string

// ParseOverrides decodes a JSON object of date key → word. Entries with a
// malformed key or a value that is not a valid word are dropped and logged;
// the rest are kept uppercased.
func ParseOverrides(data []byte) (Overrides, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode overrides: %w", err)
	}
	out := make(Overrides, len(raw))
	for key, v := range raw {
		var w string
		if err := json.Unmarshal(v, &w); err != nil {
			log.Warn().Str("date", key).Msg("override ignored: value is not a string")
			continue
		}
		w = words.Normalize(w)
		if _, err := ParseDateKey(key); err != nil || !words.Valid(w) {
			log.Warn().Str("date", key).Str("word", w).Msg("override ignored: malformed entry")
			continue
		}
		out[key] = w
	}
	return out, nil
}

// LoadOverrides reads an overrides file. An empty path or a missing file
// yields an empty map: overrides fail open.
func LoadOverrides(path string) (Overrides, error) {
	if path == "" {
		return Overrides{}, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("path", path).Msg("overrides file not found; using rotation only")
		return Overrides{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read overrides: %w", err)
	}
	return ParseOverrides(b)
}
