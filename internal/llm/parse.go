package llm

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// Length bounds for generated fields, in characters.
const (
	MaxNameLength        = 150
	MinDescriptionLength = 50
)

// extractJSONObject extracts a JSON object from text that may contain markdown
// code blocks or other formatting. Returns the extracted JSON string or an error.
func extractJSONObject(text string) (string, error) {
	text = strings.TrimSpace(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response: %s", text)
	}
	return text[start : end+1], nil
}

// ParseCandidate parses a generated payload into a validated candidate. It
// never fails: unparsable payloads yield an empty candidate.
func ParseCandidate(text string) Candidate {
	jsonStr, err := extractJSONObject(text)
	if err != nil {
		log.Warn().Err(err).Msg("generative payload has no JSON object")
		return Candidate{}
	}
	if !gjson.Valid(jsonStr) {
		log.Warn().Str("payload", jsonStr).Msg("generative payload is not valid JSON")
		return Candidate{}
	}

	parsed := gjson.Parse(jsonStr)
	return Validate(Candidate{
		Name:        stringField(parsed, "name"),
		Description: stringField(parsed, "description"),
	})
}

func stringField(r gjson.Result, key string) *string {
	v := r.Get(key)
	if v.Type != gjson.String {
		return nil
	}
	s := strings.TrimSpace(v.String())
	if s == "" {
		return nil
	}
	return &s
}

// Validate drops a name longer than MaxNameLength and a description shorter
// than MinDescriptionLength. The fields are checked independently.
func Validate(c Candidate) Candidate {
	if c.Name != nil {
		if n := utf8.RuneCountInString(*c.Name); n > MaxNameLength {
			log.Warn().Int("length", n).Msg("discarding generated name: too long")
			c.Name = nil
		}
	}
	if c.Description != nil {
		if n := utf8.RuneCountInString(*c.Description); n < MinDescriptionLength {
			log.Warn().Int("length", n).Msg("discarding generated description: too short")
			c.Description = nil
		}
	}
	return c
}
