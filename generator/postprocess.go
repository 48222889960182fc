package generator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var jsonFence = regexp.MustCompile("(?s)^```(?:json)?\\s*\\n?(.*?)\\n?```$")

// ParseEmails decodes a generation response. The list is returned as the
// model produced it: no reordering, dedup or truncation.
func ParseEmails(raw string, schema Schema) ([]GeneratedEmail, error) {
	text := strings.TrimSpace(raw)
	if m := jsonFence.FindStringSubmatch(text); len(m) == 2 {
		text = strings.TrimSpace(m[1])
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}

	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := schema.Validate(decoded); err != nil {
		return nil, err
	}

	var emails []GeneratedEmail
	if err := json.Unmarshal([]byte(text), &emails); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	if emails == nil {
		emails = []GeneratedEmail{}
	}
	return emails, nil
}

var quotePairs = [][2]string{
	{`"`, `"`},
	{`'`, `'`},
	{"`", "`"},
	{"“", "”"},
	{"«", "»"},
}

var emphasisMarkers = strings.NewReplacer("**", "", "__", "", "*", "", "`", "")

// CleanSuggestion strips one wrapping quote pair and markdown emphasis from
// a suggestion reply.
func CleanSuggestion(raw string) string {
	s := strings.TrimSpace(raw)
	for _, q := range quotePairs {
		if len(s) >= len(q[0])+len(q[1]) && strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) {
			s = strings.TrimSpace(s[len(q[0]) : len(s)-len(q[1])])
			break
		}
	}
	s = emphasisMarkers.Replace(s)
	return strings.TrimSpace(s)
}
