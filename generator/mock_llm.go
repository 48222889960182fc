package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var mockCountPattern = regexp.MustCompile(`array JSON de (\d+) objeto`)

// MockLLM is an offline stand-in for local runs; it never calls a model.
// Schema requests get one canned draft per requested email, plain requests
// get a canned suggestion.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, req Request) (string, error) {
	if req.Schema == nil {
		return `"**Una sugerencia de ejemplo**"`, nil
	}

	count := 1
	if match := mockCountPattern.FindStringSubmatch(req.Instruction); len(match) == 2 {
		if n, err := strconv.Atoi(match[1]); err == nil && n > 0 {
			count = n
		}
	}

	topic := "tu tema"
	for _, line := range strings.Split(req.Instruction, "\n") {
		if v, ok := strings.CutPrefix(line, "- Tema principal: "); ok && v != "" {
			topic = v
			break
		}
	}

	emails := make([]GeneratedEmail, count)
	for i := range emails {
		emails[i] = GeneratedEmail{
			Subject: fmt.Sprintf("Borrador %d: %s", i+1, topic),
			Body:    "Este es un email de ejemplo generado sin conexión.\n\nAquí iría el desarrollo.\n\nY aquí la llamada a la acción.",
		}
	}
	out, err := json.Marshal(emails)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
