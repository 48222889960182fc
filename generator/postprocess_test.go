package generator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai_email_copywriter/generator"
)

func TestParseEmails(t *testing.T) {
	raw := `[
		{"subject": "Sube el precio", "body": "Uno.\n\nDos."},
		{"subject": "Sube el precio", "body": "Uno.\n\nDos."},
		{"subject": "Último aviso", "body": "Tres."}
	]`
	emails, err := generator.ParseEmails(raw, generator.EmailListSchema)
	require.NoError(t, err)

	require.Len(t, emails, 3)
	assert.Equal(t, "Sube el precio", emails[0].Subject)
	assert.Equal(t, "Uno.\n\nDos.", emails[0].Body)
	assert.Equal(t, emails[0], emails[1])
	assert.Equal(t, "Último aviso", emails[2].Subject)
}

func TestParseEmails_Fenced(t *testing.T) {
	raw := "```json\n[{\"subject\":\"A\",\"body\":\"B\"}]\n```"
	emails, err := generator.ParseEmails(raw, generator.EmailListSchema)
	require.NoError(t, err)
	assert.Equal(t, []generator.GeneratedEmail{{Subject: "A", Body: "B"}}, emails)
}

func TestParseEmails_EmptyArray(t *testing.T) {
	emails, err := generator.ParseEmails("[]", generator.EmailListSchema)
	require.NoError(t, err)
	assert.NotNil(t, emails)
	assert.Empty(t, emails)
}

func TestParseEmails_ExtraKeysTolerated(t *testing.T) {
	emails, err := generator.ParseEmails(`[{"subject":"A","body":"B","notes":"x"}]`, generator.EmailListSchema)
	require.NoError(t, err)
	assert.Len(t, emails, 1)
}

func TestParseEmails_Failures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"empty", "   ", generator.ErrMalformedResponse},
		{"prose", "Aquí tienes tus emails:", generator.ErrMalformedResponse},
		{"truncated", `[{"subject":"A","body":`, generator.ErrMalformedResponse},
		{"object not array", `{"subject":"A","body":"B"}`, generator.ErrSchemaViolation},
		{"missing body", `[{"subject":"A"}]`, generator.ErrSchemaViolation},
		{"number subject", `[{"subject":7,"body":"B"}]`, generator.ErrSchemaViolation},
		{"null body", `[{"subject":"A","body":null}]`, generator.ErrSchemaViolation},
		{"string item", `["hola"]`, generator.ErrSchemaViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emails, err := generator.ParseEmails(tt.raw, generator.EmailListSchema)
			assert.Nil(t, emails)
			require.ErrorIs(t, err, tt.want)
			if tt.want == generator.ErrSchemaViolation {
				assert.NotErrorIs(t, err, generator.ErrMalformedResponse)
			} else {
				assert.NotErrorIs(t, err, generator.ErrSchemaViolation)
			}
		})
	}
}

func TestCleanSuggestion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Vende más con menos  ", "Vende más con menos"},
		{`"Vende más con menos"`, "Vende más con menos"},
		{"“Vende más”", "Vende más"},
		{"«Vende más»", "Vende más"},
		{"'Vende más'", "Vende más"},
		{"**Vende** más", "Vende más"},
		{"`Vende` *más*", "Vende más"},
		{`"El precio sube" dijo "Ana"`, `El precio sube" dijo "Ana`},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, generator.CleanSuggestion(tt.in), tt.in)
	}
}
