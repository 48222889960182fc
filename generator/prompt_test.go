package generator_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai_email_copywriter/generator"
)

func emptyConfig() generator.Configuration {
	return generator.Configuration{Length: generator.LengthNormal}
}

func TestCompileGenerationPrompt_EmptyOptionalFields(t *testing.T) {
	for name, cfg := range map[string]generator.Configuration{
		"zero":    emptyConfig(),
		"default": generator.DefaultConfiguration(),
	} {
		t.Run(name, func(t *testing.T) {
			prompt := generator.CompileGenerationPrompt(cfg, 1, nil)

			assert.NotContains(t, prompt, "HISTORIAL DE FEEDBACK")
			assert.NotContains(t, prompt, "Servicios a mencionar")
			assert.NotContains(t, prompt, "- Anécdota:")
			assert.NotContains(t, prompt, "- Testimonio:")
			assert.NotContains(t, prompt, "- Postdata:")
			assert.Contains(t, prompt, generator.DetailsPlaceholder)
			assert.Contains(t, prompt, "### IMAGEN\n- ")
		})
	}
}

func TestCompileGenerationPrompt_SectionOrder(t *testing.T) {
	cfg := generator.ExampleConfiguration()
	prompt := generator.CompileGenerationPrompt(cfg, 2, []generator.Feedback{{OverallRating: 3}})

	headers := []string{
		"### HISTORIAL DE FEEDBACK",
		"### ESTRATEGIA",
		"### AUDIENCIA",
		"### CONTENIDO",
		"### ESTILO",
		"### FÓRMULAS",
		"### ESTRUCTURA",
		"### ASUNTO",
		"### IMAGEN",
		"### FORMATO DE RESPUESTA",
	}
	last := -1
	for _, h := range headers {
		idx := strings.Index(prompt, h)
		require.NotEqual(t, -1, idx, "missing section %s", h)
		assert.Greater(t, idx, last, "section %s out of order", h)
		last = idx
	}
}

func TestCompileGenerationPrompt_Deterministic(t *testing.T) {
	cfg := generator.ExampleConfiguration()
	fb := []generator.Feedback{{OverallRating: 4, Text: "bien"}}

	assert.Equal(t,
		generator.CompileGenerationPrompt(cfg, 3, fb),
		generator.CompileGenerationPrompt(cfg, 3, fb),
	)
}

func TestCompileGenerationPrompt_FeedbackOrder(t *testing.T) {
	feedback := []generator.Feedback{
		{OverallRating: 2, Text: "demasiado formal"},
		{OverallRating: 5},
		{OverallRating: 4, Text: "me encanta la anécdota"},
	}
	prompt := generator.CompileGenerationPrompt(emptyConfig(), 1, feedback)

	lines := []string{
		`- Email 1: 2/5 estrellas. Comentario: "demasiado formal"`,
		"- Email 2: 5/5 estrellas\n",
		`- Email 3: 4/5 estrellas. Comentario: "me encanta la anécdota"`,
	}
	last := -1
	for _, l := range lines {
		idx := strings.Index(prompt, l)
		require.NotEqual(t, -1, idx, "missing %q", l)
		assert.Greater(t, idx, last)
		last = idx
	}
	assert.Contains(t, prompt, "Aplica lo aprendido")
}

func TestCompileGenerationPrompt_UploadedImageWins(t *testing.T) {
	for _, auto := range []bool{true, false} {
		t.Run(fmt.Sprintf("auto=%t", auto), func(t *testing.T) {
			cfg := emptyConfig()
			cfg.ImagePlacement = generator.ImagePlacement{
				Auto:        auto,
				Description: "después del segundo párrafo",
				Image:       &generator.ImageData{Name: "grafica.png", Type: "image/png", Data: "AAAA"},
			}
			prompt := generator.CompileGenerationPrompt(cfg, 1, nil)

			assert.Contains(t, prompt, "[IMAGEN: grafica.png]")
			assert.NotContains(t, prompt, generator.ImageAutoInstruction)
			assert.NotContains(t, prompt, "después del segundo párrafo")
		})
	}
}

func TestCompileGenerationPrompt_ImagePriority(t *testing.T) {
	tests := []struct {
		name      string
		placement generator.ImagePlacement
		want      string
	}{
		{"auto", generator.ImagePlacement{Auto: true, Description: "al final"}, generator.ImageAutoInstruction},
		{"described", generator.ImagePlacement{Description: "al final"}, "ubicación indicada por el usuario: al final"},
		{"none", generator.ImagePlacement{}, generator.ImageNoneInstruction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := emptyConfig()
			cfg.ImagePlacement = tt.placement
			assert.Contains(t, generator.CompileGenerationPrompt(cfg, 1, nil), tt.want)
		})
	}
}

func TestCompileGenerationPrompt_ZeroFormulasStillListed(t *testing.T) {
	prompt := generator.CompileGenerationPrompt(emptyConfig(), 1, nil)
	for _, f := range generator.Formulas {
		assert.Contains(t, prompt, fmt.Sprintf("- %s: 0/10\n", f.Name))
	}
}

func TestCompileGenerationPrompt_Services(t *testing.T) {
	cfg := emptyConfig()
	cfg.ServiceReferences = []generator.ServiceReference{
		{ID: 1, Title: "Mentoría", Description: "Sesiones semanales", Link: "https://ejemplo.com/mentoria", Enabled: true},
		{ID: 2, Title: "Curso antiguo", Description: "Ya no se vende", Link: "https://ejemplo.com/viejo", Enabled: false},
		{ID: 3, Enabled: true},
	}
	prompt := generator.CompileGenerationPrompt(cfg, 1, nil)

	assert.Contains(t, prompt, "- Servicios a mencionar de forma natural:\n  - Mentoría: Sesiones semanales (https://ejemplo.com/mentoria)\n")
	assert.NotContains(t, prompt, "Curso antiguo")

	cfg.ServiceReferences = nil
	assert.NotContains(t, generator.CompileGenerationPrompt(cfg, 1, nil), "Servicios a mencionar")
}

func TestCompileGenerationPrompt_StructureAndSubject(t *testing.T) {
	cfg := emptyConfig()
	cfg.Length = generator.LengthShort
	cfg.ParagraphLength = 0.3
	cfg.NegativePrompt = "No usar emojis"
	prompt := generator.CompileGenerationPrompt(cfg, 1, nil)

	assert.Contains(t, prompt, "3 párrafos o menos")
	assert.Contains(t, prompt, "- Longitud de párrafo: 0.3 ")
	assert.Contains(t, prompt, "- Qué NO hacer: No usar emojis\n")
	assert.Contains(t, prompt, "- Técnicas para el asunto: "+generator.NoSubjectTechnique)

	require.NoError(t, cfg.SubjectOptions.Set("shock", true))
	require.NoError(t, cfg.SubjectOptions.Set("intriga", true))
	assert.Contains(t, generator.CompileGenerationPrompt(cfg, 1, nil), "- Técnicas para el asunto: intriga, shock\n")
}

func TestCompileGenerationPrompt_OutputFormat(t *testing.T) {
	prompt := generator.CompileGenerationPrompt(emptyConfig(), 0, nil)

	assert.Contains(t, prompt, "array JSON de 1 objeto(s)")
	assert.Contains(t, prompt, `"subject"`)
	assert.Contains(t, prompt, `"body"`)
	assert.Contains(t, prompt, `\n\n`)
	assert.Contains(t, prompt, `[{"subject": `)
}

func TestCompileGenerationPrompt_EndToEnd(t *testing.T) {
	cfg := generator.Configuration{
		Topic:           "price increase announcement",
		Objective:       "drive purchase",
		CTA:             "buy now",
		Length:          generator.LengthNormal,
		ParagraphLength: 0.4,
		ImagePlacement:  generator.ImagePlacement{Auto: true},
	}
	require.NoError(t, cfg.Formulas.Set("AIDA", 5))
	require.NoError(t, cfg.SubjectOptions.Set("intriga", true))

	prompt := generator.CompileGenerationPrompt(cfg, 1, nil)

	for _, want := range []string{
		"price increase announcement",
		"drive purchase",
		generator.DetailsPlaceholder,
		"buy now",
		"entre 4 y 7 párrafos",
		"intriga",
		"- AIDA: 5/10",
		generator.ImageAutoInstruction,
	} {
		assert.Contains(t, prompt, want)
	}
	assert.NotContains(t, prompt, "HISTORIAL DE FEEDBACK")
}

func TestBuildGenerationRequest(t *testing.T) {
	req := generator.BuildGenerationRequest(emptyConfig(), 3, nil)

	assert.Equal(t, 3, req.Count)
	assert.Equal(t, generator.EmailListSchema.Name, req.Schema.Name)
	assert.Contains(t, req.Instruction, "array JSON de 3 objeto(s)")
}

func TestCompileSuggestionPrompt(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		cfg      generator.Configuration
		sentinel bool
		contains []string
	}{
		{
			name:     "no context non topic field",
			label:    "Objetivo del Email",
			sentinel: true,
		},
		{
			name:     "no context topic field",
			label:    "Tema o Premisa del Email",
			contains: []string{`"Tema o Premisa del Email"`, "No hay contexto todavía, sé creativo."},
		},
		{
			name:     "english topic label",
			label:    "Main Topic",
			contains: []string{"No hay contexto todavía"},
		},
		{
			name:  "with context",
			label: "CTA y Link",
			cfg:   generator.Configuration{Topic: "subida de precio", Avatar: "emprendedores"},
			contains: []string{
				"- Tema Principal: subida de precio",
				"- Avatar: emprendedores",
				"sin adornos, explicaciones, ni comillas",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := generator.CompileSuggestionPrompt(tt.label, tt.cfg)
			if tt.sentinel {
				assert.Equal(t, generator.InsufficientContextInstruction, got)
				return
			}
			assert.NotEqual(t, generator.InsufficientContextInstruction, got)
			for _, c := range tt.contains {
				assert.Contains(t, got, c)
			}
			assert.NotContains(t, got, "- Objetivo:")
		})
	}
}

func TestSuggestionPromptFor(t *testing.T) {
	_, err := generator.SuggestionPromptFor("formulas", emptyConfig())
	assert.ErrorIs(t, err, generator.ErrNotSuggestable)

	_, err = generator.SuggestionPromptFor("nope", emptyConfig())
	assert.ErrorIs(t, err, generator.ErrUnknownField)

	got, err := generator.SuggestionPromptFor("topic", emptyConfig())
	require.NoError(t, err)
	assert.Contains(t, got, `"Tema o Premisa del Email"`)

	got, err = generator.SuggestionPromptFor("anecdote", emptyConfig())
	require.NoError(t, err)
	assert.Equal(t, generator.InsufficientContextInstruction, got)
}
