package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
)

var (
	ErrUnknownField   = errors.New("unknown field")
	ErrNotSuggestable = errors.New("no se pueden generar sugerencias para este campo")
)

// Field describes one form control. Label is what the suggestion prompt
// names; it is title and subtitle joined like the form header.
type Field struct {
	Key         string
	Title       string
	Subtitle    string
	Optional    bool
	Suggestable bool
}

func (f Field) Label() string {
	if f.Subtitle == "" {
		return f.Title
	}
	return f.Title + " " + f.Subtitle
}

var Fields = []Field{
	{Key: "topic", Title: "Tema", Subtitle: "o Premisa del Email", Suggestable: true},
	{Key: "objective", Title: "Objetivo", Subtitle: "del Email", Suggestable: true},
	{Key: "avatar", Title: "Avatar", Subtitle: "del Cliente", Suggestable: true},
	{Key: "pains", Title: "Dolores", Subtitle: "del Avatar", Suggestable: true},
	{Key: "details", Title: "Detalles", Subtitle: "a Incluir", Optional: true, Suggestable: true},
	{Key: "anecdote", Title: "Anécdota", Optional: true, Suggestable: true},
	{Key: "testimonial", Title: "Testimonio", Optional: true, Suggestable: true},
	{Key: "imagePlacement", Title: "Imagen", Optional: true},
	{Key: "cta", Title: "CTA", Subtitle: "y Link", Suggestable: true},
	{Key: "serviceReferences", Title: "Referencias", Subtitle: "de Servicios", Optional: true},
	{Key: "postscript", Title: "Postdata", Optional: true, Suggestable: true},
	{Key: "toneDescription", Title: "Tono", Subtitle: "y Voz", Suggestable: true},
	{Key: "toneExamples", Title: "Ejemplos", Subtitle: "de Tono", Suggestable: true},
	{Key: "negativePrompt", Title: "Negative Prompt", Subtitle: "Qué NO Hacer", Suggestable: true},
	{Key: "copywritingPrinciple", Title: "Principio", Subtitle: "de Copywriting", Suggestable: true},
	{Key: "formulas", Title: "Fórmulas", Subtitle: "(Panel DJ)"},
	{Key: "length", Title: "Longitud", Subtitle: "de Email y Párrafos"},
	{Key: "subjectOptions", Title: "Asunto", Subtitle: "Técnicas de Apertura"},
}

// LookupField finds a field by its JSON key.
func LookupField(key string) (Field, error) {
	for _, f := range Fields {
		if f.Key == key {
			return f, nil
		}
	}
	return Field{}, fmt.Errorf("%w: %q", ErrUnknownField, key)
}

// SuggestionPromptFor resolves the field and compiles its suggestion
// instruction.
func SuggestionPromptFor(key string, cfg Configuration) (string, error) {
	f, err := LookupField(key)
	if err != nil {
		return "", err
	}
	if !f.Suggestable {
		return "", fmt.Errorf("%w: %s", ErrNotSuggestable, key)
	}
	return CompileSuggestionPrompt(f.Label(), cfg), nil
}

// ExampleConfiguration is the demo preset. PAS and Storytelling are pinned
// at 8; the rest get a random low intensity.
func ExampleConfiguration() Configuration {
	var formulas FormulaIntensities
	for i, f := range Formulas {
		if f.Name == "Storytelling" || f.Name == "PAS" {
			formulas[i] = 8
			continue
		}
		formulas[i] = rand.Intn(4)
	}
	var subjects SubjectOptions
	_ = subjects.Set("intriga", true)
	_ = subjects.Set("shock", true)

	return Configuration{
		Topic:                "Usar un testimonio potente de un referente para justificar una inminente subida de precio y crear urgencia.",
		Objective:            `Que el lector compre el curso "El mejor negocio del mundo" antes de que suba de precio y desaparezca un bonus valioso.`,
		Details:              `El curso cuesta 120€. El bonus es una entrevista exclusiva sobre "Cambiar palabras para sacudir cerebros". La oferta termina el sábado a las 23:59.`,
		NegativePrompt:       "No sonar como un vendedor de humo. Ser directo, un poco crudo y muy convincente.",
		CopywritingPrinciple: "Usar la urgencia (fecha límite) y la prueba social (testimonios de referentes) para impulsar la acción. El bonus que desaparece crea escasez.",
		Formulas:             formulas,
		ToneDescription:      "Directo, sin rodeos, un poco provocador pero increíblemente seguro de sí mismo. Tono de experto que ha descubierto algo valioso y no tiene tiempo que perder.",
		ToneExamples:         "\"Lo que te voy a contar en este email no es poca cosa, sino mucha cosa.\"\n\"Si eso no es la prueba definitiva de lo desproporcionadamente lucrativo que es este método, no sé qué más decirte.\"",
		Length:               LengthLong,
		ParagraphLength:      0.3,
		CTA:                  "El mejor negocio del mundo, destripado: [link]",
		Postscript:           "PD: solo hasta el sábado, 26 de julio a las 23:59.\nPD 2: toda la información, arriba. En serio, te interesa, poca broma.",
		SubjectOptions:       subjects,
		Avatar:               "Emprendedores, vendedores ambiciosos y gente de negocios que busca métodos probados para escalar sus ventas y mejorar su comunicación.",
		Pains:                "Están cansados de estrategias de marketing que no funcionan, se sienten estancados en sus ventas y buscan una ventaja competitiva real que les permita vender más con menos esfuerzo.",
		Anecdote:             "Encontré una entrevista a una emprendedora que me hizo flipar. Investigué más y más, y me di cuenta de que tenía un talento natural para los negocios. Copié todo lo que pude y eso cambió mi trayectoria, permitiéndome vender más yo solo que antes con un equipo de 12 personas.",
		Testimonial:          `"Acabo de terminar el curso del mejor negocio y solo te digo que si no veo que le subes el precio es que no he entendido bien tu mensaje. Puro oro. Peta cabezas." - Daniel Marín Carrillo, danimarin.com`,
		ImagePlacement:       ImagePlacement{Auto: true},
		ServiceReferences: []ServiceReference{
			{ID: 1, Title: "Asesoría Personalizada", Description: "Una sesión 1 a 1 para resolver tus dudas.", Link: "https://ejemplo.com/asesoria", Enabled: true},
		},
	}
}

// ApplyExample replaces c with the example preset, keeping the fields whose
// keys are locked.
func (c *Configuration) ApplyExample(locked map[string]bool) error {
	example := ExampleConfiguration()
	if len(locked) == 0 {
		*c = example
		return nil
	}

	current, err := fieldMap(*c)
	if err != nil {
		return err
	}
	next, err := fieldMap(example)
	if err != nil {
		return err
	}
	for key, on := range locked {
		if !on {
			continue
		}
		if _, err := LookupField(key); err != nil {
			return err
		}
		if v, ok := current[key]; ok {
			next[key] = v
		}
	}

	merged, err := json.Marshal(next)
	if err != nil {
		return err
	}
	var out Configuration
	if err := json.Unmarshal(merged, &out); err != nil {
		return err
	}
	*c = out
	return nil
}

func fieldMap(c Configuration) (map[string]json.RawMessage, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
