package generator

import (
	"fmt"
	"strings"
)

const (
	// DetailsPlaceholder stands in for an empty details field.
	DetailsPlaceholder = "No se han proporcionado detalles específicos. No inventes datos concretos (precios, fechas, cifras)."

	// NoSubjectTechnique is used when every subject option is off.
	NoSubjectTechnique = "libre elección (usa la técnica que consideres más efectiva)"

	ImageAutoInstruction = "Sugiere el mejor lugar del cuerpo para una imagen e indícalo en una línea propia con el marcador [IMAGEN: descripción breve de la imagen sugerida]."
	ImageNoneInstruction = "No incluyas imágenes ni marcadores de imagen en el email."

	// InsufficientContextInstruction is returned instead of a suggestion
	// prompt when there is nothing to base a suggestion on. Callers compare
	// against it before dispatching.
	InsufficientContextInstruction = "No hay suficiente contexto. Por favor, rellena primero el tema o el objetivo."
)

// ImagePlaceholder is the literal token the model must copy into the body
// where an uploaded image goes.
func ImagePlaceholder(name string) string {
	return fmt.Sprintf("[IMAGEN: %s]", name)
}

// GenerationRequest is a compiled generation call.
type GenerationRequest struct {
	Instruction string
	Count       int
	Schema      Schema
}

// BuildGenerationRequest compiles cfg and attaches the email list contract.
func BuildGenerationRequest(cfg Configuration, count int, feedback []Feedback) GenerationRequest {
	if count < 1 {
		count = 1
	}
	return GenerationRequest{
		Instruction: CompileGenerationPrompt(cfg, count, feedback),
		Count:       count,
		Schema:      EmailListSchema,
	}
}

// CompileGenerationPrompt renders the full generation instruction. Output
// depends only on its arguments.
func CompileGenerationPrompt(cfg Configuration, count int, feedback []Feedback) string {
	if count < 1 {
		count = 1
	}

	var sb strings.Builder
	sb.WriteString("Eres un copywriter experto en email marketing y newsletters en español.\n")
	if count == 1 {
		sb.WriteString("Escribe 1 email siguiendo al pie de la letra las indicaciones de abajo.\n\n")
	} else {
		sb.WriteString(fmt.Sprintf("Escribe %d variantes distintas de email siguiendo al pie de la letra las indicaciones de abajo.\n\n", count))
	}

	writeFeedback(&sb, feedback)

	sb.WriteString("### ESTRATEGIA\n")
	sb.WriteString(fmt.Sprintf("- Tema principal: %s\n", cfg.Topic))
	sb.WriteString(fmt.Sprintf("- Objetivo: %s\n\n", cfg.Objective))

	sb.WriteString("### AUDIENCIA\n")
	sb.WriteString(fmt.Sprintf("- Avatar: %s\n", cfg.Avatar))
	sb.WriteString(fmt.Sprintf("- Dolores: %s\n\n", cfg.Pains))

	writeContent(&sb, cfg)

	sb.WriteString("### ESTILO\n")
	sb.WriteString(fmt.Sprintf("- Tono y voz: %s\n", cfg.ToneDescription))
	sb.WriteString(fmt.Sprintf("- Ejemplos de tono (imita este estilo): \"%s\"\n", cfg.ToneExamples))
	sb.WriteString(fmt.Sprintf("- Principio de copywriting: %s\n\n", cfg.CopywritingPrinciple))

	sb.WriteString("### FÓRMULAS (intensidad de 0 a 10)\n")
	for i, f := range Formulas {
		sb.WriteString(fmt.Sprintf("- %s: %d/10\n", f.Name, cfg.Formulas[i]))
	}
	sb.WriteString("\n")

	sb.WriteString("### ESTRUCTURA\n")
	sb.WriteString(fmt.Sprintf("- Longitud del email: %s\n", cfg.Length.Descriptor()))
	sb.WriteString(fmt.Sprintf("- Longitud de párrafo: %.1f (0.0 = párrafos de una sola frase, 1.0 = párrafos largos y desarrollados)\n", cfg.ParagraphLength))
	sb.WriteString(fmt.Sprintf("- Qué NO hacer: %s\n\n", cfg.NegativePrompt))

	sb.WriteString("### ASUNTO\n")
	if keys := cfg.SubjectOptions.EnabledKeys(); len(keys) > 0 {
		sb.WriteString(fmt.Sprintf("- Técnicas para el asunto: %s\n\n", strings.Join(keys, ", ")))
	} else {
		sb.WriteString(fmt.Sprintf("- Técnicas para el asunto: %s\n\n", NoSubjectTechnique))
	}

	sb.WriteString("### IMAGEN\n")
	sb.WriteString("- " + imageInstruction(cfg.ImagePlacement) + "\n\n")

	writeOutputFormat(&sb, count)
	return sb.String()
}

func writeFeedback(sb *strings.Builder, feedback []Feedback) {
	if len(feedback) == 0 {
		return
	}
	sb.WriteString("### HISTORIAL DE FEEDBACK\n")
	sb.WriteString("Valoraciones del usuario sobre emails anteriores:\n")
	for i, f := range feedback {
		sb.WriteString(fmt.Sprintf("- Email %d: %d/5 estrellas", i+1, f.OverallRating))
		if text := strings.TrimSpace(f.Text); text != "" {
			sb.WriteString(fmt.Sprintf(". Comentario: \"%s\"", text))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Aplica lo aprendido: repite lo que se valoró bien y corrige lo que se valoró mal.\n\n")
}

func writeContent(sb *strings.Builder, cfg Configuration) {
	sb.WriteString("### CONTENIDO\n")
	details := cfg.Details
	if strings.TrimSpace(details) == "" {
		details = DetailsPlaceholder
	}
	sb.WriteString(fmt.Sprintf("- Detalles a incluir: %s\n", details))
	sb.WriteString(fmt.Sprintf("- Llamada a la acción (CTA): %s\n", cfg.CTA))

	if services := cfg.EnabledServices(); len(services) > 0 {
		sb.WriteString("- Servicios a mencionar de forma natural:\n")
		for _, s := range services {
			sb.WriteString(fmt.Sprintf("  - %s: %s (%s)\n", s.Title, s.Description, s.Link))
		}
	}
	if strings.TrimSpace(cfg.Anecdote) != "" {
		sb.WriteString(fmt.Sprintf("- Anécdota: %s\n", cfg.Anecdote))
	}
	if strings.TrimSpace(cfg.Testimonial) != "" {
		sb.WriteString(fmt.Sprintf("- Testimonio: %s\n", cfg.Testimonial))
	}
	if strings.TrimSpace(cfg.Postscript) != "" {
		sb.WriteString(fmt.Sprintf("- Postdata: %s\n", cfg.Postscript))
	}
	sb.WriteString("\n")
}

func imageInstruction(p ImagePlacement) string {
	switch p.Mode() {
	case ImageUploaded:
		return fmt.Sprintf("El usuario ha subido una imagen llamada %q. Colócala donde mejor encaje escribiendo, en una línea propia del cuerpo, exactamente este marcador sin modificarlo: %s", p.Image.Name, ImagePlaceholder(p.Image.Name))
	case ImageAuto:
		return ImageAutoInstruction
	case ImageDescribed:
		return fmt.Sprintf("Incluye una imagen en esta ubicación indicada por el usuario: %s. Márcala en una línea propia con [IMAGEN: descripción breve].", p.Description)
	default:
		return ImageNoneInstruction
	}
}

func writeOutputFormat(sb *strings.Builder, count int) {
	sb.WriteString("### FORMATO DE RESPUESTA\n")
	sb.WriteString(fmt.Sprintf("Responde ÚNICAMENTE con un array JSON de %d objeto(s). ", count))
	sb.WriteString(`Cada objeto tiene exactamente dos claves de tipo string: "subject" (el asunto) y "body" (el cuerpo). `)
	sb.WriteString(`Dentro de "body" separa los párrafos con la secuencia \n\n. `)
	sb.WriteString("No escribas nada más: ni explicaciones, ni texto antes o después, ni bloques de código.\n")
	sb.WriteString("Ejemplo:\n")
	sb.WriteString(`[{"subject": "El error que casi me cuesta el negocio", "body": "Primer párrafo.\n\nSegundo párrafo.\n\nCTA final."}]`)
	sb.WriteString("\n")
}

// CompileSuggestionPrompt builds the instruction for a one-field
// suggestion. It returns InsufficientContextInstruction when topic,
// objective and avatar are all empty, unless the field itself is the topic.
func CompileSuggestionPrompt(fieldLabel string, cfg Configuration) string {
	var parts []string
	if cfg.Topic != "" {
		parts = append(parts, "- Tema Principal: "+cfg.Topic)
	}
	if cfg.Objective != "" {
		parts = append(parts, "- Objetivo: "+cfg.Objective)
	}
	if cfg.Avatar != "" {
		parts = append(parts, "- Avatar: "+cfg.Avatar)
	}

	label := strings.ToLower(fieldLabel)
	if len(parts) == 0 && !strings.Contains(label, "tema") && !strings.Contains(label, "topic") {
		return InsufficientContextInstruction
	}

	context := " No hay contexto todavía, sé creativo."
	if len(parts) > 0 {
		context = "\n\nAquí tienes algo de contexto del email para ayudarte:\n" + strings.Join(parts, "\n")
	}

	return fmt.Sprintf("Eres un experto en copywriting. Genera una sugerencia creativa y concisa para el campo %q de un newsletter.%s\n\nResponde únicamente con el texto para el campo, sin adornos, explicaciones, ni comillas. Solo el texto puro.", fieldLabel, context)
}
