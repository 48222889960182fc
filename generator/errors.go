package generator

import (
	"errors"
	"net/http"
)

// Failure kinds of the generation and suggestion calls. None is retried.
var (
	ErrMissingCredential = errors.New("llm api key missing")
	ErrTransport         = errors.New("llm request failed")
	ErrMalformedResponse = errors.New("llm response is not valid JSON")
	ErrSchemaViolation   = errors.New("llm response does not match the declared schema")
	ErrBusy              = errors.New("a generation is already in progress")
)

// UserMessage turns any call failure into the single message shown to the
// user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingCredential):
		return "Falta la API Key. Configúrala antes de generar."
	case errors.Is(err, ErrTransport):
		return "Error en la comunicación con el servicio de IA. Inténtalo de nuevo."
	case errors.Is(err, ErrMalformedResponse), errors.Is(err, ErrSchemaViolation):
		return "La IA devolvió una respuesta con un formato inesperado. Inténtalo de nuevo."
	case errors.Is(err, ErrBusy):
		return "Ya hay una generación en curso. Espera a que termine."
	default:
		return "Ocurrió un error desconocido."
	}
}

// MapHTTPStatus maps generator errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingCredential):
		return http.StatusUnauthorized
	case errors.Is(err, ErrBusy):
		return http.StatusConflict
	case errors.Is(err, ErrTransport), errors.Is(err, ErrMalformedResponse), errors.Is(err, ErrSchemaViolation):
		return http.StatusBadGateway
	case errors.Is(err, ErrInvalidLength), errors.Is(err, ErrParagraphDensity),
		errors.Is(err, ErrIntensityRange), errors.Is(err, ErrUnknownFormula),
		errors.Is(err, ErrUnknownSubjectOption), errors.Is(err, ErrDuplicateService),
		errors.Is(err, ErrInvalidRating), errors.Is(err, ErrUnknownField),
		errors.Is(err, ErrNotSuggestable), errors.Is(err, ErrLastService),
		errors.Is(err, ErrServiceNotFound):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
