package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidLength    = errors.New("length must be corto, normal or largo")
	ErrParagraphDensity = errors.New("paragraph length must be between 0.0 and 1.0")
	ErrDuplicateService = errors.New("duplicate service reference id")
	ErrServiceNotFound  = errors.New("service reference not found")
	ErrLastService      = errors.New("cannot remove the last service reference")
)

// Length is the overall email length category.
type Length string

const (
	LengthShort  Length = "corto"
	LengthNormal Length = "normal"
	LengthLong   Length = "largo"
)

func (l Length) Valid() bool {
	switch l {
	case LengthShort, LengthNormal, LengthLong:
		return true
	}
	return false
}

// Descriptor is the human-readable paragraph range used in prompts.
func (l Length) Descriptor() string {
	switch l {
	case LengthShort:
		return "corto (3 párrafos o menos)"
	case LengthLong:
		return "largo (más de 7 párrafos, con profundidad de newsletter)"
	default:
		return "normal (entre 4 y 7 párrafos)"
	}
}

func (l *Length) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v := Length(s)
	if v != "" && !v.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLength, s)
	}
	*l = v
	return nil
}

// ServiceReference points the copy at one of the sender's offers.
type ServiceReference struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Enabled     bool   `json:"enabled"`
}

func NewServiceReference(id int64) ServiceReference {
	return ServiceReference{ID: id, Enabled: true}
}

// Blank reports whether no text field has been filled in.
func (s ServiceReference) Blank() bool {
	return strings.TrimSpace(s.Title) == "" &&
		strings.TrimSpace(s.Description) == "" &&
		strings.TrimSpace(s.Link) == ""
}

// ImageData is a user upload carried as a base64 payload.
type ImageData struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data"`
}

// ImageMode is the resolved image policy at render time.
type ImageMode int

const (
	ImageNone ImageMode = iota
	ImageDescribed
	ImageAuto
	ImageUploaded
)

func (m ImageMode) String() string {
	switch m {
	case ImageUploaded:
		return "uploaded"
	case ImageAuto:
		return "auto"
	case ImageDescribed:
		return "described"
	default:
		return "none"
	}
}

type ImagePlacement struct {
	Auto        bool       `json:"auto"`
	Description string     `json:"description"`
	Image       *ImageData `json:"imageData"`
}

// Upload attaches an image and switches automatic suggestion off.
func (p *ImagePlacement) Upload(img ImageData) {
	p.Image = &img
	p.Auto = false
}

// RemoveImage drops the upload. Auto stays as it was; callers re-enable it
// explicitly.
func (p *ImagePlacement) RemoveImage() {
	p.Image = nil
}

// Mode applies the priority uploaded > auto > described > none.
func (p ImagePlacement) Mode() ImageMode {
	switch {
	case p.Image != nil && p.Image.Name != "":
		return ImageUploaded
	case p.Auto:
		return ImageAuto
	case strings.TrimSpace(p.Description) != "":
		return ImageDescribed
	default:
		return ImageNone
	}
}

// Configuration is every user-adjustable generation parameter.
type Configuration struct {
	Topic                string             `json:"topic"`
	Objective            string             `json:"objective"`
	Avatar               string             `json:"avatar"`
	Pains                string             `json:"pains"`
	Details              string             `json:"details"`
	Anecdote             string             `json:"anecdote"`
	Testimonial          string             `json:"testimonial"`
	CTA                  string             `json:"cta"`
	Postscript           string             `json:"postscript"`
	NegativePrompt       string             `json:"negativePrompt"`
	ToneDescription      string             `json:"toneDescription"`
	ToneExamples         string             `json:"toneExamples"`
	CopywritingPrinciple string             `json:"copywritingPrinciple"`
	Formulas             FormulaIntensities `json:"formulas"`
	Length               Length             `json:"length"`
	ParagraphLength      float64            `json:"paragraphLength"`
	ServiceReferences    []ServiceReference `json:"serviceReferences"`
	SubjectOptions       SubjectOptions     `json:"subjectOptions"`
	ImagePlacement       ImagePlacement     `json:"imagePlacement"`
}

const defaultNegativePrompt = "No empieces el email por 'hola' ni ningun saludo"

// DefaultConfiguration is the initial form state.
func DefaultConfiguration() Configuration {
	formulas, _ := UniformIntensities(5)
	return Configuration{
		NegativePrompt:    defaultNegativePrompt,
		Formulas:          formulas,
		Length:            LengthNormal,
		ParagraphLength:   0.4,
		ServiceReferences: []ServiceReference{NewServiceReference(1)},
		ImagePlacement:    ImagePlacement{Auto: true},
	}
}

// EnabledServices skips disabled and blank references.
func (c Configuration) EnabledServices() []ServiceReference {
	var out []ServiceReference
	for _, s := range c.ServiceReferences {
		if s.Enabled && !s.Blank() {
			out = append(out, s)
		}
	}
	return out
}

// AddService appends an empty enabled reference with the next free id.
func (c *Configuration) AddService() ServiceReference {
	var next int64 = 1
	for _, s := range c.ServiceReferences {
		if s.ID >= next {
			next = s.ID + 1
		}
	}
	ref := NewServiceReference(next)
	c.ServiceReferences = append(c.ServiceReferences, ref)
	return ref
}

func (c *Configuration) RemoveService(id int64) error {
	idx := -1
	for i, s := range c.ServiceReferences {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %d", ErrServiceNotFound, id)
	}
	if len(c.ServiceReferences) <= 1 {
		return ErrLastService
	}
	c.ServiceReferences = append(c.ServiceReferences[:idx:idx], c.ServiceReferences[idx+1:]...)
	return nil
}

func (c Configuration) Validate() error {
	if !c.Length.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLength, c.Length)
	}
	if c.ParagraphLength < 0 || c.ParagraphLength > 1 {
		return fmt.Errorf("%w: %.2f", ErrParagraphDensity, c.ParagraphLength)
	}
	if err := c.Formulas.Validate(); err != nil {
		return err
	}
	seen := make(map[int64]struct{}, len(c.ServiceReferences))
	for _, s := range c.ServiceReferences {
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateService, s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// GeneratedEmail is one draft returned by the generation call.
type GeneratedEmail struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
