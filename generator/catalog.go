package generator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Formula is one entry of the fixed copywriting formula catalog.
type Formula struct {
	Name        string
	Description string
}

// Formulas is ordered; prompt rendering follows this order.
var Formulas = [...]Formula{
	{Name: "AIDA", Description: "Atención, Interés, Deseo, Acción."},
	{Name: "PAS", Description: "Problema, Agitación, Solución."},
	{Name: "Storytelling", Description: "Contar una historia que conecte emocionalmente."},
	{Name: "4P", Description: "Picture, Promise, Prove, Push."},
	{Name: "BAB", Description: "Before, After, Bridge."},
	{Name: "FAB", Description: "Features, Advantages, Benefits."},
	{Name: "QUEST", Description: "Qualify, Understand, Educate, Stimulate, Transition."},
	{Name: "SLAP", Description: "Stop, Look, Act, Purchase."},
	{Name: "SUCCESs", Description: "Simple, Unexpected, Concrete, Credible, Emotional, Stories."},
	{Name: "The 4 U's", Description: "Useful, Urgent, Unique, Ultra-specific."},
}

// SubjectOption is one subject-line technique.
type SubjectOption struct {
	Key   string
	Label string
}

var SubjectOptionCatalog = [...]SubjectOption{
	{Key: "intriga", Label: "Intriga (generar curiosidad)"},
	{Key: "dolor", Label: "Dolor (apelar a un dolor del avatar)"},
	{Key: "shock", Label: "Shock (sorpresa, contraste, etc)"},
	{Key: "resumen", Label: "Resumen (el email resumido en pocas palabras)"},
	{Key: "actualidad", Label: "Actualidad (tocar temas de moda)"},
}

const (
	MinIntensity = 0
	MaxIntensity = 10
)

var (
	ErrUnknownFormula       = errors.New("unknown formula")
	ErrUnknownSubjectOption = errors.New("unknown subject option")
	ErrIntensityRange       = errors.New("formula intensity must be between 0 and 10")
)

func formulaIndex(name string) int {
	for i, f := range Formulas {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func subjectOptionIndex(key string) int {
	for i, o := range SubjectOptionCatalog {
		if o.Key == key {
			return i
		}
	}
	return -1
}

// FormulaIntensities holds one 0-10 value per catalog formula, indexed by
// catalog position. Keys outside the catalog cannot be represented.
type FormulaIntensities [len(Formulas)]int

// UniformIntensities sets every formula to v.
func UniformIntensities(v int) (FormulaIntensities, error) {
	var fi FormulaIntensities
	if v < MinIntensity || v > MaxIntensity {
		return fi, fmt.Errorf("%w: %d", ErrIntensityRange, v)
	}
	for i := range fi {
		fi[i] = v
	}
	return fi, nil
}

func (fi FormulaIntensities) Get(name string) (int, bool) {
	i := formulaIndex(name)
	if i < 0 {
		return 0, false
	}
	return fi[i], true
}

func (fi *FormulaIntensities) Set(name string, v int) error {
	i := formulaIndex(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownFormula, name)
	}
	if v < MinIntensity || v > MaxIntensity {
		return fmt.Errorf("%w: %s=%d", ErrIntensityRange, name, v)
	}
	fi[i] = v
	return nil
}

func (fi FormulaIntensities) Validate() error {
	for i, v := range fi {
		if v < MinIntensity || v > MaxIntensity {
			return fmt.Errorf("%w: %s=%d", ErrIntensityRange, Formulas[i].Name, v)
		}
	}
	return nil
}

// MarshalJSON writes an object keyed by formula name in catalog order.
func (fi FormulaIntensities) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range Formulas {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", fi[i])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (fi *FormulaIntensities) UnmarshalJSON(data []byte) error {
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out FormulaIntensities
	for name, v := range raw {
		if err := out.Set(name, v); err != nil {
			return err
		}
	}
	*fi = out
	return nil
}

// SubjectOptions flags which subject techniques are enabled, indexed by
// catalog position.
type SubjectOptions [len(SubjectOptionCatalog)]bool

func (so SubjectOptions) Enabled(key string) bool {
	i := subjectOptionIndex(key)
	return i >= 0 && so[i]
}

func (so *SubjectOptions) Set(key string, on bool) error {
	i := subjectOptionIndex(key)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownSubjectOption, key)
	}
	so[i] = on
	return nil
}

// EnabledKeys returns the enabled technique keys in catalog order.
func (so SubjectOptions) EnabledKeys() []string {
	var keys []string
	for i, o := range SubjectOptionCatalog {
		if so[i] {
			keys = append(keys, o.Key)
		}
	}
	return keys
}

func (so SubjectOptions) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, o := range SubjectOptionCatalog {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:%t", o.Key, so[i])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (so *SubjectOptions) UnmarshalJSON(data []byte) error {
	var raw map[string]bool
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out SubjectOptions
	for key, on := range raw {
		if err := out.Set(key, on); err != nil {
			return err
		}
	}
	*so = out
	return nil
}
