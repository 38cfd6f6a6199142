// Package signature defines task signatures: the declarative contract of
// named input fields, named output fields and free-text instructions that
// every predictor consumes.
//
// Signatures are immutable. Extending one with [Signature.Append] or
// [Signature.WithInstructions] returns a new value and leaves the receiver
// untouched, so a signature can be shared between goroutines once built.
package signature

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateField is returned when a field name is declared twice, either
// within one side of a signature or across inputs and outputs.
var ErrDuplicateField = errors.New("signature: duplicate field")

// ErrInvalidSpec is returned by Parse for malformed "inputs -> outputs" strings.
var ErrInvalidSpec = errors.New("signature: invalid spec")

// Kind selects the side of a signature a field belongs to.
type Kind int

const (
	Input Kind = iota
	Output
)

// String returns "input" or "output".
func (k Kind) String() string {
	if k == Output {
		return "output"
	}
	return "input"
}

// Field describes one named input or output.
type Field struct {
	Name string
	// Desc is shown to the model next to the field name.
	Desc string
	// Type is a human readable type hint such as "str" or "dict[str, Any]".
	Type string
}

// Signature is an ordered input/output field contract plus instructions.
type Signature struct {
	inputs       []Field
	outputs      []Field
	instructions string
}

// New creates a signature. Field names must be non-empty and unique across
// both inputs and outputs.
func New(inputs, outputs []Field, instructions string) (*Signature, error) {
	s := &Signature{instructions: instructions}
	for _, f := range inputs {
		if err := s.add(Input, f); err != nil {
			return nil, err
		}
	}
	for _, f := range outputs {
		if err := s.add(Output, f); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustNew is like New but panics on error.
func MustNew(inputs, outputs []Field, instructions string) *Signature {
	s, err := New(inputs, outputs, instructions)
	if err != nil {
		panic(err)
	}
	return s
}

// Parse builds a signature from the compact "in1, in2 -> out1, out2" form.
// Both sides must name at least one field.
func Parse(spec string) (*Signature, error) {
	left, right, ok := strings.Cut(spec, "->")
	if !ok {
		return nil, fmt.Errorf("%w: %q has no \"->\"", ErrInvalidSpec, spec)
	}

	inputs := splitNames(left)
	outputs := splitNames(right)
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("%w: %q needs inputs and outputs", ErrInvalidSpec, spec)
	}

	in := make([]Field, len(inputs))
	for i, name := range inputs {
		in[i] = Field{Name: name}
	}
	out := make([]Field, len(outputs))
	for i, name := range outputs {
		out[i] = Field{Name: name}
	}
	return New(in, out, "")
}

// MustParse is like Parse but panics on error.
func MustParse(spec string) *Signature {
	s, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return s
}

func splitNames(side string) []string {
	var names []string
	for _, part := range strings.Split(side, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (s *Signature) add(kind Kind, f Field) error {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return fmt.Errorf("signature: empty %s field name", kind)
	}
	if s.has(name) {
		return fmt.Errorf("%w: %q", ErrDuplicateField, name)
	}
	f.Name = name
	if kind == Output {
		s.outputs = append(s.outputs, f)
	} else {
		s.inputs = append(s.inputs, f)
	}
	return nil
}

func (s *Signature) has(name string) bool {
	return s.HasInput(name) || s.HasOutput(name)
}

func (s *Signature) clone() *Signature {
	return &Signature{
		inputs:       append([]Field(nil), s.inputs...),
		outputs:      append([]Field(nil), s.outputs...),
		instructions: s.instructions,
	}
}

// Append returns a copy of the signature extended with one more field.
func (s *Signature) Append(kind Kind, f Field) (*Signature, error) {
	c := s.clone()
	if err := c.add(kind, f); err != nil {
		return nil, err
	}
	return c, nil
}

// MustAppend is like Append but panics on error.
func (s *Signature) MustAppend(kind Kind, f Field) *Signature {
	c, err := s.Append(kind, f)
	if err != nil {
		panic(err)
	}
	return c
}

// WithInstructions returns a copy of the signature with new instructions.
func (s *Signature) WithInstructions(instructions string) *Signature {
	c := s.clone()
	c.instructions = instructions
	return c
}

// WithoutOutputs returns a copy that keeps the inputs and instructions but
// declares no outputs.
func (s *Signature) WithoutOutputs() *Signature {
	c := s.clone()
	c.outputs = nil
	return c
}

// Instructions returns the free-text task instructions.
func (s *Signature) Instructions() string {
	return s.instructions
}

// Inputs returns the input fields in declaration order.
func (s *Signature) Inputs() []Field {
	return append([]Field(nil), s.inputs...)
}

// Outputs returns the output fields in declaration order.
func (s *Signature) Outputs() []Field {
	return append([]Field(nil), s.outputs...)
}

// InputNames returns the input field names in declaration order.
func (s *Signature) InputNames() []string {
	return names(s.inputs)
}

// OutputNames returns the output field names in declaration order.
func (s *Signature) OutputNames() []string {
	return names(s.outputs)
}

// HasInput reports whether name is a declared input.
func (s *Signature) HasInput(name string) bool {
	_, ok := s.Input(name)
	return ok
}

// HasOutput reports whether name is a declared output.
func (s *Signature) HasOutput(name string) bool {
	_, ok := s.Output(name)
	return ok
}

// Input looks up an input field by name.
func (s *Signature) Input(name string) (Field, bool) {
	return lookup(s.inputs, name)
}

// Output looks up an output field by name.
func (s *Signature) Output(name string) (Field, bool) {
	return lookup(s.outputs, name)
}

// String renders the compact "inputs -> outputs" form.
func (s *Signature) String() string {
	return strings.Join(s.InputNames(), ", ") + " -> " + strings.Join(s.OutputNames(), ", ")
}

func names(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

func lookup(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
