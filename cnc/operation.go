package cnc

import (
	"errors"
	"fmt"
)

// ErrUnknownOperation is returned when an operation name cannot be parsed.
var ErrUnknownOperation = errors.New("unknown operation")

// OperationKind names a canned operation.
type OperationKind string

// Canned operations.
const (
	Threading OperationKind = "threading"
	Pocket    OperationKind = "pocket"
	Drilling  OperationKind = "drilling"
)

// DefaultOperationDuration is the estimated duration, in seconds, of any
// operation without a specific estimate. It is also the estimate of a plain
// cycle start.
const DefaultOperationDuration = 300

// OperationKinds lists the canned operations in display order.
func OperationKinds() []OperationKind {
	return []OperationKind{Threading, Pocket, Drilling}
}

// ParseOperationKind converts a name into an OperationKind.
func ParseOperationKind(name string) (OperationKind, error) {
	for _, k := range OperationKinds() {
		if string(k) == name {
			return k, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownOperation, name)
}

// Title returns the human readable name of the operation.
func (k OperationKind) Title() string {
	switch k {
	case Threading:
		return "Threading"
	case Pocket:
		return "Pocket Milling"
	case Drilling:
		return "Drilling"
	default:
		return string(k)
	}
}

// DefaultOperationDurations returns the estimated durations, in seconds, of
// the canned operations.
func DefaultOperationDurations() map[OperationKind]int {
	return map[OperationKind]int{
		Threading: 180,
		Pocket:    300,
		Drilling:  120,
	}
}

// Params are the numeric parameters of an operation.
type Params map[string]float64

// Clone returns a copy of the parameters.
func (p Params) Clone() Params {
	c := make(Params, len(p))
	for k, v := range p {
		c[k] = v
	}

	return c
}

// Field describes one parameter of an operation.
type Field struct {
	Name     string
	Label    string
	Default  float64
	Editable bool
}

var operationFields = map[OperationKind][]Field{
	Threading: {
		{Name: "diameter", Label: "Diameter", Default: 10, Editable: true},
		{Name: "pitch", Label: "Pitch", Default: 1.25, Editable: true},
		{Name: "length", Label: "Length", Default: 25},
		{Name: "depth", Label: "Depth", Default: 1.0},
	},
	Pocket: {
		{Name: "length", Label: "Length", Default: 50, Editable: true},
		{Name: "width", Label: "Width", Default: 30, Editable: true},
		{Name: "depth", Label: "Depth", Default: 5},
		{Name: "cornerRadius", Label: "Corner Radius", Default: 5},
	},
	Drilling: {
		{Name: "depth", Label: "Depth", Default: 30, Editable: true},
		{Name: "peckDepth", Label: "Peck Depth", Default: 5, Editable: true},
		{Name: "retractHeight", Label: "Retract Height", Default: 2},
		{Name: "dwellTime", Label: "Dwell Time", Default: 0.5},
	},
}

// Fields returns the parameter fields of an operation in display order.
// Unknown operations have no fields.
func Fields(kind OperationKind) []Field {
	return append([]Field(nil), operationFields[kind]...)
}

// DefaultParams returns the default parameters of an operation.
func DefaultParams(kind OperationKind) Params {
	p := Params{}
	for _, f := range operationFields[kind] {
		p[f.Name] = f.Default
	}

	return p
}
