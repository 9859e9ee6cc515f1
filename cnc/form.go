package cnc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
)

// ErrUnknownField is returned when a form does not have the requested field.
var ErrUnknownField = errors.New("unknown field")

// An OperationStarter can launch a canned operation.
type OperationStarter interface {
	StartOperation(kind OperationKind, params Params)
}

// Form holds the locally edited parameters of one operation until they are
// submitted.
type Form struct {
	lock   sync.RWMutex
	kind   OperationKind
	values Params
}

// NewForm creates a form seeded with the default parameters of the operation.
func NewForm(kind OperationKind) *Form {
	return &Form{
		kind:   kind,
		values: DefaultParams(kind),
	}
}

// NewForms creates one form for every canned operation.
func NewForms() map[OperationKind]*Form {
	forms := make(map[OperationKind]*Form)
	for _, k := range OperationKinds() {
		forms[k] = NewForm(k)
	}

	return forms
}

// Kind returns the operation that the form launches.
func (f *Form) Kind() OperationKind {
	return f.kind
}

// Set parses raw as a number and stores it in the field. Input that is not a
// number is stored as NaN.
func (f *Form) Set(field, raw string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	if _, ok := f.values[field]; !ok {
		return fmt.Errorf("%w: %s has no field %q", ErrUnknownField, f.kind, field)
	}

	f.values[field] = parseNumber(raw)

	return nil
}

// SetAll sets several fields at once. When any field is unknown nothing is
// changed.
func (f *Form) SetAll(raw map[string]string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	for field := range raw {
		if _, ok := f.values[field]; !ok {
			return fmt.Errorf("%w: %s has no field %q", ErrUnknownField, f.kind, field)
		}
	}

	for field, v := range raw {
		f.values[field] = parseNumber(v)
	}

	return nil
}

// Value returns the current value of a field.
func (f *Form) Value(field string) (float64, bool) {
	f.lock.RLock()
	defer f.lock.RUnlock()

	v, ok := f.values[field]

	return v, ok
}

// Values returns a copy of all the field values.
func (f *Form) Values() Params {
	f.lock.RLock()
	defer f.lock.RUnlock()

	return f.values.Clone()
}

// Submit forwards the operation and a copy of the values to the starter.
func (f *Form) Submit(starter OperationStarter) {
	starter.StartOperation(f.kind, f.Values())
}

// parseNumber accepts only complete numbers. A numeric prefix followed by
// other characters, like "12abc", is not a number.
func parseNumber(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return math.NaN()
	}

	return v
}
