package tidy

import "fmt"

// ErrInvalidInput is the error returned when a value cannot be represented
// as a scalar, sequence, mapping or object-like value
type ErrInvalidInput struct {
	Type   string
	Reason string
}

func (e ErrInvalidInput) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid input of type %s", e.Type)
	}
	return fmt.Sprintf("invalid input of type %s: %s", e.Type, e.Reason)
}

// ErrStructureTooDeep is the error returned when a value nests deeper than
// the configured limit. Cyclic object graphs end up here.
type ErrStructureTooDeep struct {
	Depth int
	Limit int
}

func (e ErrStructureTooDeep) Error() string {
	return fmt.Sprintf("structure too deep: depth %d exceeds limit %d", e.Depth, e.Limit)
}

// ErrInvalidSetting is the error returned by ConfigFrom when a setting is
// present but holds a value of the wrong shape
type ErrInvalidSetting struct {
	Name  string
	Value any
}

func (e ErrInvalidSetting) Error() string {
	return fmt.Sprintf("invalid value %v (%T) for setting %s", e.Value, e.Value, e.Name)
}

func invalidInput(v any, reason string) error {
	return ErrInvalidInput{Type: fmt.Sprintf("%T", v), Reason: reason}
}
