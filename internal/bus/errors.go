package bus

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports properties supplied to bind that aren't in the
// producer- or consumer-supported set, or a malformed partition count.
type ValidationError struct {
	Name string
	Kind string // "consumer", "producer", or "count" for a malformed partition count
	Keys []string
}

func (e *ValidationError) Error() string {
	keys := append([]string(nil), e.Keys...)
	sort.Strings(keys)
	plural := "y"
	if len(keys) != 1 {
		plural = "ies"
	}
	return fmt.Sprintf("bus does not support %s propert%s: %s for %s", e.Kind, plural, strings.Join(keys, ","), e.Name)
}

// BindingFailure reports that a transport plugin could not establish a
// binding. Any partial resources (such as a dynamically created channel)
// are released before this surfaces.
type BindingFailure struct {
	Name string
	Err  error
}

func (e *BindingFailure) Error() string {
	return fmt.Sprintf("failed to bind %q: %v", e.Name, e.Err)
}

func (e *BindingFailure) Unwrap() error { return e.Err }

// SerializationError reports that encoding or decoding a payload failed. It
// names the class/type that was attempted.
type SerializationError struct {
	ClassName string
	Err       error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("unable to (de)serialize payload [%s]: %v", e.ClassName, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// ClassResolutionError reports that a named partition key extractor or
// selector strategy could not be resolved.
type ClassResolutionError struct {
	Name string
	Err  error
}

func (e *ClassResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve strategy %q: %v", e.Name, e.Err)
}

func (e *ClassResolutionError) Unwrap() error { return e.Err }
