// Package params encodes and decodes per-shader parameter overrides.
//
// The stored form is a single string of name=value entries separated by
// semicolons, e.g. "SCANLINE_STRENGTH=0.45;BLOOM=1". There is no escaping:
// parameter names containing ';' or '=' cannot be represented.
package params

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	entrySep = ";"
	valueSep = "="
)

// Sentinel errors reported per entry by DecodeDetailed.
var (
	ErrMalformedEntry = errors.New("malformed parameter entry")
	ErrInvalidValue   = errors.New("invalid parameter value")
)

// Map holds parameter overrides keyed by parameter name.
type Map map[string]float64

// EntryError describes a single entry that was dropped while decoding.
type EntryError struct {
	Segment string // Raw segment as it appeared in the encoded string
	Err     error  // ErrMalformedEntry or ErrInvalidValue
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("parameter entry %q: %v", e.Segment, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// Decode parses an encoded parameter string.
// Entries that cannot be parsed are dropped; decoding never fails as a whole.
// Values are parsed as written, so "a= 1" is an invalid entry.
func Decode(s string) Map {
	m, _ := DecodeDetailed(s)
	return m
}

// DecodeDetailed parses an encoded parameter string and also returns an
// *EntryError for every dropped entry, in the order they were encountered.
func DecodeDetailed(s string) (Map, []error) {
	m := make(Map)
	var errs []error

	for _, segment := range strings.Split(s, entrySep) {
		if segment == "" {
			continue
		}

		name, raw, ok := strings.Cut(segment, valueSep)
		if !ok {
			errs = append(errs, &EntryError{Segment: segment, Err: ErrMalformedEntry})
			continue
		}

		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, &EntryError{Segment: segment, Err: ErrInvalidValue})
			continue
		}

		m[name] = value
	}

	return m, errs
}

// Encode formats m as name=value entries sorted by name.
// The output is stable so Decode(Encode(m)) reproduces m for finite values.
func Encode(m Map) string {
	if len(m) == 0 {
		return ""
	}

	names := m.Names()
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+valueSep+strconv.FormatFloat(m[name], 'g', -1, 64))
	}

	return strings.Join(parts, entrySep)
}

// Names returns the parameter names in sorted order.
func (m Map) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseAssignments builds a Map from "name=value" arguments, as typed on a
// command line. Unlike Decode it is strict: the first bad argument is an error.
func ParseAssignments(args []string) (Map, error) {
	m := make(Map, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, valueSep)
		if !ok || name == "" {
			return nil, &EntryError{Segment: arg, Err: ErrMalformedEntry}
		}
		if strings.Contains(name, entrySep) {
			return nil, &EntryError{Segment: arg, Err: ErrMalformedEntry}
		}

		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &EntryError{Segment: arg, Err: ErrInvalidValue}
		}
		m[name] = value
	}
	return m, nil
}
