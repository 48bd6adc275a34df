package cooccurrence

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrLengthMismatch    = errors.New("keys and values have different lengths")
	ErrInvalidThreshold  = errors.New("threshold must not be negative")
	ErrUnknownComparison = errors.New("unknown comparison operator")
)

type Comparison string

const (
	Greater        Comparison = ">"
	GreaterOrEqual Comparison = ">="
	Less           Comparison = "<"
	LessOrEqual    Comparison = "<="
	Equal          Comparison = "=="
)

func ParseComparison(s string) (Comparison, error) {
	switch c := Comparison(s); c {
	case Greater, GreaterOrEqual, Less, LessOrEqual, Equal:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownComparison, s)
}

func (c Comparison) Compare(left, right int) bool {
	switch c {
	case Greater:
		return left > right
	case GreaterOrEqual:
		return left >= right
	case Less:
		return left < right
	case LessOrEqual:
		return left <= right
	case Equal:
		return left == right
	}
	return false
}

// Ignorer decides whether a key or a value takes part in the counting.
type Ignorer interface {
	IsIgnored(value string) bool
}

type IgnorerFunc func(value string) bool

func (f IgnorerFunc) IsIgnored(value string) bool {
	return f(value)
}

type nothingIgnored struct{}

func (nothingIgnored) IsIgnored(string) bool {
	return false
}

// PopularSet is the frozen result of a Fit call.
type PopularSet map[string]struct{}

func (p PopularSet) Contains(key string) bool {
	_, ok := p[key]
	return ok
}

func (p PopularSet) Len() int {
	return len(p)
}

func (p PopularSet) Sorted() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Detector flags keys that cooccur with a number of distinct values matching
// the threshold comparison, e.g. an email used under many different names.
type Detector struct {
	threshold   int
	comparison  Comparison
	ignoreKey   Ignorer
	ignoreValue Ignorer
}

// NewDetector builds a detector. Nil ignorers ignore nothing.
func NewDetector(threshold int, comparison Comparison, ignoreKey, ignoreValue Ignorer) (*Detector, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidThreshold, threshold)
	}
	if _, err := ParseComparison(string(comparison)); err != nil {
		return nil, err
	}
	if ignoreKey == nil {
		ignoreKey = nothingIgnored{}
	}
	if ignoreValue == nil {
		ignoreValue = nothingIgnored{}
	}

	return &Detector{
		threshold:   threshold,
		comparison:  comparison,
		ignoreKey:   ignoreKey,
		ignoreValue: ignoreValue,
	}, nil
}

// Cardinalities returns the number of distinct values seen per key, skipping ignored pairs.
func (d *Detector) Cardinalities(keys, values []string) (map[string]int, error) {
	if len(keys) != len(values) {
		return nil, fmt.Errorf("%w: %d keys, %d values", ErrLengthMismatch, len(keys), len(values))
	}

	counter := make(map[string]map[string]struct{})
	for i, key := range keys {
		value := values[i]
		if d.ignoreKey.IsIgnored(key) || d.ignoreValue.IsIgnored(value) {
			continue
		}
		set, ok := counter[key]
		if !ok {
			set = make(map[string]struct{})
			counter[key] = set
		}
		set[value] = struct{}{}
	}

	result := make(map[string]int, len(counter))
	for key, set := range counter {
		result[key] = len(set)
	}
	return result, nil
}

func (d *Detector) Fit(keys, values []string) (PopularSet, error) {
	counts, err := d.Cardinalities(keys, values)
	if err != nil {
		return nil, err
	}

	popular := make(PopularSet)
	for key, count := range counts {
		if d.comparison.Compare(count, d.threshold) {
			popular[key] = struct{}{}
		}
	}
	return popular, nil
}
