package model

import (
	"strconv"
	"strings"
)

// MaxEmbedInputBytes bounds any text that may later be sent to the embedding
// provider. text-embedding-3-small accepts 8191 tokens; at ~4 bytes per token
// this stays under the limit.
const MaxEmbedInputBytes = 32000

// BoundedText is caller-supplied text that has been trimmed and checked
// against a length bound. The zero value is never produced by NewBoundedText.
type BoundedText struct {
	value string
}

// NewBoundedText trims s and rejects it when empty or longer than maxBytes.
// maxBytes <= 0 means no upper bound.
func NewBoundedText(field, s string, maxBytes int) (BoundedText, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return BoundedText{}, &ValidationError{Field: field, Reason: "must not be empty"}
	}
	if maxBytes > 0 && len(v) > maxBytes {
		return BoundedText{}, &ValidationError{
			Field:  field,
			Reason: "exceeds maximum length of " + strconv.Itoa(maxBytes) + " bytes",
		}
	}
	return BoundedText{value: v}, nil
}

// String returns the validated text.
func (b BoundedText) String() string {
	return b.value
}

// NewBoundedList validates every element of items with NewBoundedText.
// The field name of a failing element is reported as field[i].
func NewBoundedList(field string, items []string, maxBytes int) ([]BoundedText, error) {
	out := make([]BoundedText, 0, len(items))
	for i, it := range items {
		b, err := NewBoundedText(field+"["+strconv.Itoa(i)+"]", it, maxBytes)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Strings unwraps a list of bounded texts.
func Strings(items []BoundedText) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.value
	}
	return out
}
