package survival

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

var ErrUnknownKind = errors.New("unknown need kind")

type UnknownKindError struct {
	Input      string
	Suggestion Kind
}

func (e *UnknownKindError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown need kind %q (did you mean %q?)", e.Input, e.Suggestion)
	}
	return fmt.Sprintf("unknown need kind %q", e.Input)
}

func (e *UnknownKindError) Unwrap() error { return ErrUnknownKind }

const maxSuggestDistance = 2

func ParseKind(raw string) (Kind, error) {
	in := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := profiles[Kind(in)]; ok {
		return Kind(in), nil
	}
	best := Kind("")
	bestDist := maxSuggestDistance + 1
	for _, k := range kindOrder {
		d := levenshtein.ComputeDistance(in, string(k))
		if d < bestDist {
			best = k
			bestDist = d
		}
	}
	return "", &UnknownKindError{Input: raw, Suggestion: best}
}
