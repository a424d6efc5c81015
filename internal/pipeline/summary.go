package pipeline

import (
	"fmt"
	"sort"
	"strings"

	t "perspectives/internal/types"
)

// ErrorKind classifies a failed request.
type ErrorKind string

const (
	KindTemplateMissing     ErrorKind = "TemplateMissing"
	KindAPIRequestFailed    ErrorKind = "ApiRequestFailed"
	KindMalformedResponse   ErrorKind = "MalformedResponse"
	KindArtifactWriteFailed ErrorKind = "ArtifactWriteFailed"
)

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Outcome is the result of one request. Kind and Err are set only for
// failures.
type Outcome struct {
	ID     t.ArtifactID
	Status Status
	Kind   ErrorKind
	Err    error
}

type Summary struct {
	Succeeded int
	Skipped   int
	Failed    int
	Outcomes  []Outcome
	Counts    map[ErrorKind]int
}

func (s *Summary) add(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	switch o.Status {
	case StatusSucceeded:
		s.Succeeded++
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
		if s.Counts == nil {
			s.Counts = make(map[ErrorKind]int)
		}
		s.Counts[o.Kind]++
	}
}

// Count returns how many requests failed with kind.
func (s Summary) Count(kind ErrorKind) int { return s.Counts[kind] }

func (s Summary) String() string {
	out := fmt.Sprintf("%d succeeded / %d skipped-existing / %d failed", s.Succeeded, s.Skipped, s.Failed)
	if len(s.Counts) == 0 {
		return out
	}
	kinds := make([]string, 0, len(s.Counts))
	for k, n := range s.Counts {
		kinds = append(kinds, fmt.Sprintf("%s=%d", k, n))
	}
	sort.Strings(kinds)
	return out + " (" + strings.Join(kinds, ", ") + ")"
}
