// Package parse turns a model reply into a PerspectiveSet.
//
// A reply is read as a small grammar: numbered segment boundaries ("1." …
// "10." at the start of a line) followed by labeled fields inside each
// segment. Replies that are a JSON object keyed "1".."10" are accepted too.
// The parser never returns a partial set: either all ten perspectives are
// well formed or the result is a *MalformedError.
package parse

import (
	"errors"
	"fmt"
	"strings"

	"perspectives/internal/util/jsonutil"

	t "perspectives/internal/types"
)

// ErrMalformedResponse matches every *MalformedError.
var ErrMalformedResponse = errors.New("malformed response")

// MalformedError describes why a reply could not be parsed. Index is the
// 1-based perspective at fault, or 0 when the reply as a whole is short.
type MalformedError struct {
	Index  int
	Detail string
}

func (e *MalformedError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("malformed response: perspective %d: %s", e.Index, e.Detail)
	}
	return "malformed response: " + e.Detail
}

func (e *MalformedError) Is(target error) bool { return target == ErrMalformedResponse }

// Result is a successfully parsed reply. Extra counts numbered entries past
// the tenth, which are dropped.
type Result struct {
	Set   t.PerspectiveSet
	Extra int
}

// Parse extracts exactly ten perspectives from raw. method decides whether
// Criteria is required (criteria-based) or dropped (free-form).
func Parse(raw string, method t.Method) (Result, error) {
	if looksLikeJSON(raw) {
		return parseJSON(raw, method)
	}
	segs, extra := split(raw)
	if len(segs) == 0 {
		if _, err := jsonutil.ExtractObject(raw); err == nil {
			return parseJSON(raw, method)
		}
	}
	if len(segs) < t.PerspectivesPerSet {
		return Result{}, &MalformedError{Detail: fmt.Sprintf("found %d of %d numbered perspectives", len(segs), t.PerspectivesPerSet)}
	}

	set := make(t.PerspectiveSet, 0, t.PerspectivesPerSet)
	for i, seg := range segs {
		f := readFields(seg, extra == 0 && i == len(segs)-1)
		p, err := f.perspective(i+1, method)
		if err != nil {
			return Result{}, err
		}
		set = append(set, p)
	}
	return Result{Set: set, Extra: extra}, nil
}

func looksLikeJSON(raw string) bool {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(s, "```"), "json"))
	}
	return strings.HasPrefix(s, "{")
}

// fields holds the raw values collected for one segment.
type fields struct {
	lead     string
	stance   []string
	criteria []string
	reason   []string

	// items holds criteria that arrived already split (JSON arrays).
	items []string

	// strayStance is set when a numbered "N. Stance:" line sits inside the
	// segment, so the lead line cannot be trusted as the stance.
	strayStance bool
}

func (f fields) perspective(index int, method t.Method) (t.Perspective, error) {
	stance := joinValue(f.stance)
	if stance == "" && !f.strayStance {
		stance = cleanValue(strings.TrimSuffix(strings.TrimSpace(f.lead), ":"))
	}
	if stance == "" {
		return t.Perspective{}, &MalformedError{Index: index, Detail: "missing Stance"}
	}
	reason := joinValue(f.reason)
	if reason == "" {
		return t.Perspective{}, &MalformedError{Index: index, Detail: "missing Reason"}
	}
	p := t.Perspective{Stance: stance, Reason: reason}
	if method.RequiresCriteria() {
		p.Criteria = f.items
		if p.Criteria == nil {
			p.Criteria = splitCriteria(f.criteria)
		}
		if len(p.Criteria) == 0 {
			return t.Perspective{}, &MalformedError{Index: index, Detail: "missing Criteria"}
		}
	}
	return p, nil
}

// joinValue joins the lines of a field with spaces and keeps paragraph
// breaks (empty parts) as a blank line.
func joinValue(parts []string) string {
	var paras, cur []string
	end := func() {
		if len(cur) > 0 {
			paras = append(paras, strings.Join(cur, " "))
			cur = nil
		}
	}
	for _, p := range parts {
		if p = cleanValue(p); p == "" {
			end()
			continue
		}
		cur = append(cur, p)
	}
	end()
	return strings.Join(paras, "\n\n")
}

// cleanValue trims whitespace and a wrapping pair of markdown emphasis marks.
func cleanValue(s string) string {
	s = strings.TrimSpace(s)
	for _, mark := range []string{"**", "__"} {
		if len(s) > 2*len(mark) && strings.HasPrefix(s, mark) && strings.HasSuffix(s, mark) {
			s = strings.TrimSpace(s[len(mark) : len(s)-len(mark)])
		}
	}
	return s
}
