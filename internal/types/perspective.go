package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PerspectivesPerSet is the number of perspectives every prompt asks for.
const PerspectivesPerSet = 10

// Perspective is one generated stance with its reasoning.
// Criteria is only populated for the criteria-based method.
type Perspective struct {
	Stance   string   `json:"Stance"`
	Criteria []string `json:"Criteria,omitempty"`
	Reason   string   `json:"Reason"`
}

// PerspectiveSet keeps perspectives in generation order. Position i is
// serialized under the key strconv.Itoa(i+1).
type PerspectiveSet []Perspective

// MarshalJSON writes the set as an object keyed "1".."N" in numeric order.
func (s PerspectiveSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	out := bytes.NewBufferString("{")
	for i, p := range s {
		if i > 0 {
			out.WriteByte(',')
		}
		out.WriteString(strconv.Quote(strconv.Itoa(i + 1)))
		out.WriteByte(':')
		buf.Reset()
		if err := enc.Encode(p); err != nil {
			return nil, err
		}
		out.Write(bytes.TrimRight(buf.Bytes(), "\n"))
	}
	out.WriteByte('}')
	return out.Bytes(), nil
}

// UnmarshalJSON accepts an object with integer-like keys and orders the
// entries numerically.
func (s *PerspectiveSet) UnmarshalJSON(data []byte) error {
	var raw map[string]Perspective
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	type keyed struct {
		n int
		p Perspective
	}
	entries := make([]keyed, 0, len(raw))
	for k, p := range raw {
		n, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return fmt.Errorf("perspective key %q is not an index", k)
		}
		entries = append(entries, keyed{n: n, p: p})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].n < entries[j].n })
	out := make(PerspectiveSet, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.p)
	}
	*s = out
	return nil
}

// Reasons returns the Reason field of every perspective, in order.
func (s PerspectiveSet) Reasons() []string {
	out := make([]string, 0, len(s))
	for _, p := range s {
		if strings.TrimSpace(p.Reason) != "" {
			out = append(out, p.Reason)
		}
	}
	return out
}
