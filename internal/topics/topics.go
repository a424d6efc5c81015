// Package topics holds the fixed registry of questions perspectives are
// generated for.
package topics

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	t "perspectives/internal/types"
)

var defaults = []t.Topic{
	{
		ID:       "elections",
		Question: "How should we increase the general public's trust in US elections?",
	},
	{
		ID:       "littering",
		Question: "What are the best policies to prevent littering in public spaces?",
	},
	{
		ID:       "campus_protests",
		Question: "What are your thoughts on the way university campus administrators should approach the issue of Israel/Gaza demonstrations?",
	},
}

// Registry is an ordered, immutable set of topics with unique ids.
type Registry struct {
	topics []t.Topic
	byID   map[string]int
}

// Default returns the built-in registry.
func Default() *Registry {
	r, err := New(defaults)
	if err != nil {
		panic(err)
	}
	return r
}

// New validates topics and builds a registry preserving their order.
func New(topics []t.Topic) (*Registry, error) {
	if len(topics) == 0 {
		return nil, fmt.Errorf("topics: registry is empty")
	}
	r := &Registry{
		topics: make([]t.Topic, 0, len(topics)),
		byID:   make(map[string]int, len(topics)),
	}
	for i, tp := range topics {
		tp.ID = strings.TrimSpace(tp.ID)
		tp.Question = strings.TrimSpace(tp.Question)
		if tp.ID == "" {
			return nil, fmt.Errorf("topics: entry %d has no id", i)
		}
		if strings.ContainsAny(tp.ID, `/\`) {
			return nil, fmt.Errorf("topics: id %q must not contain path separators", tp.ID)
		}
		if tp.Question == "" {
			return nil, fmt.Errorf("topics: %q has no question", tp.ID)
		}
		if _, dup := r.byID[tp.ID]; dup {
			return nil, fmt.Errorf("topics: duplicate id %q", tp.ID)
		}
		r.byID[tp.ID] = len(r.topics)
		r.topics = append(r.topics, tp)
	}
	return r, nil
}

type file struct {
	Topics []t.Topic `yaml:"topics"`
}

// Load reads a YAML registry of the form:
//
//	topics:
//	  - id: elections
//	    question: How should we ...?
func Load(path string) (*Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("topics: read %s: %w", path, err)
	}
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("topics: parse %s: %w", path, err)
	}
	return New(f.Topics)
}

// All returns a copy of the topics in registry order.
func (r *Registry) All() []t.Topic {
	return append([]t.Topic(nil), r.topics...)
}

func (r *Registry) IDs() []string {
	out := make([]string, len(r.topics))
	for i, tp := range r.topics {
		out[i] = tp.ID
	}
	return out
}

func (r *Registry) Lookup(id string) (t.Topic, bool) {
	i, ok := r.byID[id]
	if !ok {
		return t.Topic{}, false
	}
	return r.topics[i], true
}

// Filter returns a registry restricted to ids, kept in registry order.
// With no ids the registry itself is returned.
func (r *Registry) Filter(ids ...string) (*Registry, error) {
	if len(ids) == 0 {
		return r, nil
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := r.byID[id]; !ok {
			return nil, fmt.Errorf("topics: unknown topic %q (known: %s)", id, strings.Join(r.IDs(), ", "))
		}
		want[id] = true
	}
	var out []t.Topic
	for _, tp := range r.topics {
		if want[tp.ID] {
			out = append(out, tp)
		}
	}
	return New(out)
}
