package types

import (
	"fmt"
	"strings"
)

// ShotCount is the number of worked examples embedded in a prompt.
type ShotCount int

const (
	OneShot  ShotCount = 1
	FiveShot ShotCount = 5
)

// ParseShotCount accepts "1", "5", "1-shot" and "5-shot".
func ParseShotCount(s string) (ShotCount, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "1-shot":
		return OneShot, nil
	case "5", "5-shot":
		return FiveShot, nil
	}
	return 0, fmt.Errorf("unknown shot type %q (want 1-shot or 5-shot)", s)
}

func (c ShotCount) String() string { return fmt.Sprintf("%d-shot", int(c)) }

// ArtifactPrefix is prepended to artifact names. 5-shot artifacts carry no
// prefix for compatibility with the first generation runs.
func (c ShotCount) ArtifactPrefix() string {
	if c == FiveShot {
		return ""
	}
	return c.String() + "-"
}

// Method is the prompting style.
type Method string

const (
	CriteriaBased Method = "criteria-based"
	FreeForm      Method = "free-form"
)

// Methods lists every method in report order.
var Methods = []Method{CriteriaBased, FreeForm}

func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case CriteriaBased, FreeForm:
		return m, nil
	}
	return "", fmt.Errorf("unknown method %q (want criteria-based or free-form)", s)
}

// RequiresCriteria reports whether perspectives of this method carry criteria.
func (m Method) RequiresCriteria() bool { return m == CriteriaBased }

// ShotScope selects which shot counts a command covers.
type ShotScope string

const (
	ScopeOneShot  ShotScope = "1-shot"
	ScopeFiveShot ShotScope = "5-shot"
	ScopeAll      ShotScope = "all"
)

func ParseShotScope(s string) (ShotScope, error) {
	switch sc := ShotScope(strings.ToLower(strings.TrimSpace(s))); sc {
	case ScopeOneShot, ScopeFiveShot, ScopeAll:
		return sc, nil
	case "":
		return ScopeAll, nil
	}
	return "", fmt.Errorf("unknown shot type %q (want 1-shot, 5-shot or all)", s)
}

// GenerationOrder returns the shot counts in the order generation walks them.
func (s ShotScope) GenerationOrder() []ShotCount {
	switch s {
	case ScopeOneShot:
		return []ShotCount{OneShot}
	case ScopeFiveShot:
		return []ShotCount{FiveShot}
	}
	return []ShotCount{OneShot, FiveShot}
}

// ReportOrder returns the shot counts in the order reports group them.
func (s ShotScope) ReportOrder() []ShotCount {
	switch s {
	case ScopeOneShot:
		return []ShotCount{OneShot}
	case ScopeFiveShot:
		return []ShotCount{FiveShot}
	}
	return []ShotCount{FiveShot, OneShot}
}

// Topic is a fixed question the model is asked about.
type Topic struct {
	ID       string `yaml:"id" json:"id"`
	Question string `yaml:"question" json:"question"`
}

// Request is one element of the shot × method × topic cross product.
type Request struct {
	Shot   ShotCount
	Method Method
	Topic  Topic
}

func (r Request) ArtifactID() ArtifactID {
	return ArtifactID{Shot: r.Shot, Method: r.Method, TopicID: r.Topic.ID}
}

// ArtifactID identifies one persisted PerspectiveSet.
type ArtifactID struct {
	Shot    ShotCount
	Method  Method
	TopicID string
}

// Approach is the method name with the shot prefix, e.g. "1-shot-free-form".
func (id ArtifactID) Approach() string {
	return id.Shot.ArtifactPrefix() + string(id.Method)
}

// Label always spells the shot count, e.g. "5-shot-criteria-based".
func (id ArtifactID) Label() string {
	return id.Shot.String() + "-" + string(id.Method)
}

// Name is the artifact file name, e.g. "criteria-based_elections.json".
func (id ArtifactID) Name() string {
	return id.Approach() + "_" + id.TopicID + ".json"
}

func (id ArtifactID) String() string { return id.Label() + "/" + id.TopicID }

// ParseArtifactName reverses ArtifactID.Name.
func ParseArtifactName(name string) (ArtifactID, error) {
	base, ok := strings.CutSuffix(name, ".json")
	if !ok {
		return ArtifactID{}, fmt.Errorf("artifact %q: not a .json file", name)
	}
	approach, topicID, ok := strings.Cut(base, "_")
	if !ok || topicID == "" {
		return ArtifactID{}, fmt.Errorf("artifact %q: missing topic", name)
	}
	shot := FiveShot
	if rest, found := strings.CutPrefix(approach, OneShot.ArtifactPrefix()); found {
		shot = OneShot
		approach = rest
	}
	method, err := ParseMethod(approach)
	if err != nil {
		return ArtifactID{}, fmt.Errorf("artifact %q: %w", name, err)
	}
	return ArtifactID{Shot: shot, Method: method, TopicID: topicID}, nil
}
