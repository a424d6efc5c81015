// Package report renders stored perspective sets as an aligned plain-text
// comparison grouped by topic, shot count and method.
package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"perspectives/internal/artifact"

	t "perspectives/internal/types"
)

var (
	rule    = strings.Repeat("=", 80)
	hashes  = strings.Repeat("#", 80)
	divider = strings.Repeat("─", 80)
)

// Render reads the artifacts for scope and topics from store. Missing
// artifacts become a "⚠ Missing" line and unreadable ones a "⚠ Unreadable"
// line; only a cancelled ctx makes Render fail.
func Render(ctx context.Context, store artifact.Store, scope t.ShotScope, topics []t.Topic) (string, error) {
	lines := []string{rule}
	if scope == t.ScopeAll {
		lines = append(lines, "GENERATED DIVERSE PERSPECTIVES - COMPARISON OF 5-SHOT vs 1-SHOT")
	} else {
		lines = append(lines, "GENERATED DIVERSE PERSPECTIVES - "+strings.ToUpper(string(scope))+" EXAMPLES")
	}
	lines = append(lines, rule)

	for _, topic := range topics {
		lines = append(lines, "\n"+hashes, "# TOPIC: "+topic.Question, hashes)
		for _, shot := range scope.ReportOrder() {
			if scope == t.ScopeAll {
				lines = append(lines, "\n"+rule, "  "+strings.ToUpper(shot.String())+" EXAMPLES", rule)
			}
			for _, method := range t.Methods {
				if err := ctx.Err(); err != nil {
					return "", err
				}
				id := t.ArtifactID{Shot: shot, Method: method, TopicID: topic.ID}
				lines = append(lines, block(ctx, store, id)...)
			}
		}
	}

	lines = append(lines, "\n"+rule, "END OF RESULTS", rule+"\n")
	return strings.Join(lines, "\n"), nil
}

func block(ctx context.Context, store artifact.Store, id t.ArtifactID) []string {
	name := id.Name()
	raw, err := store.Get(ctx, name)
	if errors.Is(err, artifact.ErrNotFound) {
		return []string{"\n  ⚠ Missing: " + name}
	}
	var set t.PerspectiveSet
	if err == nil {
		err = set.UnmarshalJSON(raw)
	}
	if err != nil {
		return []string{fmt.Sprintf("\n  ⚠ Unreadable: %s (%v)", name, err)}
	}

	lines := []string{
		"\n" + divider,
		"METHOD: " + strings.ToUpper(id.Approach()),
		divider,
	}
	for i, p := range set {
		lines = append(lines, perspective(i+1, p))
	}
	return append(lines, fmt.Sprintf("\n  Total perspectives: %d", len(set)))
}

func perspective(n int, p t.Perspective) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  Perspective %d:\n", n)
	if p.Stance != "" {
		fmt.Fprintf(&b, "    Position: %s\n", p.Stance)
	}
	if p.Criteria != nil {
		fmt.Fprintf(&b, "    Key Criteria: %s\n", strings.Join(p.Criteria, ", "))
	}
	fmt.Fprintf(&b, "    Reasoning: %s\n", p.Reason)
	return b.String()
}

// DefaultSavePath is where a report for scope is written when no explicit
// path is given.
func DefaultSavePath(dir string, scope t.ShotScope) string {
	return filepath.Join(dir, "formatted_results_"+string(scope)+".txt")
}

// Save writes text to path through a temp file and rename, creating the
// parent directory if needed.
func Save(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(text), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
