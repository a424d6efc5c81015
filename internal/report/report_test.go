package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perspectives/internal/artifact"
	"perspectives/internal/types"
	"perspectives/internal/util/jsonutil"
)

var topics = []types.Topic{
	{ID: "elections", Question: "How should we increase the general public's trust in US elections?"},
	{ID: "littering", Question: "What are the best policies to prevent littering in public spaces?"},
}

func put(tb testing.TB, s artifact.Store, id types.ArtifactID) {
	tb.Helper()
	set := make(types.PerspectiveSet, 0, 10)
	for i := 1; i <= 10; i++ {
		p := types.Perspective{
			Stance: fmt.Sprintf("%s stance %d", id.Label(), i),
			Reason: fmt.Sprintf("reason %d", i),
		}
		if id.Method.RequiresCriteria() {
			p.Criteria = []string{"Trust", "Cost & time"}
		}
		set = append(set, p)
	}
	b, err := jsonutil.MarshalNoEscapeIndent(set)
	require.NoError(tb, err)
	require.NoError(tb, s.Put(context.Background(), id.Name(), b))
}

func TestRenderFiveShot(t *testing.T) {
	s := artifact.NewMemoryStore()
	for _, topic := range topics {
		for _, m := range types.Methods {
			put(t, s, types.ArtifactID{Shot: types.FiveShot, Method: m, TopicID: topic.ID})
		}
	}

	out, err := Render(context.Background(), s, types.ScopeFiveShot, topics)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, strings.Repeat("=", 80)+"\nGENERATED DIVERSE PERSPECTIVES - 5-SHOT EXAMPLES\n"))
	assert.Equal(t, 4, strings.Count(out, "METHOD: "))
	assert.Equal(t, 40, strings.Count(out, "\n  Perspective "))
	assert.Equal(t, 4, strings.Count(out, "Total perspectives: 10"))
	assert.Equal(t, 20, strings.Count(out, "    Key Criteria: Trust, Cost & time\n"))
	assert.Contains(t, out, "METHOD: CRITERIA-BASED")
	assert.Contains(t, out, "# TOPIC: How should we increase the general public's trust in US elections?")
	assert.NotContains(t, out, "  5-SHOT EXAMPLES")
	assert.NotContains(t, out, "Missing")
	assert.True(t, strings.HasSuffix(out, "END OF RESULTS\n"+strings.Repeat("=", 80)+"\n"))
}

func TestRenderPerspectiveLayout(t *testing.T) {
	s := artifact.NewMemoryStore()
	put(t, s, types.ArtifactID{Shot: types.OneShot, Method: types.CriteriaBased, TopicID: "elections"})

	out, err := Render(context.Background(), s, types.ScopeOneShot, topics[:1])
	require.NoError(t, err)
	want := strings.Join([]string{
		strings.Repeat("─", 80),
		"METHOD: 1-SHOT-CRITERIA-BASED",
		strings.Repeat("─", 80),
		"",
		"  Perspective 1:",
		"    Position: 1-shot-criteria-based stance 1",
		"    Key Criteria: Trust, Cost & time",
		"    Reasoning: reason 1",
		"",
		"",
		"  Perspective 2:",
	}, "\n")
	assert.Contains(t, out, want)
	assert.Contains(t, out, "\n  ⚠ Missing: 1-shot-free-form_elections.json")
}

func TestRenderAllGroupsShotsPerTopic(t *testing.T) {
	s := artifact.NewMemoryStore()
	put(t, s, types.ArtifactID{Shot: types.FiveShot, Method: types.FreeForm, TopicID: "elections"})
	put(t, s, types.ArtifactID{Shot: types.OneShot, Method: types.FreeForm, TopicID: "elections"})

	out, err := Render(context.Background(), s, types.ScopeAll, topics)
	require.NoError(t, err)
	assert.Contains(t, out, "COMPARISON OF 5-SHOT vs 1-SHOT")

	first := strings.Index(out, "# TOPIC: How should")
	second := strings.Index(out, "# TOPIC: What are")
	five := strings.Index(out, "  5-SHOT EXAMPLES")
	one := strings.Index(out, "  1-SHOT EXAMPLES")
	require.True(t, first >= 0 && second > first)
	assert.True(t, first < five && five < one && one < second, "both shot groups of a topic sit together")

	assert.Contains(t, out, "METHOD: FREE-FORM\n")
	assert.Contains(t, out, "METHOD: 1-SHOT-FREE-FORM\n")
	assert.NotContains(t, out, "Key Criteria")
	assert.Equal(t, 6, strings.Count(out, "⚠ Missing:"))
}

func TestRenderUnreadableArtifact(t *testing.T) {
	s := artifact.NewMemoryStore()
	require.NoError(t, s.Put(context.Background(), "free-form_elections.json", []byte("{not json")))

	out, err := Render(context.Background(), s, types.ScopeFiveShot, topics[:1])
	require.NoError(t, err)
	assert.Contains(t, out, "⚠ Unreadable: free-form_elections.json (")
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Render(ctx, artifact.NewMemoryStore(), types.ScopeAll, topics)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := DefaultSavePath(filepath.Join(dir, "outputs"), types.ScopeOneShot)
	assert.Equal(t, "formatted_results_1-shot.txt", filepath.Base(path))

	require.NoError(t, Save(path, "first"))
	require.NoError(t, Save(path, "second"))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(b))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
