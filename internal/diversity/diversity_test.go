package diversity

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perspectives/internal/artifact"
	"perspectives/internal/types"
	"perspectives/internal/util/jsonutil"
)

// axisEmbedder maps each distinct text to its own unit axis, so distinct
// reasons are orthogonal and equal reasons coincide.
type axisEmbedder struct {
	seen  map[string]int
	texts []string
}

func (e *axisEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if e.seen == nil {
		e.seen = map[string]int{}
	}
	out := make([][]float32, len(texts))
	for i, s := range texts {
		e.texts = append(e.texts, s)
		idx, ok := e.seen[s]
		if !ok {
			idx = len(e.seen)
			e.seen[s] = idx
		}
		v := make([]float32, 64)
		v[idx] = 1
		out[i] = v
	}
	return out, nil
}

func store(t *testing.T, files map[string]types.PerspectiveSet) *artifact.MemoryStore {
	t.Helper()
	s := artifact.NewMemoryStore()
	for name, set := range files {
		b, err := jsonutil.MarshalNoEscapeIndent(set)
		require.NoError(t, err)
		require.NoError(t, s.Put(context.Background(), name, b))
	}
	return s
}

func set(reasons ...string) types.PerspectiveSet {
	out := make(types.PerspectiveSet, len(reasons))
	for i, r := range reasons {
		out[i] = types.Perspective{Stance: fmt.Sprint("s", i), Reason: r}
	}
	return out
}

func TestCosineDistance(t *testing.T) {
	d, err := CosineDistance([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, d, 1e-9)

	d, err = CosineDistance([]float32{1, 2}, []float32{2, 4})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, d, 1e-9)

	d, err = CosineDistance([]float32{1, 0}, []float32{-1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, d, 1e-9)

	_, err = CosineDistance([]float32{1}, []float32{1, 2})
	assert.Error(t, err)
}

func TestMeanPairwiseDistance(t *testing.T) {
	// pairs: (a,b)=1, (a,a')=0, (b,a')=1 -> 2/3
	got, err := MeanPairwiseDistance([][]float32{{1, 0}, {0, 1}, {1, 0}})
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, got, 1e-9)
}

func TestEvaluatorScoresAndSkips(t *testing.T) {
	s := store(t, map[string]types.PerspectiveSet{
		"free-form_elections.json":        set("a", "b", "c"),
		"1-shot-free-form_elections.json": set("same", "same"),
		"criteria-based_littering.json":   set("only one"),
	})
	require.NoError(t, s.Put(context.Background(), "notes_misc.json", []byte("{}")))

	emb := &axisEmbedder{}
	res, err := (&Evaluator{Store: s, Embedder: emb}).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Files, 2)
	assert.Equal(t, "1-shot-free-form_elections.json", res.Files[0].Name)
	assert.InDelta(t, 0.0, res.Files[0].Score, 1e-9)
	assert.Equal(t, "1-shot-free-form", res.Files[0].Approach)
	assert.Equal(t, "free-form_elections.json", res.Files[1].Name)
	assert.InDelta(t, 1.0, res.Files[1].Score, 1e-9)
	assert.Equal(t, "elections", res.Files[1].Topic)

	var skipped []string
	for _, sk := range res.Skipped {
		skipped = append(skipped, sk.Name)
	}
	assert.ElementsMatch(t, []string{"criteria-based_littering.json", "notes_misc.json"}, skipped)
}

func TestEvaluatorFlattensNewlines(t *testing.T) {
	s := store(t, map[string]types.PerspectiveSet{
		"free-form_elections.json": set("line one\nline two", "other"),
	})
	emb := &axisEmbedder{}
	_, err := (&Evaluator{Store: s, Embedder: emb}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"line one line two", "other"}, emb.texts)
}

func TestResultText(t *testing.T) {
	res := Result{Files: []FileScore{
		{Name: "1-shot-free-form_littering.json", Topic: "littering", Approach: "1-shot-free-form", Score: 0.25},
		{Name: "criteria-based_elections.json", Topic: "elections", Approach: "criteria-based", Score: 0.5},
		{Name: "free-form_elections.json", Topic: "elections", Approach: "free-form", Score: 0.75},
	}}
	text := res.Text()
	assert.True(t, strings.HasPrefix(text, "SEMANTIC DIVERSITY SCORES\n"+strings.Repeat("=", 60)+"\n\nIndividual File Scores:\n"))
	assert.Contains(t, text, fmt.Sprintf("%-50s 0.5000\n", "criteria-based_elections.json"))
	assert.Contains(t, text, fmt.Sprintf("\nELECTIONS:\n  %-30s 0.5000\n  %-30s 0.7500\n", "criteria-based", "free-form"))
	assert.Less(t, strings.Index(text, "ELECTIONS:"), strings.Index(text, "LITTERING:"))

	var b strings.Builder
	res.WriteSummary(&b)
	assert.Contains(t, b.String(), "SUMMARY OF SEMANTIC DIVERSITY SCORES")
}
