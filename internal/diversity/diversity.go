// Package diversity scores how semantically spread out the reasons in each
// artifact are: the mean pairwise cosine distance of their embeddings.
package diversity

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"perspectives/internal/artifact"
	"perspectives/internal/llm"

	t "perspectives/internal/types"
)

// ReportName is the file the scores are saved under in the output dir.
const ReportName = "diversity_scores.txt"

type FileScore struct {
	Name     string
	Topic    string
	Approach string
	Reasons  int
	Score    float64
}

// Skipped records an artifact that could not be scored.
type Skipped struct {
	Name   string
	Reason string
}

type Result struct {
	Files   []FileScore
	Skipped []Skipped
}

// Evaluator embeds the reasons of every stored artifact.
type Evaluator struct {
	Store    artifact.Store
	Embedder llm.Embedder
	Logger   *zap.Logger
}

func (e *Evaluator) Run(ctx context.Context) (Result, error) {
	log := e.Logger
	if log == nil {
		log = zap.NewNop()
	}
	names, err := e.Store.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list artifacts: %w", err)
	}
	log.Info("evaluating artifacts", zap.Int("files", len(names)))

	var res Result
	skip := func(name, why string) {
		log.Warn("skipping artifact", zap.String("artifact", name), zap.String("reason", why))
		res.Skipped = append(res.Skipped, Skipped{Name: name, Reason: why})
	}
	for _, name := range names {
		id, err := t.ParseArtifactName(name)
		if err != nil {
			skip(name, err.Error())
			continue
		}
		raw, err := e.Store.Get(ctx, name)
		if err != nil {
			return res, fmt.Errorf("read %s: %w", name, err)
		}
		var set t.PerspectiveSet
		if err := set.UnmarshalJSON(raw); err != nil {
			skip(name, err.Error())
			continue
		}
		reasons := set.Reasons()
		if len(reasons) < 2 {
			skip(name, fmt.Sprintf("need at least 2 reasons, found %d", len(reasons)))
			continue
		}
		for i, r := range reasons {
			reasons[i] = strings.ReplaceAll(r, "\n", " ")
		}
		vecs, err := e.Embedder.Embed(ctx, reasons)
		if err != nil {
			return res, fmt.Errorf("embed %s: %w", name, err)
		}
		score, err := MeanPairwiseDistance(vecs)
		if err != nil {
			return res, fmt.Errorf("score %s: %w", name, err)
		}
		log.Info("scored artifact", zap.String("artifact", name), zap.Int("reasons", len(reasons)), zap.Float64("score", score))
		res.Files = append(res.Files, FileScore{
			Name:     name,
			Topic:    id.TopicID,
			Approach: id.Approach(),
			Reasons:  len(reasons),
			Score:    score,
		})
	}
	sort.Slice(res.Files, func(i, j int) bool { return res.Files[i].Name < res.Files[j].Name })
	return res, nil
}

// MeanPairwiseDistance averages 1 - cos(a, b) over every unordered pair.
func MeanPairwiseDistance(vecs [][]float32) (float64, error) {
	if len(vecs) < 2 {
		return 0, nil
	}
	var sum float64
	pairs := 0
	for i := 0; i < len(vecs); i++ {
		for j := i + 1; j < len(vecs); j++ {
			d, err := CosineDistance(vecs[i], vecs[j])
			if err != nil {
				return 0, err
			}
			sum += d
			pairs++
		}
	}
	return sum / float64(pairs), nil
}

// CosineDistance is 1 minus the cosine similarity. A zero vector has no
// direction and is treated as orthogonal to everything.
func CosineDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector length mismatch: %d vs %d", len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1, nil
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb)), nil
}

// ByTopic groups scores as topic -> approach -> score.
func (r Result) ByTopic() map[string]map[string]float64 {
	out := map[string]map[string]float64{}
	for _, f := range r.Files {
		if out[f.Topic] == nil {
			out[f.Topic] = map[string]float64{}
		}
		out[f.Topic][f.Approach] = f.Score
	}
	return out
}

// WriteSummary prints the per-file table shown on the console.
func (r Result) WriteSummary(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "SUMMARY OF SEMANTIC DIVERSITY SCORES")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	for _, f := range r.Files {
		fmt.Fprintf(w, "%-50s %.4f\n", f.Name, f.Score)
	}
}

// Text renders the saved score file: per-file scores, then scores grouped
// by topic with approaches in lexical order.
func (r Result) Text() string {
	var b strings.Builder
	b.WriteString("SEMANTIC DIVERSITY SCORES\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString("Individual File Scores:\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	for _, f := range r.Files {
		fmt.Fprintf(&b, "%-50s %.4f\n", f.Name, f.Score)
	}

	b.WriteString("\n\nScores Grouped by Topic:\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	grouped := r.ByTopic()
	topics := make([]string, 0, len(grouped))
	for topic := range grouped {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	for _, topic := range topics {
		fmt.Fprintf(&b, "\n%s:\n", strings.ToUpper(topic))
		approaches := make([]string, 0, len(grouped[topic]))
		for a := range grouped[topic] {
			approaches = append(approaches, a)
		}
		sort.Strings(approaches)
		for _, a := range approaches {
			fmt.Fprintf(&b, "  %-30s %.4f\n", a, grouped[topic][a])
		}
	}
	return b.String()
}
