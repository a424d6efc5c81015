package llm

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync/atomic"
)

// FakeClient returns a deterministic, well-formed reply with ten numbered
// perspectives for offline runs and tests. Criteria lines are always
// present; free-form parsing drops them.
type FakeClient struct {
	calls atomic.Int64

	// Respond, when set, replaces the canned reply.
	Respond func(prompt string) (string, error)
}

func NewFakeClient() *FakeClient { return &FakeClient{} }

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

// Calls reports how many requests reached the client.
func (f *FakeClient) Calls() int { return int(f.calls.Load()) }

func (f *FakeClient) GenerateText(ctx context.Context, prompt string, _ GenerateOptions) (string, error) {
	f.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Respond != nil {
		return f.Respond(prompt)
	}
	return FakeReply(10), nil
}

// FakeReply renders n numbered perspectives in the plain label format.
func FakeReply(n int) string {
	var b strings.Builder
	b.WriteString("Here are diverse perspectives:\n\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "%d. Stance: Fake stance %d\n", i, i)
		fmt.Fprintf(&b, "   Criteria: criterion %d-a, criterion %d-b\n", i, i)
		fmt.Fprintf(&b, "   Reason: Fake reason %d.\n\n", i)
	}
	return b.String()
}

// FakeEmbedder maps text to a bag-of-words vector so that texts sharing
// words are closer. It needs no network access.
type FakeEmbedder struct{ Dim int }

func (e FakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dim := e.Dim
	if dim <= 0 {
		dim = 64
	}
	out := make([][]float32, len(texts))
	for i, s := range texts {
		v := make([]float32, dim)
		for _, w := range strings.Fields(strings.ToLower(s)) {
			h := fnv.New32a()
			_, _ = h.Write([]byte(w))
			v[h.Sum32()%uint32(dim)]++
		}
		out[i] = v
	}
	return out, nil
}
