// Package pipeline drives generation: for every shot × topic × method it
// renders the few-shot prompt, asks the model once, parses the reply and
// persists the set as a create-only artifact.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"perspectives/internal/artifact"
	"perspectives/internal/llm"
	"perspectives/internal/parse"
	"perspectives/internal/prompt"
	"perspectives/internal/util/jsonutil"

	t "perspectives/internal/types"
)

// Templates resolves the few-shot template for a shot count and method.
type Templates interface {
	Load(shot t.ShotCount, method t.Method) (prompt.Template, error)
}

// Generator runs generation batches. LLM, Templates and Store are
// required; Hook and Logger are optional.
type Generator struct {
	LLM       llm.Client
	Templates Templates
	Store     artifact.Store
	Topics    []t.Topic
	Options   llm.GenerateOptions
	Hook      llm.PromptHook
	Logger    *zap.Logger
}

func (g *Generator) logger() *zap.Logger {
	if g.Logger == nil {
		return zap.NewNop()
	}
	return g.Logger
}

// Requests expands shots × topics × methods in generation order: shot
// outermost, then topic, then method.
func (g *Generator) Requests(shots []t.ShotCount, methods []t.Method) []t.Request {
	out := make([]t.Request, 0, len(shots)*len(g.Topics)*len(methods))
	for _, shot := range shots {
		for _, topic := range g.Topics {
			for _, method := range methods {
				out = append(out, t.Request{Shot: shot, Method: method, Topic: topic})
			}
		}
	}
	return out
}

// Run processes every request. A failed request is logged and recorded
// in the summary; the batch always continues. The returned error is
// non-nil only when ctx ends the batch early.
func (g *Generator) Run(ctx context.Context, shots []t.ShotCount, methods []t.Method) (Summary, error) {
	if g.LLM == nil || g.Templates == nil || g.Store == nil {
		return Summary{}, errors.New("pipeline: generator is missing LLM, Templates or Store")
	}
	log := g.logger()
	reqs := g.Requests(shots, methods)
	log.Info("generation started",
		zap.Int("requests", len(reqs)),
		zap.String("store", g.Store.Location()),
	)

	var sum Summary
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.add(g.runOne(ctx, req))
		if err := ctx.Err(); err != nil {
			return sum, err
		}
	}
	log.Info("generation finished",
		zap.Int("succeeded", sum.Succeeded),
		zap.Int("skipped", sum.Skipped),
		zap.Int("failed", sum.Failed),
	)
	return sum, nil
}

func (g *Generator) runOne(ctx context.Context, req t.Request) Outcome {
	id := req.ArtifactID()
	name := id.Name()
	log := g.logger().With(
		zap.String("shot", id.Shot.String()),
		zap.String("method", string(id.Method)),
		zap.String("topic", id.TopicID),
		zap.String("artifact", name),
	)
	fail := func(kind ErrorKind, err error) Outcome {
		log.Error("request failed", zap.String("kind", string(kind)), zap.Error(err))
		return Outcome{ID: id, Status: StatusFailed, Kind: kind, Err: err}
	}

	exists, err := g.Store.Exists(ctx, name)
	if err != nil {
		return fail(KindArtifactWriteFailed, fmt.Errorf("check %s: %w", name, err))
	}
	if exists {
		log.Info("artifact exists, skipping")
		return Outcome{ID: id, Status: StatusSkipped}
	}

	tpl, err := g.Templates.Load(req.Shot, req.Method)
	if err != nil {
		return fail(KindTemplateMissing, err)
	}
	text := tpl.Render(req.Topic.Question)

	callCtx := llm.WithWorker(ctx, id.Approach()+"_"+id.TopicID)
	if g.Hook != nil {
		callCtx = llm.WithPromptHook(callCtx, g.Hook)
	}
	raw, err := g.LLM.GenerateText(callCtx, text, g.Options)
	if err != nil {
		return fail(KindAPIRequestFailed, err)
	}

	res, err := parse.Parse(raw, req.Method)
	if err != nil {
		log.Debug("unparseable reply", zap.String("raw", raw))
		return fail(KindMalformedResponse, err)
	}
	if res.Extra > 0 {
		log.Warn("reply had extra perspectives; kept the first ten", zap.Int("extra", res.Extra))
	}

	data, err := jsonutil.MarshalNoEscapeIndent(res.Set)
	if err != nil {
		return fail(KindArtifactWriteFailed, err)
	}
	if err := g.Store.Put(ctx, name, data); err != nil {
		if errors.Is(err, artifact.ErrExists) {
			log.Info("artifact appeared concurrently, skipping")
			return Outcome{ID: id, Status: StatusSkipped}
		}
		return fail(KindArtifactWriteFailed, err)
	}
	log.Info("artifact written")
	return Outcome{ID: id, Status: StatusSucceeded}
}
