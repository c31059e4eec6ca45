package analysis

import (
	"context"
	"log/slog"

	"loom/internal/config"
	"loom/internal/logging"
	"loom/internal/transcript"
)

// Outcome is what running one analysis type produced. Judge holds the
// final judge verdict for judge-loop types; AutoRan lists prerequisites
// that were generated along the way.
type Outcome struct {
	Result  *transcript.Result
	Judge   *transcript.Result
	AutoRan []string
}

// Strategy executes one analysis type against a document and persists the
// outcome.
type Strategy interface {
	Execute(ctx context.Context, store *transcript.Store, doc *transcript.Document, name string) (*Outcome, error)
}

// Runner routes each requested analysis type to the right strategy: types
// with a configured judge pairing run the versioned judge loop, everything
// else runs plain single-shot resolution.
type Runner struct {
	cfg          *config.Config
	resolver     *Resolver
	orchestrator *Orchestrator
	logger       *slog.Logger
}

// NewRunner wires the dispatch layer over a resolver and orchestrator.
func NewRunner(cfg *config.Config, resolver *Resolver, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:          cfg,
		resolver:     resolver,
		orchestrator: NewOrchestrator(resolver, logger),
		logger:       logging.NewComponentLogger(logger, "runner"),
	}
}

// StrategyFor returns the strategy that will execute the named type.
func (r *Runner) StrategyFor(name string) Strategy {
	if pair, ok := r.cfg.JudgePairFor(name); ok {
		return &judgeLoopStrategy{orchestrator: r.orchestrator, pair: pair}
	}
	return &plainStrategy{resolver: r.resolver}
}

// Run executes the named analysis type with its configured strategy.
func (r *Runner) Run(ctx context.Context, store *transcript.Store, doc *transcript.Document, name string) (*Outcome, error) {
	return r.StrategyFor(name).Execute(ctx, store, doc, name)
}

type plainStrategy struct {
	resolver *Resolver
}

func (s *plainStrategy) Execute(ctx context.Context, store *transcript.Store, doc *transcript.Document, name string) (*Outcome, error) {
	analysis := doc.EnsureAnalysis()
	cache := NewCache(analysis)
	result, autoRan, err := s.resolver.ResolveAndRun(ctx, doc, name, cache)
	if err != nil {
		return nil, err
	}
	analysis[name] = result
	if err := store.Save(doc); err != nil {
		return nil, err
	}
	return &Outcome{Result: result, AutoRan: autoRan}, nil
}

type judgeLoopStrategy struct {
	orchestrator *Orchestrator
	pair         config.JudgeRoute
}

func (s *judgeLoopStrategy) Execute(ctx context.Context, store *transcript.Store, doc *transcript.Document, name string) (*Outcome, error) {
	draft, judge, err := s.orchestrator.Run(ctx, store, doc, name, s.pair.Judge, s.pair.MaxRounds)
	if err != nil {
		return nil, err
	}
	return &Outcome{Result: draft, Judge: judge}, nil
}
