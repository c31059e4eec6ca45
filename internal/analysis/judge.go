package analysis

import (
	"context"
	"errors"
	"log/slog"

	"loom/internal/logging"
	"loom/internal/services"
	"loom/internal/transcript"
)

// Orchestrator drives the draft/judge/improve loop for analysis types with
// a configured judge pairing. Every round leaves an immutable versioned
// snapshot; the un-versioned alias always mirrors the latest draft plus
// round and score history. All loop state is derived from the stored
// analysis map, so an interrupted loop resumes cleanly on the next run.
type Orchestrator struct {
	resolver *Resolver
	logger   *slog.Logger
}

// NewOrchestrator wraps a resolver with judge-loop round management.
func NewOrchestrator(resolver *Resolver, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "judge"),
	}
}

// StartingRound derives the next round number from stored keys. Versioned
// draft keys win; a legacy un-versioned alias without a round marker means
// round 0 needs migration first; otherwise the loop starts fresh at 0.
func StartingRound(analysis map[string]*transcript.Result, draftType string) (round int, migrate bool) {
	if latest, ok := transcript.LatestRound(analysis, draftType); ok {
		return latest + 1, false
	}
	if alias, ok := analysis[draftType]; ok && alias.Round == nil {
		return 1, true
	}
	return 0, false
}

// migrateLegacy seeds round 0 from pre-versioning results: the un-versioned
// alias becomes the round-0 draft, and an un-versioned judge result, when
// present, becomes the round-0 judge. Old single-shot results stay in the
// history instead of being discarded.
func (o *Orchestrator) migrateLegacy(analysis map[string]*transcript.Result, draftType, judgeType string) {
	if alias, ok := analysis[draftType]; ok {
		analysis[transcript.VersionedKey(draftType, 0)] = alias.Clone()
	}
	if judge, ok := analysis[judgeType]; ok {
		analysis[transcript.VersionedKey(judgeType, 0)] = judge.Clone()
	}
}

// Run executes the judge loop for draftType: up to maxRounds improvement
// rounds after the initial draft. It returns the final draft and, when the
// last judge invocation failed, that failure as an error-bearing result.
func (o *Orchestrator) Run(ctx context.Context, store *transcript.Store, doc *transcript.Document, draftType, judgeType string, maxRounds int) (*transcript.Result, *transcript.Result, error) {
	analysis := doc.EnsureAnalysis()
	cache := NewCache(analysis)
	logger := logging.WithContext(services.WithAnalysisType(ctx, draftType), o.logger)

	if err := o.resolver.registry.CheckCycles(draftType); err != nil {
		return nil, nil, err
	}
	def, err := o.resolver.registry.Load(draftType)
	if err != nil {
		return nil, nil, err
	}

	start, migrate := StartingRound(analysis, draftType)
	if migrate {
		logger.Info("migrating legacy un-versioned result to round 0")
		o.migrateLegacy(analysis, draftType, judgeType)
		if err := store.Save(doc); err != nil {
			return nil, nil, err
		}
	}

	// A resumed loop can fail before this invocation produces a draft;
	// seeding from the stored alias keeps the last good round as the
	// returned result.
	draft := analysis[draftType]
	for round := start; round <= start+maxRounds; round++ {
		roundLogger := logger.With(logging.Int(logging.FieldRound, round))
		history := BuildHistory(analysis, draftType, judgeType)

		var next *transcript.Result
		if len(history) == 0 {
			next, _, err = o.resolver.ResolveAndRun(ctx, doc, draftType, cache)
			if err != nil {
				return nil, nil, err
			}
			if next.Failed() {
				return next, nil, nil
			}
		} else {
			// Improvement rounds reuse the already-resolved prerequisite
			// text and inject prior rounds as feedback; re-resolving the
			// full chain would only repeat identical LLM calls.
			feedback, encErr := EncodeHistory(history)
			if encErr != nil {
				return nil, nil, services.Wrap(services.ErrJudge, "judge", draftType, "encode history", encErr)
			}
			vars := o.resolver.BuildContext(doc, def, cache)
			vars[JudgeFeedbackVar] = feedback
			next, err = o.resolver.InvokeDefinition(ctx, doc, def, vars)
			if err != nil {
				if services.IsFatal(err) {
					return nil, nil, err
				}
				roundLogger.Error("improvement draft failed, keeping last good round", logging.Error(err))
				return draft, nil, nil
			}
		}

		draft = next
		analysis[transcript.VersionedKey(draftType, round)] = draft
		o.updateAlias(analysis, draftType, judgeType, round)
		if err := store.Save(doc); err != nil {
			return nil, nil, err
		}
		roundLogger.Info("draft persisted", logging.String(logging.FieldEventType, "draft_complete"))

		judgeResult, judgeErr := o.runJudge(ctx, doc, judgeType, cache)
		if judgeErr != nil {
			if errors.Is(judgeErr, services.ErrConfiguration) || errors.Is(judgeErr, services.ErrStorage) {
				return nil, nil, judgeErr
			}
			// A judge failure never invalidates the draft.
			roundLogger.Error("judge failed, keeping draft as final", logging.Error(judgeErr))
			return draft, transcript.NewErrorResult(judgeErr.Error()), nil
		}
		if judgeResult.Failed() {
			roundLogger.Error("judge returned error result, keeping draft as final",
				logging.String("error", judgeResult.ErrMessage))
			return draft, judgeResult, nil
		}

		analysis[transcript.VersionedKey(judgeType, round)] = judgeResult
		// The plain judge key lets sibling resolution find the latest
		// verdict without knowing about round versioning.
		analysis[judgeType] = judgeResult.Clone()
		o.updateAlias(analysis, draftType, judgeType, round)
		if err := store.Save(doc); err != nil {
			return nil, nil, err
		}
		roundLogger.Info("judge persisted", logging.String(logging.FieldEventType, "judge_complete"))
	}

	return draft, analysis[transcript.VersionedKey(judgeType, start+maxRounds)], nil
}

// runJudge executes the judge type through full dependency resolution; its
// requires typically include the draft type, satisfied by the freshly
// updated alias already sitting in the cache.
func (o *Orchestrator) runJudge(ctx context.Context, doc *transcript.Document, judgeType string, cache *Cache) (*transcript.Result, error) {
	result, _, err := o.resolver.run(ctx, doc, judgeType, cache, false)
	return result, err
}

// updateAlias rewrites the un-versioned alias as a copy of the latest
// draft, stamped with the current round and the full score history scanned
// from versioned judge keys.
func (o *Orchestrator) updateAlias(analysis map[string]*transcript.Result, draftType, judgeType string, round int) {
	latest := analysis[transcript.VersionedKey(draftType, round)]
	if latest == nil {
		return
	}
	alias := latest.Clone()
	r := round
	alias.Round = &r
	alias.History = ScoreHistory(analysis, judgeType, round)
	analysis[draftType] = alias
}
