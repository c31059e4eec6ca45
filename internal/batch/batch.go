// Package batch runs one analysis type over every transcript in the store,
// continuing past per-item failures and reporting counts at the end. A file
// lock keeps two batch runs from interleaving writes to the same documents.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"loom/internal/analysis"
	"loom/internal/logging"
	"loom/internal/notifications"
	"loom/internal/transcript"
)

// ErrAlreadyRunning reports a concurrent batch holding the lock.
var ErrAlreadyRunning = errors.New("another batch run is already in progress")

// ItemResult is the outcome for one transcript.
type ItemResult struct {
	Path  string
	Error string
}

// Summary reports one batch run.
type Summary struct {
	RunID        string
	AnalysisType string
	Succeeded    int
	Failed       int
	Duration     time.Duration
	Items        []ItemResult
}

// Runner iterates the transcript store.
type Runner struct {
	store    *transcript.Store
	runner   *analysis.Runner
	notifier notifications.Service
	logger   *slog.Logger
	lockPath string
	now      func() time.Time
}

// NewRunner builds a batch runner. The lock file lives next to the store.
func NewRunner(store *transcript.Store, runner *analysis.Runner, notifier notifications.Service, logger *slog.Logger) *Runner {
	return &Runner{
		store:    store,
		runner:   runner,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "batch"),
		lockPath: filepath.Join(store.Dir(), ".loom-batch.lock"),
		now:      time.Now,
	}
}

// Run executes the named analysis type over every transcript in the store.
// Per-item failures are counted and logged, never fatal to the batch; only
// setup problems (lock, store listing, unknown type) abort the run.
func (r *Runner) Run(ctx context.Context, analysisType string) (*Summary, error) {
	lock := flock.New(r.lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire batch lock: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}
	defer func() { _ = lock.Unlock() }()

	paths, err := r.store.List()
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := r.logger.With(logging.String(logging.FieldCorrelationID, runID))
	logger.Info("batch started",
		logging.String(logging.FieldAnalysisType, analysisType),
		logging.Int("transcripts", len(paths)))
	if err := r.notifier.NotifyBatchStarted(ctx, analysisType, len(paths)); err != nil {
		logger.Warn("batch-start notification failed", logging.Error(err))
	}

	started := r.now()
	summary := &Summary{RunID: runID, AnalysisType: analysisType}
	for _, path := range paths {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		item := ItemResult{Path: path}
		if err := r.runOne(ctx, path, analysisType); err != nil {
			item.Error = err.Error()
			summary.Failed++
			logger.Error("transcript failed",
				logging.String(logging.FieldTranscript, filepath.Base(path)),
				logging.Error(err))
		} else {
			summary.Succeeded++
			logger.Info("transcript processed",
				logging.String(logging.FieldTranscript, filepath.Base(path)))
		}
		summary.Items = append(summary.Items, item)
	}
	summary.Duration = r.now().Sub(started)

	logger.Info("batch finished",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed))
	if err := r.notifier.NotifyBatchCompleted(ctx, analysisType, summary.Succeeded, summary.Failed, summary.Duration); err != nil {
		logger.Warn("batch-complete notification failed", logging.Error(err))
	}
	return summary, nil
}

func (r *Runner) runOne(ctx context.Context, path, analysisType string) error {
	doc, err := r.store.Load(path)
	if err != nil {
		return err
	}
	outcome, err := r.runner.Run(ctx, r.store, doc, analysisType)
	if err != nil {
		return err
	}
	if outcome.Result != nil && outcome.Result.Failed() {
		return errors.New(outcome.Result.ErrMessage)
	}
	return nil
}
