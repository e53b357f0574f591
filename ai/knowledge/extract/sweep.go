package extract

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/tutormind/ai/knowledge"
)

// Transcript is one conversation pending extraction.
type Transcript struct {
	ChatID string
	UserID int32
	Text   string
}

// TranscriptSource lists conversations that have not been swept yet and
// marks them done once their facts are stored.
type TranscriptSource interface {
	PendingTranscripts(ctx context.Context) ([]Transcript, error)
	MarkSwept(ctx context.Context, chatID string) error
}

// SweepResult aggregates one sweep run.
type SweepResult struct {
	Transcripts int
	Candidates  int
	Added       int
	Updated     int
	Merged      int
	Ignored     int
	Skipped     int
	Failed      int
}

// Sweeper runs periodic extraction over pending transcripts and folds
// the candidates into the knowledge base.
type Sweeper struct {
	extractor Extractor
	service   *knowledge.Service
	source    TranscriptSource
	strategy  knowledge.Strategy

	// Concurrency caps parallel transcript processing; the extractor's
	// rate limiter still throttles the actual LLM calls.
	Concurrency int
}

// NewSweeper wires an extraction sweep.
func NewSweeper(extractor Extractor, service *knowledge.Service, source TranscriptSource, strategy knowledge.Strategy) *Sweeper {
	return &Sweeper{
		extractor:   extractor,
		service:     service,
		source:      source,
		strategy:    strategy,
		Concurrency: 4,
	}
}

// Sweep processes every pending transcript once. A transcript whose
// extraction or import fails is counted and left unmarked so the next
// sweep retries it; the sweep itself only fails on listing errors or
// caller cancellation.
func (s *Sweeper) Sweep(ctx context.Context) (*SweepResult, error) {
	transcripts, err := s.source.PendingTranscripts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list pending transcripts")
	}

	result := &SweepResult{Transcripts: len(transcripts)}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Concurrency)
	for _, transcript := range transcripts {
		transcript := transcript
		g.Go(func() error {
			candidates, err := s.extractor.Extract(ctx, transcript.Text)
			if err != nil {
				return err
			}

			// Pin extracted facts to their conversation.
			chatID := transcript.ChatID
			for i := range candidates {
				if candidates[i].ChatID == nil {
					candidates[i].ChatID = &chatID
				}
			}

			batch, err := s.service.ImportBatch(ctx, transcript.UserID, candidates, s.strategy)
			if err != nil {
				slog.Warn("fact_sweep_import_failed",
					"chat_id", transcript.ChatID,
					"user_id", transcript.UserID,
					"error", err)
				mu.Lock()
				result.Failed++
				mu.Unlock()
				return nil
			}
			if err := s.source.MarkSwept(ctx, transcript.ChatID); err != nil {
				slog.Warn("fact_sweep_mark_failed",
					"chat_id", transcript.ChatID,
					"error", err)
			}

			mu.Lock()
			result.Candidates += len(candidates)
			result.Added += batch.Added
			result.Updated += batch.Updated
			result.Merged += batch.Merged
			result.Ignored += batch.Ignored
			result.Skipped += batch.Skipped
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Info("fact_sweep_complete",
		"transcripts", result.Transcripts,
		"candidates", result.Candidates,
		"added", result.Added,
		"updated", result.Updated,
		"merged", result.Merged,
		"ignored", result.Ignored,
		"skipped", result.Skipped,
		"failed", result.Failed)

	return result, nil
}

// Run sweeps on a fixed interval until the context ends.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				slog.Error("fact_sweep_failed", "error", err)
			}
		}
	}
}
