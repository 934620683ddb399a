package jobs

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"go.uber.org/zap"
)

// FileRemover deletes a stored binary by reference.
type FileRemover interface {
	Delete(ctx context.Context, ref string) error
}

type Worker struct {
	ID       string
	Repo     *Repo
	Files    FileRemover
	Log      *zap.Logger
	Interval time.Duration
}

func (w *Worker) Run(ctx context.Context) {
	interval := w.Interval
	if interval <= 0 {
		interval = 800 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce claims and handles at most one due job. It reports whether a job
// was claimed.
func (w *Worker) RunOnce(ctx context.Context) bool {
	job, err := w.Repo.Claim(ctx, w.ID)
	if err != nil {
		w.Log.Warn("worker claim failed", zap.String("worker", w.ID), zap.Error(err))
		return false
	}
	if job == nil {
		return false
	}
	w.handle(ctx, job)
	return true
}

func (w *Worker) handle(ctx context.Context, job *Job) {
	switch job.Type {
	case TypeFileCleanup:
		w.handleFileCleanup(ctx, job)
	default:
		_ = w.Repo.MarkFailed(ctx, job.ID, "unknown job type")
	}
}

func (w *Worker) handleFileCleanup(ctx context.Context, job *Job) {
	var p fileCleanupPayload
	if err := json.Unmarshal([]byte(job.Payload), &p); err != nil || p.Ref == "" {
		_ = w.Repo.MarkFailed(ctx, job.ID, "bad payload")
		return
	}

	if err := w.Files.Delete(ctx, p.Ref); err != nil {
		w.retry(ctx, job, err.Error())
		return
	}

	w.Log.Info("orphaned upload removed",
		zap.Uint64("job", job.ID),
		zap.Uint64("user", job.UserID),
		zap.String("ref", p.Ref))
	_ = w.Repo.MarkDone(ctx, job.ID)
}

func (w *Worker) retry(ctx context.Context, job *Job, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		w.Log.Error("job failed permanently", zap.Uint64("job", job.ID), zap.String("error", errMsg))
		_ = w.Repo.MarkFailed(ctx, job.ID, errMsg)
		return
	}

	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	next := time.Now().Add(time.Duration(sec) * time.Second)

	_ = w.Repo.RetryLater(ctx, job.ID, attempts, next, errMsg)
}
