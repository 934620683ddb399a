package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const staleLockAfter = 5 * time.Minute

type Repo struct {
	DB *gorm.DB
}

func (r *Repo) EnqueueFileCleanup(ctx context.Context, userID uint64, ref string) error {
	payload, err := json.Marshal(fileCleanupPayload{Ref: ref})
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	j := Job{
		UserID:      userID,
		Type:        TypeFileCleanup,
		Payload:     string(payload),
		RunAt:       now,
		Status:      StatusPending,
		MaxAttempts: 8,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return r.DB.WithContext(ctx).Create(&j).Error
}

// Claim marks one due job RUNNING for workerID and returns it, or nil when
// nothing is due. On Postgres the row is taken with FOR UPDATE SKIP LOCKED so
// two workers never claim the same job.
func (r *Repo) Claim(ctx context.Context, workerID string) (*Job, error) {
	var job Job
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		// requeue stuck RUNNING jobs
		if err := tx.Model(&Job{}).
			Where("status = ? AND locked_at IS NOT NULL AND locked_at < ?", StatusRunning, now.Add(-staleLockAfter)).
			Updates(map[string]any{
				"status":     StatusPending,
				"locked_by":  nil,
				"locked_at":  nil,
				"updated_at": now,
			}).Error; err != nil {
			return err
		}

		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}
		if err := q.Where("status = ? AND run_at <= ?", StatusPending, now).
			Order("run_at asc, id asc").
			First(&job).Error; err != nil {
			return err
		}

		job.Status = StatusRunning
		job.LockedBy = &workerID
		job.LockedAt = &now
		job.UpdatedAt = now
		return tx.Model(&Job{}).Where("id = ?", job.ID).Updates(map[string]any{
			"status":     job.Status,
			"locked_by":  workerID,
			"locked_at":  now,
			"updated_at": now,
		}).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *Repo) MarkDone(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&Job{}).Where("id = ?", id).Updates(map[string]any{
		"status":     StatusDone,
		"updated_at": time.Now().UTC(),
	}).Error
}

func (r *Repo) MarkFailed(ctx context.Context, id uint64, errMsg string) error {
	return r.DB.WithContext(ctx).Model(&Job{}).Where("id = ?", id).Updates(map[string]any{
		"status":     StatusFailed,
		"last_error": errMsg,
		"updated_at": time.Now().UTC(),
	}).Error
}

func (r *Repo) RetryLater(ctx context.Context, id uint64, attempts int, runAt time.Time, errMsg string) error {
	return r.DB.WithContext(ctx).Model(&Job{}).Where("id = ?", id).Updates(map[string]any{
		"status":     StatusPending,
		"attempts":   attempts,
		"run_at":     runAt.UTC(),
		"locked_by":  nil,
		"locked_at":  nil,
		"last_error": errMsg,
		"updated_at": time.Now().UTC(),
	}).Error
}
