package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/meridian-hrm/meridian-hrm/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAuditRecord is the task type for persisting audit trail entries.
	TaskAuditRecord = "audit:record"
)

// NewAuditRecordTask constructs an Asynq task from an audit log entry.
func NewAuditRecordTask(log shared.AuditLog) (*asynq.Task, error) {
	data, err := json.Marshal(log)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditRecord, data), nil
}

// AuditRecordJob writes queued audit entries to the database.
type AuditRecordJob struct {
	recorder shared.AuditRecorder
	logger   *slog.Logger
}

// NewAuditRecordJob constructs the job handler.
func NewAuditRecordJob(recorder shared.AuditRecorder, logger *slog.Logger) *AuditRecordJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditRecordJob{recorder: recorder, logger: logger}
}

// Handle processes TaskAuditRecord tasks.
func (j *AuditRecordJob) Handle(ctx context.Context, t *asynq.Task) error {
	var log shared.AuditLog
	if err := json.Unmarshal(t.Payload(), &log); err != nil {
		j.logger.Warn("audit task payload", slog.Any("error", err))
		return asynq.SkipRetry
	}
	return j.recorder.Record(ctx, log)
}
