package tasks

import (
	"context"
	"time"

	"flowi_ledger/internal/logger"
	"flowi_ledger/internal/models"
	"flowi_ledger/internal/services"
)

// MarkOverdueReceivablesTaskDef sweeps past-due receivables
type MarkOverdueReceivablesTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *MarkOverdueReceivablesTaskDef) TaskID() string {
	return "mark_overdue_receivables"
}

// HandleExecution runs the receivable sweep
func (t *MarkOverdueReceivablesTaskDef) HandleExecution(ctx context.Context, deps *Deps, task models.ScheduledTask) (map[string]interface{}, error) {
	n, err := deps.Sweeper.MarkOverdueReceivables(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"status": "success", "changed": n}, nil
}

// MarkOverdueReceivablesTask is the singleton instance of MarkOverdueReceivablesTaskDef
var MarkOverdueReceivablesTask = &MarkOverdueReceivablesTaskDef{}

// MarkOverduePayablesTaskDef sweeps past-due payables
type MarkOverduePayablesTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *MarkOverduePayablesTaskDef) TaskID() string {
	return "mark_overdue_payables"
}

// HandleExecution runs the payable sweep
func (t *MarkOverduePayablesTaskDef) HandleExecution(ctx context.Context, deps *Deps, task models.ScheduledTask) (map[string]interface{}, error) {
	n, err := deps.Sweeper.MarkOverduePayables(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"status": "success", "changed": n}, nil
}

// MarkOverduePayablesTask is the singleton instance of MarkOverduePayablesTaskDef
var MarkOverduePayablesTask = &MarkOverduePayablesTaskDef{}

// MarkOverdueInstallmentsTaskDef sweeps past-due pending installments
type MarkOverdueInstallmentsTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *MarkOverdueInstallmentsTaskDef) TaskID() string {
	return "mark_overdue_installments"
}

// HandleExecution runs the installment sweep
func (t *MarkOverdueInstallmentsTaskDef) HandleExecution(ctx context.Context, deps *Deps, task models.ScheduledTask) (map[string]interface{}, error) {
	n, err := deps.Sweeper.MarkOverdueInstallments(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"status": "success", "changed": n}, nil
}

// MarkOverdueInstallmentsTask is the singleton instance of MarkOverdueInstallmentsTaskDef
var MarkOverdueInstallmentsTask = &MarkOverdueInstallmentsTaskDef{}

// RefreshAgingSnapshotTaskDef recomputes the aging report and warms the cache
type RefreshAgingSnapshotTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *RefreshAgingSnapshotTaskDef) TaskID() string {
	return "refresh_aging_snapshot"
}

// HandleExecution recomputes the aging report and stores it under the key
// the report handler reads
func (t *RefreshAgingSnapshotTaskDef) HandleExecution(ctx context.Context, deps *Deps, task models.ScheduledTask) (map[string]interface{}, error) {
	asOf := services.ReportDay(time.Now())
	report, err := deps.Aging.ComputeAgingReport(ctx, asOf)
	if err != nil {
		return nil, err
	}
	if deps.Cache != nil {
		if err := deps.Cache.Set(ctx, "aging_report:"+asOf.Format("2006-01-02"), report, 15*time.Minute); err != nil {
			logger.WithComponent("tasks").Warn().Err(err).Msg("failed to cache aging snapshot")
		}
	}
	return map[string]interface{}{"status": "success", "customers": len(report)}, nil
}

// RefreshAgingSnapshotTask is the singleton instance of RefreshAgingSnapshotTaskDef
var RefreshAgingSnapshotTask = &RefreshAgingSnapshotTaskDef{}

// LogInfoTaskDef logs an informational message; useful to verify the worker loop
type LogInfoTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *LogInfoTaskDef) TaskID() string {
	return "log_info"
}

// HandleExecution logs the message argument
func (t *LogInfoTaskDef) HandleExecution(ctx context.Context, deps *Deps, task models.ScheduledTask) (map[string]interface{}, error) {
	message, ok := task.Arguments["message"].(string)
	if !ok {
		message = "No message provided"
	}
	logger.WithComponent("tasks").Info().Str("message", message).Msg("log_info task")
	return map[string]interface{}{"status": "success", "message": message}, nil
}

// LogInfoTask is the singleton instance of LogInfoTaskDef
var LogInfoTask = &LogInfoTaskDef{}
