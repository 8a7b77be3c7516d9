package tasks

// DefineTasks registers all available tasks
func DefineTasks() {
	RegisterHandler(LogInfoTask.TaskID(), LogInfoTask.HandleExecution)

	// Ledger sweeps
	RegisterHandler(MarkOverdueReceivablesTask.TaskID(), MarkOverdueReceivablesTask.HandleExecution)
	RegisterHandler(MarkOverduePayablesTask.TaskID(), MarkOverduePayablesTask.HandleExecution)
	RegisterHandler(MarkOverdueInstallmentsTask.TaskID(), MarkOverdueInstallmentsTask.HandleExecution)

	// Reporting
	RegisterHandler(RefreshAgingSnapshotTask.TaskID(), RefreshAgingSnapshotTask.HandleExecution)
}
