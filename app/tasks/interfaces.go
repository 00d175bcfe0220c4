package tasks

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application in serve mode to regenerate feeds in the
// background and report the outcome of the latest run.
// Example usage:
//
//	scheduler := NewScheduler(newTask, interval)
//	scheduler.Start()
//	defer scheduler.Stop()
//	status, ok := scheduler.LastRun()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	LastRun() (RunStatus, bool)
}
