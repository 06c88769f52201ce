package domain

// TaskKind identifies one of the closed set of tasks this process can run.
// Adding a kind means adding a case to the dispatcher switch, so new tasks
// are a compile-time-visible change.
type TaskKind string

const (
	TaskDownload        TaskKind = "download"
	TaskExtractMetadata TaskKind = "extract_metadata"
	TaskReadResult      TaskKind = "read_result"
	TaskCleanupResult   TaskKind = "cleanup_result"
	TaskCheckTool       TaskKind = "check_tool"
	TaskTestProxy       TaskKind = "test_proxy"
	TaskHistory         TaskKind = "history"
)

// ParseTaskKind maps a selector string to a TaskKind. The second return is
// false for selectors outside the closed set.
func ParseTaskKind(s string) (TaskKind, bool) {
	switch TaskKind(s) {
	case TaskDownload, TaskExtractMetadata, TaskReadResult, TaskCleanupResult,
		TaskCheckTool, TaskTestProxy, TaskHistory:
		return TaskKind(s), true
	}
	return "", false
}
