package domain

// ResultKeyError is the sentinel failure field handlers place in their result
// map. The output envelope hoists it to the top-level "error" key.
const ResultKeyError = "result_error"

// TaskResult is the loosely-shaped value a task handler produces. The host
// consumes it as JSON, so it stays a map rather than a per-task struct; the
// success discriminator and sentinel error field are the only fixed parts of
// the shape.
type TaskResult map[string]interface{}

// OK builds a successful result with the given extra fields.
func OK(fields map[string]interface{}) TaskResult {
	r := TaskResult{"success": true}
	for k, v := range fields {
		r[k] = v
	}
	return r
}

// Fail builds a tagged failure result. Handlers return these instead of
// letting errors escape their boundary.
func Fail(msg string) TaskResult {
	return TaskResult{"success": false, ResultKeyError: msg}
}

// Failed reports whether the result carries the sentinel failure field.
func (r TaskResult) Failed() bool {
	_, ok := r[ResultKeyError]
	return ok
}

// ErrorMessage returns the sentinel failure text, or "" when absent.
func (r TaskResult) ErrorMessage() string {
	if msg, ok := r[ResultKeyError].(string); ok {
		return msg
	}
	return ""
}

// ResultRecord is the persisted outcome of a download task: written once when
// the strategy concludes (plus at most one intermediate record), then read
// back by a later poll invocation.
type ResultRecord struct {
	Success  bool   `json:"success"`
	FilePath string `json:"file_path,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
	Error    string `json:"result_error,omitempty"`
}
