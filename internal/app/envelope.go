package app

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/yourusername/media-fetch-go/internal/domain"
)

// fallbackEnvelope is the guaranteed-valid document written when even the
// error envelope cannot be serialized.
const fallbackEnvelope = `{"error":"Serialization failed","output":{"success":false}}`

// TaskInput is one decoded stdin document: a selector plus its arguments.
type TaskInput struct {
	Selector string
	Args     map[string]interface{}
}

// ReadInput consumes the single JSON document the host writes to stdin. The
// document is either {"args": {...}} or a flat object; the task selector is
// the "mode" key, with "task" kept as a legacy alias, defaulting to download.
func ReadInput(r io.Reader) (*TaskInput, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, domain.Tag(domain.ErrInput, fmt.Errorf("failed to read input: %w", err))
	}

	var doc map[string]interface{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, domain.Tag(domain.ErrParse, fmt.Errorf("failed to parse input JSON: %w", err))
		}
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}

	args := doc
	if nested, ok := doc["args"].(map[string]interface{}); ok {
		args = nested
	}

	selector, _ := args["mode"].(string)
	if selector == "" {
		selector, _ = args["task"].(string)
	}
	if selector == "" {
		selector = string(domain.TaskDownload)
	}

	return &TaskInput{Selector: selector, Args: args}, nil
}

// Envelope is the host-facing output document.
type Envelope struct {
	Error  *string     `json:"error,omitempty"`
	Output interface{} `json:"output,omitempty"`
}

// BuildEnvelope shapes a task result for output. A sentinel failure field is
// hoisted to the top-level error key; the remaining fields stay under output
// for context. Results without the sentinel go under output whole.
func BuildEnvelope(result domain.TaskResult) Envelope {
	if !result.Failed() {
		return Envelope{Output: result}
	}

	msg := result.ErrorMessage()
	rest := make(map[string]interface{}, len(result))
	for k, v := range result {
		if k != domain.ResultKeyError {
			rest[k] = v
		}
	}

	env := Envelope{Error: &msg}
	if len(rest) > 0 {
		env.Output = rest
	}
	return env
}

// WriteEnvelope serializes the envelope to w. Serialization failures degrade
// to a minimal fallback document, so every invocation yields syntactically
// valid JSON.
func WriteEnvelope(w io.Writer, result domain.TaskResult) error {
	data, err := json.Marshal(BuildEnvelope(result))
	if err != nil {
		_, writeErr := io.WriteString(w, fallbackEnvelope)
		if writeErr != nil {
			return writeErr
		}
		return domain.Tag(domain.ErrSerialization, err)
	}

	_, err = w.Write(data)
	return err
}
