package runway

import (
	"encoding/json"
	"strings"
)

// Status is the lifecycle state of a Runway task.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusThrottled Status = "THROTTLED"
	StatusRunning   Status = "RUNNING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
	StatusCanceled  Status = "CANCELED"
)

// Terminal reports whether no further transitions will occur.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	default:
		return false
	}
}

// Task is a submitted video generation job.
type Task struct {
	ID          string          `json:"id"`
	Status      Status          `json:"status"`
	Output      json.RawMessage `json:"output,omitempty"`
	Failure     string          `json:"failure,omitempty"`
	FailureCode string          `json:"failureCode,omitempty"`
	Progress    float64         `json:"progress,omitempty"`
}

// VideoURL extracts the generated clip reference from Output. It returns an
// empty string when the output holds no usable reference.
func (t Task) VideoURL() string {
	raw := []byte(strings.TrimSpace(string(t.Output)))
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	switch raw[0] {
	case '"':
		var single string
		if json.Unmarshal(raw, &single) == nil {
			return strings.TrimSpace(single)
		}
	case '[':
		var list []string
		if json.Unmarshal(raw, &list) == nil && len(list) > 0 {
			return strings.TrimSpace(list[0])
		}
	case '{':
		var obj struct {
			Video string `json:"video"`
		}
		if json.Unmarshal(raw, &obj) == nil {
			return strings.TrimSpace(obj.Video)
		}
	}
	return ""
}
