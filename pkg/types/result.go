package types

import "fmt"

// Status is the outcome of an install or uninstall attempt
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Result is the typed outcome of an idempotent install/uninstall. Callers
// decide the policy: add aborts on failure, sync collects and continues.
type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Succeeded returns a successful result
func Succeeded(format string, args ...interface{}) Result {
	return Result{Status: StatusSucceeded, Message: fmt.Sprintf(format, args...)}
}

// Skipped returns a result for an operation that was not needed
func Skipped(format string, args ...interface{}) Result {
	return Result{Status: StatusSkipped, Message: fmt.Sprintf(format, args...)}
}

// Failed returns a failed result carrying the cause
func Failed(err error, format string, args ...interface{}) Result {
	return Result{Status: StatusFailed, Message: fmt.Sprintf(format, args...), Err: err}
}

// OK reports whether the operation succeeded or was skipped
func (r Result) OK() bool {
	return r.Status != StatusFailed
}

// Changed reports whether the operation modified the machine
func (r Result) Changed() bool {
	return r.Status == StatusSucceeded
}
