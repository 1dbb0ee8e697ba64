package service

import (
	"net/http"

	"github.com/shaharia-lab/notifier/internal/trigger"
)

// Result is the status and message every notify call resolves to.
type Result struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// OK reports whether the status is in the success range.
func (r Result) OK() bool {
	return r.Status >= http.StatusOK && r.Status < http.StatusBadRequest
}

// resultOf converts an error into its status and client-facing message.
func resultOf(err error) Result {
	return Result{Status: trigger.StatusCode(err), Message: trigger.Message(err)}
}
