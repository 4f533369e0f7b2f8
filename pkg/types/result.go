package types

import "net/http"

// StatusDegraded marks a write that happened but incompletely: the package
// row is committed and at least one link set was not written.
const StatusDegraded = http.StatusMultiStatus

// Result is the envelope returned by every catalog operation. Status maps
// one-to-one onto an HTTP status code.
type Result struct {
	Status  int                 `json:"-"`
	OK      bool                `json:"status"`
	Message string              `json:"message"`
	Data    any                 `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`

	// Err is the underlying failure, if any. It is not serialized.
	Err error `json:"-"`
}

// Succeeded returns a successful Result.
func Succeeded(status int, message string, data any) Result {
	return Result{Status: status, OK: true, Message: message, Data: data}
}

// Failed returns a failed Result for err.
func Failed(status int, message string, err error) Result {
	return Result{Status: status, OK: false, Message: message, Err: err}
}

// Degraded reports whether the operation partially succeeded.
func (r Result) Degraded() bool {
	return r.Status == StatusDegraded
}
