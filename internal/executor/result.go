package executor

import "encoding/json"

// Failure is the payload returned in place of a response body when the call
// failed. It is data, never an error.
type Failure struct {
	Error   string `json:"error"`
	Status  int    `json:"status,omitempty"`
	Details any    `json:"details"`
}

// Result is the outcome of one executed request. Exactly one of Body and
// Failure is meaningful.
type Result struct {
	// Status is the HTTP status, or 0 when no response arrived.
	Status  int
	Body    any
	Failure *Failure
}

// OK reports whether the request produced a response below 400.
func (r *Result) OK() bool { return r.Failure == nil }

// Payload is what the result serializes to: the decoded body on success and
// the Failure otherwise.
func (r *Result) Payload() any {
	if r.Failure != nil {
		return r.Failure
	}
	return r.Body
}

func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Payload())
}
