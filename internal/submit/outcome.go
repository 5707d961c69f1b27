package submit

import (
	"context"

	"github.com/kozaktomas/faceauth/internal/authclient"
	"github.com/kozaktomas/faceauth/internal/form"
)

// State is how a submission settled.
type State int

const (
	StateRedirected State = iota + 1 // success, navigated to Location
	StateRejected                    // success=false, user alerted with Message
	StateFailed                      // transport or parse failure, logged only
	StateBusy                        // another submission of the form was in flight
	StateInvalid                     // native constraints failed, nothing sent
)

func (s State) String() string {
	switch s {
	case StateRedirected:
		return "redirected"
	case StateRejected:
		return "rejected"
	case StateFailed:
		return "failed"
	case StateBusy:
		return "busy"
	case StateInvalid:
		return "invalid"
	}
	return "unknown"
}

// Outcome is the settled state of one submission.
type Outcome struct {
	State    State
	Location string             // redirect target, for StateRedirected
	Message  string             // server message, for StateRejected
	Result   *authclient.Result // decoded result, when one was received
	Err      error
}

// Handlers groups the signup and login controllers of a page.
type Handlers struct {
	Signup *Controller
	Login  *Controller
}

// HandleSignupSubmit submits the signup form.
func (h *Handlers) HandleSignupSubmit(ctx context.Context, data *form.Data) Outcome {
	return h.Signup.Submit(ctx, data)
}

// HandleLoginSubmit submits the login form.
func (h *Handlers) HandleLoginSubmit(ctx context.Context, data *form.Data) Outcome {
	return h.Login.Submit(ctx, data)
}
