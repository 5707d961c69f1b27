// Package submit implements the form submission controller: it sends a
// form's data to the form's endpoint and acts on the Submission Result by
// navigating, alerting the user, or logging a diagnostic.
package submit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kozaktomas/faceauth/internal/authclient"
	"github.com/kozaktomas/faceauth/internal/form"
)

// ErrBusy is returned for a submission attempted while another one of the
// same form is in flight.
var ErrBusy = errors.New("submission already in flight")

// ErrNoRedirect is returned for a successful result without a redirect target.
var ErrNoRedirect = errors.New("successful result has no redirect")

// Poster sends form data to an endpoint and returns the decoded result.
type Poster interface {
	PostForm(ctx context.Context, endpoint string, data *form.Data) (*authclient.Result, error)
}

// Navigator moves the user to a new location.
type Navigator interface {
	Navigate(ctx context.Context, location string) error
}

// Notifier shows a blocking message to the user.
type Notifier interface {
	Alert(message string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, location string) error

func (f NavigatorFunc) Navigate(ctx context.Context, location string) error {
	return f(ctx, location)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Alert(message string) {
	f(message)
}

// Controller owns one form: its definition, its endpoint and the pending
// state of its submissions. Controllers share nothing with each other.
type Controller struct {
	def       *form.Definition
	endpoint  string
	title     string
	poster    Poster
	navigator Navigator
	notifier  Notifier
	logger    *log.Logger
	pending   atomic.Bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the diagnostic logger. Defaults to the standard logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithEndpoint overrides the endpoint taken from the definition's action.
func WithEndpoint(endpoint string) Option {
	return func(c *Controller) {
		c.endpoint = endpoint
	}
}

// NewController binds a controller to the form described by def.
func NewController(def *form.Definition, poster Poster, navigator Navigator, notifier Notifier, opts ...Option) *Controller {
	c := &Controller{
		def:       def,
		endpoint:  def.Action,
		title:     cases.Title(language.English).String(def.Name),
		poster:    poster,
		navigator: navigator,
		notifier:  notifier,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Definition returns the bound form definition.
func (c *Controller) Definition() *form.Definition {
	return c.def
}

// Endpoint returns the endpoint submissions are sent to.
func (c *Controller) Endpoint() string {
	return c.endpoint
}

// Pending reports whether a submission is in flight.
func (c *Controller) Pending() bool {
	return c.pending.Load()
}

// Submit sends data and handles the result before returning.
//
// Data violating the form's native constraints is never sent. While a
// submission is in flight further calls return a Busy outcome. The caller's
// data is not modified in any case.
func (c *Controller) Submit(ctx context.Context, data *form.Data) Outcome {
	if out, ok := c.begin(data); !ok {
		return out
	}
	defer c.pending.Store(false)
	return c.settle(ctx, data)
}

// SubmitAsync starts a submission and returns at once. The outcome is
// delivered on the returned channel, which is buffered and receives exactly
// one value. Validation and the pending guard are applied before returning.
func (c *Controller) SubmitAsync(ctx context.Context, data *form.Data) <-chan Outcome {
	done := make(chan Outcome, 1)
	if out, ok := c.begin(data); !ok {
		done <- out
		return done
	}
	go func() {
		defer c.pending.Store(false)
		done <- c.settle(ctx, data)
	}()
	return done
}

// begin validates data and takes the pending guard.
func (c *Controller) begin(data *form.Data) (Outcome, bool) {
	if err := form.Validate(c.def, data); err != nil {
		return Outcome{State: StateInvalid, Err: err}, false
	}
	if !c.pending.CompareAndSwap(false, true) {
		return Outcome{State: StateBusy, Err: ErrBusy}, false
	}
	return Outcome{}, true
}

func (c *Controller) settle(ctx context.Context, data *form.Data) Outcome {
	result, err := c.poster.PostForm(ctx, c.endpoint, data)
	if err != nil {
		return c.fail(err)
	}

	if result.Success {
		if result.Redirect == "" {
			return c.fail(ErrNoRedirect)
		}
		if err := c.navigator.Navigate(ctx, result.Redirect); err != nil {
			out := c.fail(fmt.Errorf("could not navigate to %s: %w", result.Redirect, err))
			out.Location = result.Redirect
			out.Result = result
			return out
		}
		return Outcome{State: StateRedirected, Location: result.Redirect, Result: result}
	}

	c.notifier.Alert(c.AlertText(result.Message))
	return Outcome{State: StateRejected, Message: result.Message, Result: result}
}

// fail records a transport or parse failure on the diagnostic channel only.
func (c *Controller) fail(err error) Outcome {
	c.logger.Printf("%s submission to %s failed: %v", c.def.Name, c.endpoint, err)
	return Outcome{State: StateFailed, Err: err}
}

// AlertText formats the user-visible rejection message, e.g.
// "Signup failed: Email already registered".
func (c *Controller) AlertText(message string) string {
	return fmt.Sprintf("%s failed: %s", c.title, message)
}
