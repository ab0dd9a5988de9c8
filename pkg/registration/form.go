// Package registration drives the admin sign-up form: field state, local
// checks, the POST to /register and the feedback shown afterwards.
package registration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/schedulifyx-api/pkg/validation"
)

// Feedback texts shown by the form.
const (
	MsgFieldsRequired = "All fields are required!"
	MsgWeakPassword   = validation.PasswordRequirements
	MsgSuccess        = "Registration successful! Redirecting..."
	MsgFailed         = "Registration failed!"
	MsgUnexpected     = "Something went wrong. Please try again."
)

// LoginPath is where a successful registration navigates to.
const LoginPath = "/login"

// DefaultRedirectDelay is how long the success message stays before navigating.
const DefaultRedirectDelay = 2 * time.Second

// ErrSubmitting is returned when Submit is called while a request is in flight.
var ErrSubmitting = errors.New("registration: submission already in progress")

// State is the form lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// MessageType distinguishes success and error banners.
type MessageType string

const (
	MessageSuccess MessageType = "success"
	MessageError   MessageType = "error"
)

// Message is the banner under the form. A zero Message means none.
type Message struct {
	Text string
	Type MessageType
}

// Fields is the form input, posted as JSON.
type Fields struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Navigator moves the user to another view.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

// Navigate calls f(path).
func (f NavigatorFunc) Navigate(path string) { f(path) }

// Scheduler runs fn after delay.
type Scheduler func(delay time.Duration, fn func())

// Doer sends HTTP requests; *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option customises a Form.
type Option func(*Form)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client Doer) Option {
	return func(f *Form) { f.client = client }
}

// WithNavigator sets where successful registrations are sent.
func WithNavigator(nav Navigator) Option {
	return func(f *Form) { f.navigator = nav }
}

// WithScheduler replaces time.AfterFunc for the redirect.
func WithScheduler(s Scheduler) Option {
	return func(f *Form) { f.schedule = s }
}

// WithRedirectDelay overrides DefaultRedirectDelay.
func WithRedirectDelay(d time.Duration) Option {
	return func(f *Form) { f.delay = d }
}

// Form holds registration state. It is safe for concurrent use.
type Form struct {
	endpoint  string
	client    Doer
	navigator Navigator
	schedule  Scheduler
	delay     time.Duration

	mu      sync.Mutex
	fields  Fields
	loading bool
	message Message
	state   State
}

// New returns a form posting to <baseURL>/register.
func New(baseURL string, opts ...Option) *Form {
	f := &Form{
		endpoint: strings.TrimRight(baseURL, "/") + "/register",
		client:   &http.Client{Timeout: 15 * time.Second},
		schedule: func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
		delay:    DefaultRedirectDelay,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetField updates one input by its JSON name and reports whether the name is known.
func (f *Form) SetField(name, value string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch name {
	case "name":
		f.fields.Name = value
	case "email":
		f.fields.Email = value
	case "password":
		f.fields.Password = value
	default:
		return false
	}
	return true
}

// SetFields replaces all inputs.
func (f *Form) SetFields(fields Fields) {
	f.mu.Lock()
	f.fields = fields
	f.mu.Unlock()
}

// Fields returns the current inputs.
func (f *Form) Fields() Fields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// Loading reports whether a submission is in flight; the submit control is disabled meanwhile.
func (f *Form) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// Message returns the banner currently shown.
func (f *Form) Message() Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// State returns the lifecycle state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Submit validates the inputs and, when they pass, posts them once. The
// returned Message is also what Message reports afterwards. The only error
// is ErrSubmitting.
func (f *Form) Submit(ctx context.Context) (Message, error) {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return Message{}, ErrSubmitting
	}
	fields := f.fields
	if fields.Name == "" || fields.Email == "" || fields.Password == "" {
		msg := f.finishLocked(StateFailed, Message{Text: MsgFieldsRequired, Type: MessageError})
		f.mu.Unlock()
		return msg, nil
	}
	if !validation.IsStrongPassword(fields.Password) {
		msg := f.finishLocked(StateFailed, Message{Text: MsgWeakPassword, Type: MessageError})
		f.mu.Unlock()
		return msg, nil
	}
	f.loading = true
	f.message = Message{}
	f.state = StateSubmitting
	f.mu.Unlock()

	msg, ok := f.post(ctx, fields)

	f.mu.Lock()
	f.loading = false
	if ok {
		f.fields = Fields{}
		msg = f.finishLocked(StateSucceeded, msg)
	} else {
		msg = f.finishLocked(StateFailed, msg)
	}
	f.mu.Unlock()

	if ok && f.navigator != nil {
		nav := f.navigator
		f.schedule(f.delay, func() { nav.Navigate(LoginPath) })
	}
	return msg, nil
}

func (f *Form) finishLocked(state State, msg Message) Message {
	f.state = state
	f.message = msg
	return msg
}

type serverReply struct {
	Message string `json:"message"`
}

// post sends fields and maps the reply to a banner. The body is decoded
// before the status is looked at, so an unreadable body counts as a failure
// even on 2xx.
func (f *Form) post(ctx context.Context, fields Fields) (Message, bool) {
	unexpected := Message{Text: MsgUnexpected, Type: MessageError}

	payload, err := json.Marshal(fields)
	if err != nil {
		return unexpected, false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(payload))
	if err != nil {
		return unexpected, false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return unexpected, false
	}
	defer resp.Body.Close()

	var reply serverReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return unexpected, false
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Message{Text: MsgSuccess, Type: MessageSuccess}, true
	}
	if reply.Message != "" {
		return Message{Text: reply.Message, Type: MessageError}, false
	}
	return Message{Text: MsgFailed, Type: MessageError}, false
}
