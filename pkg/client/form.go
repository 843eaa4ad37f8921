package client

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// FallbackErrorMessage is shown when a failed submission carries no server message.
const FallbackErrorMessage = "Une erreur est survenue. Veuillez réessayer."

// MissingFieldsMessage is shown when a required field is empty.
const MissingFieldsMessage = "Tous les champs sont requis"

var (
	// ErrBusy is returned by Submit while another submission is in flight.
	ErrBusy = errors.New("client: submission already in progress")
	// ErrMissingFields is returned by Submit, without any network call, when a
	// field is empty after trimming.
	ErrMissingFields = errors.New("client: name, email and message are required")
)

// FormState is the position of a Form in idle → submitting → succeeded|failed → idle.
type FormState int

const (
	StateIdle FormState = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s FormState) String() string {
	switch s {
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Field names a form input.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldMessage Field = "message"
)

// StatusKind tells a front end which indicator to show.
type StatusKind string

const (
	StatusNone    StatusKind = ""
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// FormStatus is the indicator shown under the form.
type FormStatus struct {
	Kind    StatusKind
	Message string
}

// ContactSubmitter sends a contact request. *Client implements it.
type ContactSubmitter interface {
	SubmitContact(ctx context.Context, req ContactRequest) (*ContactResponse, error)
}

// Form holds the contact form values and its submission state. It is safe for
// concurrent use; at most one submission runs at a time.
type Form struct {
	api ContactSubmitter

	mu     sync.Mutex
	values ContactRequest
	state  FormState
	status FormStatus
}

// NewForm は api に送信する空の Form を生成する
func NewForm(api ContactSubmitter) *Form {
	return &Form{api: api}
}

// Set updates one field. Editing after a finished submission returns the form
// to idle.
func (f *Form) Set(field Field, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch field {
	case FieldName:
		f.values.Name = value
	case FieldEmail:
		f.values.Email = value
	case FieldMessage:
		f.values.Message = value
	}
	if f.state == StateSucceeded || f.state == StateFailed {
		f.state = StateIdle
	}
}

// Values returns the current field values.
func (f *Form) Values() ContactRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// State returns the current state.
func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Busy reports whether a submission is in flight.
func (f *Form) Busy() bool {
	return f.State() == StateSubmitting
}

// Status returns the indicator of the last submission attempt.
func (f *Form) Status() FormStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Submit sends the form. On success the fields are cleared; on failure they are
// kept and the status carries the server message or FallbackErrorMessage.
func (f *Form) Submit(ctx context.Context) (*ContactResponse, error) {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return nil, ErrBusy
	}
	req := f.values
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Message) == "" {
		f.status = FormStatus{Kind: StatusError, Message: MissingFieldsMessage}
		f.mu.Unlock()
		return nil, ErrMissingFields
	}
	f.state = StateSubmitting
	f.status = FormStatus{}
	f.mu.Unlock()

	resp, err := f.api.SubmitContact(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		msg := FallbackErrorMessage
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			msg = apiErr.Message
		}
		f.state = StateFailed
		f.status = FormStatus{Kind: StatusError, Message: msg}
		return nil, err
	}

	f.values = ContactRequest{}
	f.state = StateSucceeded
	f.status = FormStatus{Kind: StatusSuccess, Message: resp.Message}
	return resp, nil
}
