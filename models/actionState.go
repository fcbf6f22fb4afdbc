package models

// FieldErrors maps a form field to its human-readable messages.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

func (fe FieldErrors) HasErrors() bool {
	return len(fe) > 0
}

// State is what a form gets back after a mutation.
type State struct {
	Errors  FieldErrors `json:"errors,omitempty"`
	Message *string     `json:"message"`
}

func messageState(msg string) State {
	return State{Message: &msg}
}

// Outcome is the tagged result of an invoice mutation.
// RedirectTo is only set when the caller should navigate away.
type Outcome struct {
	Kind       OutcomeKind
	RedirectTo string
	State      State
}

func Redirect(path string) Outcome {
	return Outcome{Kind: OutcomeSuccess, RedirectTo: path}
}

func Succeeded(message string) Outcome {
	return Outcome{Kind: OutcomeSuccess, State: messageState(message)}
}

func ValidationFailed(errs FieldErrors, message string) Outcome {
	state := messageState(message)
	state.Errors = errs
	return Outcome{Kind: OutcomeValidationFailure, State: state}
}

func StoreFailed(message string) Outcome {
	return Outcome{Kind: OutcomeStoreFailure, State: messageState(message)}
}

func (o Outcome) Message() string {
	if o.State.Message == nil {
		return ""
	}
	return *o.State.Message
}
