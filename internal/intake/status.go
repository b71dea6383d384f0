package intake

import "encoding/json"

type State int

const (
	StateIdle State = iota
	StateInFlight
	StateResolved
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInFlight:
		return "in_flight"
	case StateResolved:
		return "resolved"
	}
	return "unknown"
}

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSuccess
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	}
	return ""
}

const (
	SuccessMessage = "Form submitted successfully! Check your email."
	FailureMessage = "Failed to submit form. Please try again."
)

// Status is Idle, InFlight, or Resolved with an outcome and message.
// Outcome and Message are only meaningful when State is StateResolved.
type Status struct {
	State   State
	Outcome Outcome
	Message string
}

func idle() Status {
	return Status{State: StateIdle}
}

func inFlight() Status {
	return Status{State: StateInFlight}
}

func resolved(outcome Outcome, message string) Status {
	return Status{State: StateResolved, Outcome: outcome, Message: message}
}

func (s Status) Succeeded() bool {
	return s.State == StateResolved && s.Outcome == OutcomeSuccess
}

func (s Status) Failed() bool {
	return s.State == StateResolved && s.Outcome == OutcomeFailure
}

func (s Status) MarshalJSON() ([]byte, error) {
	out := struct {
		State   string `json:"state"`
		Outcome string `json:"outcome,omitempty"`
		Message string `json:"message,omitempty"`
	}{
		State:   s.State.String(),
		Outcome: s.Outcome.String(),
		Message: s.Message,
	}
	return json.Marshal(out)
}
