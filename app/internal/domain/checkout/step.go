package checkout

type Step string

const (
	StepCart         Step = "cart"
	StepReview       Step = "review"
	StepValidation   Step = "validation"
	StepConfirmation Step = "confirmation"
)

func (s Step) IsValid() bool {
	switch s {
	case StepCart, StepReview, StepValidation, StepConfirmation:
		return true
	default:
		return false
	}
}

type Event string

const (
	EventProceed         Event = "proceed"
	EventBack            Event = "back"
	EventClientValidated Event = "client_validated"
	EventComplete        Event = "complete"
)

// Guards is the data the transition table inspects.
type Guards struct {
	CartEmpty       bool
	ClientValidated bool
	OrderSubmitted  bool
}

// Transition returns the step reached from s on e, or an error when the
// event is not allowed there or its guard fails. It has no side effects.
func Transition(s Step, e Event, g Guards) (Step, error) {
	switch {
	case s == StepCart && e == EventProceed:
		if g.CartEmpty {
			return s, ErrEmptyCart
		}
		return StepReview, nil
	case s == StepReview && e == EventBack:
		return StepCart, nil
	case s == StepReview && e == EventProceed:
		return StepValidation, nil
	case s == StepValidation && e == EventBack:
		return StepReview, nil
	case s == StepValidation && e == EventClientValidated:
		if !g.ClientValidated {
			return s, ErrClientNotValidated
		}
		return StepConfirmation, nil
	case s == StepConfirmation && e == EventComplete:
		if !g.OrderSubmitted {
			return s, ErrOrderNotSubmitted
		}
		return StepCart, nil
	default:
		return s, ErrInvalidTransition
	}
}
