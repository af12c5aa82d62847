package core

// ConversationStatus is the conversation flow state.
type ConversationStatus string

const (
	StatusNormal                ConversationStatus = "normal"
	StatusAwaitingClarification ConversationStatus = "awaiting_clarification"
	StatusClosed                ConversationStatus = "closed"
)

// ConversationState is owned by the flow controller, one value per
// active session. It is never shared between sessions and does not
// survive session end unless items were promoted to long-term memory.
type ConversationState struct {
	Status               ConversationStatus
	ContextStack         []ContextItem // most-relevant first
	LastIntentConfidence float64
	ClarificationRetries int
	// BestGuess is set once the clarification retry bound is exceeded;
	// the session keeps going with its best interpretation.
	BestGuess bool
}

func NewConversationState() *ConversationState {
	return &ConversationState{Status: StatusNormal}
}

// Top returns the most relevant stacked context item, if any.
func (s *ConversationState) Top() (ContextItem, bool) {
	if len(s.ContextStack) == 0 {
		return ContextItem{}, false
	}
	return s.ContextStack[0], true
}
