package push

import "context"

// Message is a platform-neutral push payload.
type Message struct {
	Title    string
	Body     string
	ImageURL string
	Data     map[string]string
}

// SendResponse is the per-token outcome of a multicast send.
type SendResponse struct {
	Token string
	// Success reports delivery acceptance by the gateway.
	Success bool
	// Unregistered marks the "token invalid / app uninstalled" error class;
	// these tokens are pruned by the sender.
	Unregistered bool
	Err          error
}

// MulticastResult aggregates a multicast send.
type MulticastResult struct {
	SuccessCount int
	FailureCount int
	Responses    []SendResponse
}

// Gateway dispatches one message to many device tokens in a single call.
// Implementations must return per-token outcomes with the invalid-token error
// class distinguishable from transient failures.
type Gateway interface {
	SendMulticast(ctx context.Context, tokens []string, msg *Message) (*MulticastResult, error)
}
