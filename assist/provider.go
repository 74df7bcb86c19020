package assist

import "context"

// Role is the chat role a Message is sent under.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat completion request.
type Message struct {
	Role    Role
	Content string
}

// Response is the completion text plus the token counts the backend
// reported for it. Counts are zero when the backend reports none.
type Response struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// Tokens returns the prompt and completion tokens combined.
func (r *Response) Tokens() int { return r.PromptTokens + r.CompletionTokens }

// Provider completes a chat conversation.
//
// The Explainer calls Complete once per issue batch and once for the
// summary, strictly one call at a time, and stops at the first error.
// A Provider shared by several Explainers running concurrently must be
// safe for concurrent use; RateLimitedProvider is when its wrapped
// Provider is. Complete must return promptly once ctx is done.
type Provider interface {
	Complete(ctx context.Context, messages []Message) (*Response, error)
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func(ctx context.Context, messages []Message) (*Response, error)

// Complete calls f.
func (f ProviderFunc) Complete(ctx context.Context, messages []Message) (*Response, error) {
	return f(ctx, messages)
}
