package ports

import "context"

// Advisor is the contract for the external language-model collaborator
// consulted by Matcher and Adapter. Both callers depend only on this
// interface, never on a concrete client, so their rule-based fallbacks are
// exercised identically whether the client errors, times out, or is a test
// double.
type Advisor interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
