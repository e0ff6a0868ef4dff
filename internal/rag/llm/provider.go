package llm

import "context"

// Provider generates a grounded answer from the query and the retained
// context passages. Decoding parameters are fixed at client construction so
// identical inputs decode the same way.
type Provider interface {
	Generate(ctx context.Context, query string, matches []string) (string, error)
}
