package classify

import "context"

// Completer produces a single completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
