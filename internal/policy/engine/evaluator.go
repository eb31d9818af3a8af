// Package engine evaluates moderation policies deciding which report status
// transitions a caller may perform.
package engine

import "context"

// Evaluator decides whether a role may move a report between statuses.
type Evaluator interface {
	// AllowTransition reports whether role may change a report from status
	// "from" to status "to".
	AllowTransition(ctx context.Context, role, from, to string) (bool, error)
}
