package engine

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

const policyQuery = "data.newsagg.moderation.allow"

// Default Rego policy: admins and moderators may set any known status. This
// matches the built-in triage rules; deployments can tighten transitions by
// supplying their own policy without a code change.
const defaultRegoPolicy = `package newsagg.moderation

default allow = false

statuses := {"new", "reviewed", "closed"}

allow if {
	input.role == "admin"
	input.to in statuses
}

allow if {
	input.role == "moderator"
	input.to in statuses
}
`

// OPAEvaluator evaluates moderation policies using OPA Rego.
type OPAEvaluator struct {
	compiler *ast.Compiler
}

// NewOPAEvaluator compiles the given Rego policy. An empty policy selects the
// built-in default.
func NewOPAEvaluator(policy string) (*OPAEvaluator, error) {
	if policy == "" {
		policy = defaultRegoPolicy
	}
	compiler, err := ast.CompileModules(map[string]string{"moderation.rego": policy})
	if err != nil {
		return nil, fmt.Errorf("compile moderation policy: %w", err)
	}
	return &OPAEvaluator{compiler: compiler}, nil
}

// AllowTransition reports whether role may change a report from "from" to "to".
// A policy that yields no result or a non-boolean denies.
func (e *OPAEvaluator) AllowTransition(ctx context.Context, role, from, to string) (bool, error) {
	input := map[string]interface{}{
		"role": role,
		"from": from,
		"to":   to,
	}
	q := rego.New(
		rego.Query(policyQuery),
		rego.Compiler(e.compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return false, fmt.Errorf("eval moderation policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, nil
	}
	allowed, ok := rs[0].Expressions[0].Value.(bool)
	return ok && allowed, nil
}
