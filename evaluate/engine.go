package evaluate

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/redlinehq/redline/rules"
)

// Result is the outcome of evaluating one rule against a fact set.
type Result struct {
	RuleID  string `json:"rule_id"`
	Subject string `json:"subject"`
	Matched bool   `json:"matched"`
	Error   string `json:"error,omitempty"`
}

// Engine compiles rule conditions to CEL programs once and evaluates them
// against fact maps. Safe for concurrent evaluation after compilation.
type Engine struct {
	env      *cel.Env
	mu       sync.RWMutex
	programs map[string]cel.Program
	byID     map[string]rules.Rule
	order    []string
}

// NewEngine creates an engine with one dynamic variable per fact
// namespace, the same environment shape regardless of which rules get
// compiled into it.
func NewEngine() (*Engine, error) {
	opts := make([]cel.EnvOption, 0, len(Namespaces))
	for _, ns := range Namespaces {
		opts = append(opts, cel.Variable(ns, cel.DynType))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	return &Engine{
		env:      env,
		programs: make(map[string]cel.Program),
		byID:     make(map[string]rules.Rule),
	}, nil
}

// AddRule translates and compiles one rule. A rule that fails to compile
// is rejected; previously compiled rules are unaffected.
func (e *Engine) AddRule(r rules.Rule) error {
	expr, err := Translate(r)
	if err != nil {
		return err
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("rule %s: compile error: %w", r.RuleID, issues.Err())
	}
	prog, err := e.env.Program(ast, cel.CostLimit(1000000))
	if err != nil {
		return fmt.Errorf("rule %s: program creation error: %w", r.RuleID, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.programs[r.RuleID]; exists {
		return fmt.Errorf("rule %s is already compiled", r.RuleID)
	}
	e.programs[r.RuleID] = prog
	e.byID[r.RuleID] = r
	e.order = append(e.order, r.RuleID)
	return nil
}

// CompileAll adds every rule in the set, stopping at the first failure.
func (e *Engine) CompileAll(ruleset []rules.Rule) error {
	for _, r := range ruleset {
		if err := e.AddRule(r); err != nil {
			return err
		}
	}
	return nil
}

// Evaluate runs one compiled rule against the facts.
func (e *Engine) Evaluate(ruleID string, facts map[string]any) (*Result, error) {
	e.mu.RLock()
	prog, ok := e.programs[ruleID]
	r := e.byID[ruleID]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("rule %s is not compiled", ruleID)
	}
	return e.run(prog, r, facts), nil
}

// EvaluateAll runs every compiled rule against the facts, in the order
// rules were added. Evaluation errors are captured per rule; they never
// abort the batch.
func (e *Engine) EvaluateAll(facts map[string]any) []*Result {
	e.mu.RLock()
	order := make([]string, len(e.order))
	copy(order, e.order)
	e.mu.RUnlock()

	results := make([]*Result, 0, len(order))
	for _, id := range order {
		e.mu.RLock()
		prog := e.programs[id]
		r := e.byID[id]
		e.mu.RUnlock()
		results = append(results, e.run(prog, r, facts))
	}
	return results
}

func (e *Engine) run(prog cel.Program, r rules.Rule, facts map[string]any) *Result {
	res := &Result{RuleID: r.RuleID, Subject: r.Action.Subject}

	input := make(map[string]any, len(Namespaces))
	for _, ns := range Namespaces {
		if v, ok := facts[ns]; ok {
			input[ns] = v
		} else {
			input[ns] = map[string]any{}
		}
	}

	out, _, err := prog.Eval(input)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if matched, ok := out.Value().(bool); ok {
		res.Matched = matched
	}
	return res
}
