package rules

import "fmt"

// Validate checks the condition's structural invariants: a known operator
// and a value shape that matches it (list for in/not_in, scalar otherwise).
func (c Condition) Validate() error {
	if c.Field == "" {
		return fmt.Errorf("condition is missing a field")
	}
	if !c.Operator.Valid() {
		return fmt.Errorf("condition on %q has unknown operator %q", c.Field, c.Operator)
	}
	isList := IsList(c.Value)
	if c.Operator.ListValued() && !isList {
		return fmt.Errorf("condition on %q: operator %q requires a list value, got %T", c.Field, c.Operator, c.Value)
	}
	if !c.Operator.ListValued() {
		if isList {
			return fmt.Errorf("condition on %q: operator %q requires a scalar value, got a list", c.Field, c.Operator)
		}
		if !IsScalar(c.Value) {
			return fmt.Errorf("condition on %q: operator %q requires a scalar value, got %T", c.Field, c.Operator, c.Value)
		}
	}
	return nil
}

// Validate checks the action's structural invariants.
func (a Action) Validate() error {
	if !a.Type.Valid() {
		return fmt.Errorf("action has unknown type %q", a.Type)
	}
	if a.Subject == "" {
		return fmt.Errorf("action is missing a subject")
	}
	for name, v := range a.Parameters {
		if !IsScalar(v) {
			return fmt.Errorf("action parameter %q must be a scalar, got %T", name, v)
		}
	}
	return nil
}

// Validate checks that the rule carries every required field and that each
// condition and the action are structurally valid. A rule that fails here
// is rejected individually; it never aborts a whole batch.
func (r Rule) Validate() error {
	if r.RuleID == "" {
		return fmt.Errorf("rule is missing rule_id")
	}
	if !r.RuleType.Valid() {
		return fmt.Errorf("rule %s has unknown rule_type %q", r.RuleID, r.RuleType)
	}
	logic := r.ConditionLogic
	if logic == "" {
		logic = LogicAll
	}
	if !logic.Valid() {
		return fmt.Errorf("rule %s has unknown condition_logic %q", r.RuleID, r.ConditionLogic)
	}
	for i, c := range r.Conditions {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("rule %s condition %d: %w", r.RuleID, i, err)
		}
	}
	if err := r.Action.Validate(); err != nil {
		return fmt.Errorf("rule %s: %w", r.RuleID, err)
	}
	return nil
}
