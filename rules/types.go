// Package rules defines the shared rule model for policy-extracted rules
// and legislation rules: conditions, actions, and the enums that gate them.
package rules

// Operator is a condition comparison operator.
type Operator string

const (
	OpEq    Operator = "eq"
	OpNeq   Operator = "neq"
	OpGt    Operator = "gt"
	OpGte   Operator = "gte"
	OpLt    Operator = "lt"
	OpLte   Operator = "lte"
	OpIn    Operator = "in"
	OpNotIn Operator = "not_in"
)

// Valid reports whether op is a known operator.
func (op Operator) Valid() bool {
	switch op {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpIn, OpNotIn:
		return true
	}
	return false
}

// ListValued reports whether the operator requires a list value.
func (op Operator) ListValued() bool {
	return op == OpIn || op == OpNotIn
}

// ActionType describes what a rule does when its conditions hold.
type ActionType string

const (
	ActionGrant   ActionType = "grant"
	ActionDeny    ActionType = "deny"
	ActionRequire ActionType = "require"
	ActionNotify  ActionType = "notify"
)

func (a ActionType) Valid() bool {
	switch a {
	case ActionGrant, ActionDeny, ActionRequire, ActionNotify:
		return true
	}
	return false
}

// RuleType is the coarse category a rule belongs to.
type RuleType string

const (
	TypeEntitlement  RuleType = "entitlement"
	TypeRestriction  RuleType = "restriction"
	TypeEligibility  RuleType = "eligibility"
	TypeTermination  RuleType = "termination"
	TypeLeave        RuleType = "leave"
	TypeCompensation RuleType = "compensation"
)

func (rt RuleType) Valid() bool {
	switch rt {
	case TypeEntitlement, TypeRestriction, TypeEligibility, TypeTermination, TypeLeave, TypeCompensation:
		return true
	}
	return false
}

// ConditionLogic joins a rule's conditions.
type ConditionLogic string

const (
	LogicAll ConditionLogic = "all"
	LogicAny ConditionLogic = "any"
)

func (l ConditionLogic) Valid() bool {
	return l == LogicAll || l == LogicAny
}

// Confidence is the extraction model's self-reported confidence.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Rank orders confidence levels for dedupe tie-breaking. Unknown values
// rank lowest.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	}
	return 0
}

// Jurisdiction is the legal scope of a legislation rule.
type Jurisdiction string

const (
	JurisdictionCA      Jurisdiction = "CA"
	JurisdictionFederal Jurisdiction = "federal"
)

func (j Jurisdiction) Valid() bool {
	return j == JurisdictionCA || j == JurisdictionFederal
}

// Jurisdictions is the fixed comparison order: state law before federal.
// Matching and missing-requirement output follow this order so reports are
// stable across runs.
var Jurisdictions = []Jurisdiction{JurisdictionCA, JurisdictionFederal}

// Condition is a single predicate over a fact field.
// Value is a scalar for comparison operators and a list for in/not_in.
type Condition struct {
	Field    string   `json:"field" yaml:"field"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    any      `json:"value" yaml:"value"`
}

// Action is the benefit or obligation a rule establishes. Subject names
// the topic ("overtime_pay", "layoff_notice"); Parameters carry the
// quantitative terms ("notice_days", "rate_multiplier").
type Action struct {
	Type       ActionType     `json:"type" yaml:"type"`
	Subject    string         `json:"subject" yaml:"subject"`
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Rule is a structured decision rule. The same shape is used for rules
// extracted from policy documents and for rules authored in the
// legislation corpus.
type Rule struct {
	RuleID         string         `json:"rule_id" yaml:"rule_id"`
	RuleType       RuleType       `json:"rule_type" yaml:"rule_type"`
	Conditions     []Condition    `json:"conditions" yaml:"conditions"`
	ConditionLogic ConditionLogic `json:"condition_logic" yaml:"condition_logic"`
	Action         Action         `json:"action" yaml:"action"`
	SourceText     string         `json:"source_text" yaml:"source_text"`
}

// ExtractedRule is a policy rule produced by the extraction stage.
type ExtractedRule struct {
	Rule
	Confidence Confidence `json:"confidence,omitempty"`
}

// Legislation is one statute's rule set for a single jurisdiction.
type Legislation struct {
	Name          string       `json:"name" yaml:"name"`
	Jurisdiction  Jurisdiction `json:"jurisdiction" yaml:"jurisdiction"`
	EffectiveDate string       `json:"effective_date" yaml:"effective_date"`
	SourceURL     string       `json:"source_url" yaml:"source_url"`
	Rules         []Rule       `json:"rules" yaml:"rules"`
}
