// Package compare implements the deterministic policy-vs-legislation
// comparator: matching extracted policy rules to legislation rules by
// canonical topic, classifying each matched pair on its governing
// parameters, detecting legislation obligations with no policy coverage,
// and aggregating everything into a comparison report. Run is pure: the
// same rule set and corpus always produce the same report, byte for byte.
package compare

import "github.com/redlinehq/redline/rules"

// ConflictType is the verdict for one policy-rule/jurisdiction
// comparison. The five core values are wire-exact; the review UI's
// severity sort and badges depend on them. unclassified and
// classification_error are flagged verdicts surfaced for lawyer review.
type ConflictType string

const (
	Contradicts         ConflictType = "contradicts"
	FallsShort          ConflictType = "falls_short"
	Exceeds             ConflictType = "exceeds"
	Missing             ConflictType = "missing"
	Aligned             ConflictType = "aligned"
	Unclassified        ConflictType = "unclassified"
	ClassificationError ConflictType = "classification_error"
)

// severityRank orders verdicts worst to best. Flagged verdicts sit above
// exceeds so an uncomparable pair is never buried under a cosmetic
// difference.
func severityRank(ct ConflictType) int {
	switch ct {
	case Contradicts:
		return 0
	case FallsShort:
		return 1
	case ClassificationError:
		return 2
	case Unclassified:
		return 3
	case Exceeds:
		return 4
	case Missing:
		return 5
	case Aligned:
		return 6
	}
	return 7
}

// Worse returns the more severe of two verdicts.
func Worse(a, b ConflictType) ConflictType {
	if severityRank(b) < severityRank(a) {
		return b
	}
	return a
}

// Detail is one parameter-level finding within a comparison.
type Detail struct {
	Parameter         string       `json:"parameter,omitempty"`
	Type              ConflictType `json:"type"`
	PolicyValue       any          `json:"policy_value"`
	LegislationValue  any          `json:"legislation_value"`
	LegislationRuleID string       `json:"legislation_rule_id,omitempty"`
	Detail            string       `json:"detail"`
}

// Result is the verdict for one policy rule against one jurisdiction's
// legislation for its topic.
type Result struct {
	PolicyRuleID       string             `json:"policy_rule_id"`
	Topic              string             `json:"topic,omitempty"`
	Jurisdiction       rules.Jurisdiction `json:"jurisdiction,omitempty"`
	ConflictType       ConflictType       `json:"conflict_type"`
	LegislationRuleIDs []string           `json:"legislation_rule_ids"`
	Details            []Detail           `json:"details"`
	Explanation        string             `json:"explanation"`
}

// MissingRequirement is a legislation obligation no policy rule covers.
type MissingRequirement struct {
	Topic             string             `json:"topic"`
	Jurisdiction      rules.Jurisdiction `json:"jurisdiction"`
	LegislationRuleID string             `json:"legislation_rule_id"`
	LegislationName   string             `json:"legislation_name"`
	Explanation       string             `json:"explanation"`
}

// Warning surfaces a corpus authoring problem found during matching.
// Ambiguous matches are reported, never silently resolved.
type Warning struct {
	Type               string             `json:"type"`
	PolicyRuleID       string             `json:"policy_rule_id,omitempty"`
	Topic              string             `json:"topic,omitempty"`
	Jurisdiction       rules.Jurisdiction `json:"jurisdiction,omitempty"`
	LegislationRuleIDs []string           `json:"legislation_rule_ids,omitempty"`
	Detail             string             `json:"detail"`
}

// WarningMatchAmbiguity: more than one legislation rule in one
// jurisdiction matched the same topic for one policy rule.
const WarningMatchAmbiguity = "match_ambiguity"

// RejectedRule records a structurally malformed input rule. Rejection is
// scoped to the offending rule; the rest of the batch still runs.
type RejectedRule struct {
	RuleID string `json:"rule_id"`
	Reason string `json:"reason"`
}

// RuleVerdict groups everything known about one policy rule.
type RuleVerdict struct {
	WorstConflict ConflictType `json:"worst_conflict"`
	AllResults    []Result     `json:"all_results"`
}

// Summary rolls the per-rule verdicts up.
type Summary struct {
	Total     int `json:"total"`
	Conflicts int `json:"conflicts"`
	Compliant int `json:"compliant"`
}

// Report is the full comparator output. encoding/json emits map keys in
// sorted order, so marshaling a Report is deterministic.
type Report struct {
	PerRule             map[string]RuleVerdict `json:"per_rule"`
	MissingRequirements []MissingRequirement   `json:"missing_requirements"`
	Warnings            []Warning              `json:"warnings,omitempty"`
	Rejected            []RejectedRule         `json:"rejected,omitempty"`
	Summary             Summary                `json:"summary"`
}
