package taxonomy

import "github.com/redlinehq/redline/rules"

// NormalizedRule is an extracted rule with its condition fields mapped
// onto the canonical vocabulary and its topic resolved. Fields the
// taxonomy does not know are kept as-is and listed in UnmappedFields;
// a rule whose subject matches no topic has Topic == "" and fails closed
// downstream (no legislation match) instead of mis-matching.
type NormalizedRule struct {
	rules.ExtractedRule
	Topic          string
	UnmappedFields []string
}

// Unmapped reports whether the rule could not be classified into a topic.
func (n NormalizedRule) Unmapped() bool {
	return n.Topic == ""
}

// Normalize maps one extracted rule onto the canonical taxonomy. It is a
// pure function: the input rule is never modified, and the same input
// always yields the same output.
func (t *Taxonomy) Normalize(rule rules.ExtractedRule) NormalizedRule {
	out := NormalizedRule{ExtractedRule: rule}
	out.Conditions = make([]rules.Condition, len(rule.Conditions))
	copy(out.Conditions, rule.Conditions)

	for i, c := range out.Conditions {
		canonical, ok := t.CanonicalField(c.Field)
		if !ok {
			out.UnmappedFields = append(out.UnmappedFields, c.Field)
			continue
		}
		out.Conditions[i].Field = canonical
	}

	out.Topic = t.ClassifyTopic(rule.Action.Subject, string(rule.RuleType))
	return out
}

// NormalizeAll normalizes a full extracted rule set, preserving order.
func (t *Taxonomy) NormalizeAll(ruleset []rules.ExtractedRule) []NormalizedRule {
	out := make([]NormalizedRule, 0, len(ruleset))
	for _, r := range ruleset {
		out = append(out, t.Normalize(r))
	}
	return out
}
