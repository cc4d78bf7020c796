package compare

import (
	"github.com/redlinehq/redline/legislation"
	"github.com/redlinehq/redline/rules"
	"github.com/redlinehq/redline/taxonomy"
)

// Candidate is one legislation rule matched to a policy rule.
type Candidate struct {
	Jurisdiction    rules.Jurisdiction
	LegislationName string
	Rule            rules.Rule
}

// matches is the single matching predicate, shared by forward matching
// (policy -> legislation) and the reverse sweep the missing-requirement
// detector runs. Keeping one predicate guarantees the two directions
// cannot diverge.
func matches(policy taxonomy.NormalizedRule, topic string, legRule rules.Rule) bool {
	if policy.Unmapped() {
		return false
	}
	return policy.Topic == topic && policy.RuleType == legRule.RuleType
}

// Match returns the candidate legislation rules for a policy rule across
// all jurisdictions, in the fixed jurisdiction order and then corpus
// declaration order. An unmapped policy rule matches nothing: the
// comparator fails closed rather than guessing a topic.
func Match(policy taxonomy.NormalizedRule, corpus *legislation.Corpus) []Candidate {
	if policy.Unmapped() {
		return nil
	}
	var out []Candidate
	for _, jur := range rules.Jurisdictions {
		leg, ok := corpus.Get(policy.Topic, jur)
		if !ok {
			continue
		}
		for _, r := range leg.Rules {
			if matches(policy, policy.Topic, r) {
				out = append(out, Candidate{Jurisdiction: jur, LegislationName: leg.Name, Rule: r})
			}
		}
	}
	return out
}
