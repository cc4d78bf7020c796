package compare

import (
	"fmt"
	"sort"

	"github.com/redlinehq/redline/legislation"
	"github.com/redlinehq/redline/rules"
	"github.com/redlinehq/redline/taxonomy"
)

// jurisdictionRank orders jurisdictions for missing-requirement output.
func jurisdictionRank(j rules.Jurisdiction) int {
	for i, known := range rules.Jurisdictions {
		if j == known {
			return i
		}
	}
	return len(rules.Jurisdictions)
}

// findMissing runs the matcher in reverse: every corpus rule that no
// policy rule matches becomes a MissingRequirement. It uses the exact
// same predicate as forward matching, so a legislation rule appears here
// iff Match would never have returned it for any policy rule. Output is
// ordered by (jurisdiction, legislation_rule_id).
func findMissing(policyRules []taxonomy.NormalizedRule, corpus *legislation.Corpus) []MissingRequirement {
	missing := []MissingRequirement{}
	corpus.EachRule(func(topic string, jur rules.Jurisdiction, leg *rules.Legislation, r rules.Rule) {
		for _, p := range policyRules {
			if matches(p, topic, r) {
				return
			}
		}
		missing = append(missing, MissingRequirement{
			Topic:             topic,
			Jurisdiction:      jur,
			LegislationRuleID: r.RuleID,
			LegislationName:   leg.Name,
			Explanation:       fmt.Sprintf("No policy rule covers %q. %s may apply.", topic, leg.Name),
		})
	})

	sort.Slice(missing, func(i, j int) bool {
		ri, rj := jurisdictionRank(missing[i].Jurisdiction), jurisdictionRank(missing[j].Jurisdiction)
		if ri != rj {
			return ri < rj
		}
		return missing[i].LegislationRuleID < missing[j].LegislationRuleID
	})
	return missing
}
