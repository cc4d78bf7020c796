package rules

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Fingerprint derives a semantic identity for a rule. Two rules extracted
// from different document chunks are duplicates when they share rule_type,
// action type+subject, and the same set of conditions regardless of
// condition order.
func Fingerprint(r Rule) string {
	parts := make([]string, 0, len(r.Conditions))
	for _, c := range r.Conditions {
		val, err := json.Marshal(c.Value)
		if err != nil {
			val = []byte(fmt.Sprintf("%v", c.Value))
		}
		parts = append(parts, fmt.Sprintf("%s:%s:%s", c.Field, c.Operator, val))
	}
	sort.Strings(parts)
	return fmt.Sprintf("%s|%s:%s|%s", r.RuleType, r.Action.Type, r.Action.Subject, strings.Join(parts, "&"))
}

var ruleIDSuffix = regexp.MustCompile(`_\d+$`)

// Deduplicate removes duplicate extracted rules by semantic fingerprint,
// keeping the highest-confidence copy, then renumbers any colliding rule
// IDs so IDs stay unique within the set. Input order is preserved for the
// surviving rules.
func Deduplicate(in []ExtractedRule) []ExtractedRule {
	if len(in) == 0 {
		return in
	}

	seen := make(map[string]int) // fingerprint -> index in unique
	unique := make([]ExtractedRule, 0, len(in))
	for _, r := range in {
		fp := Fingerprint(r.Rule)
		if idx, ok := seen[fp]; ok {
			if r.Confidence.Rank() > unique[idx].Confidence.Rank() {
				unique[idx] = r
			}
			continue
		}
		seen[fp] = len(unique)
		unique = append(unique, r)
	}

	seenIDs := make(map[string]bool, len(unique))
	for i := range unique {
		id := unique[i].RuleID
		if id == "" {
			id = "rule_001"
		}
		if seenIDs[id] {
			base := ruleIDSuffix.ReplaceAllString(id, "")
			for n := 1; ; n++ {
				candidate := fmt.Sprintf("%s_%03d", base, n)
				if !seenIDs[candidate] {
					id = candidate
					break
				}
			}
			unique[i].RuleID = id
		}
		seenIDs[id] = true
	}

	return unique
}
