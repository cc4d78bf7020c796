package compare

import (
	"fmt"
	"strings"

	"github.com/redlinehq/redline/legislation"
	"github.com/redlinehq/redline/rules"
	"github.com/redlinehq/redline/taxonomy"
)

// Run compares a full extracted rule set against the legislation corpus
// and aggregates the verdicts. It is pure and synchronous: no I/O, no
// shared state, and deterministic output for identical input. Each policy
// rule is classified independently; one malformed or uncomparable rule
// never blocks the rest of the report.
func Run(ruleset []rules.ExtractedRule, corpus *legislation.Corpus, tax *taxonomy.Taxonomy) *Report {
	report := &Report{
		PerRule:             make(map[string]RuleVerdict, len(ruleset)),
		MissingRequirements: []MissingRequirement{},
	}

	var normalized []taxonomy.NormalizedRule
	for _, r := range ruleset {
		if err := r.Validate(); err != nil {
			report.Rejected = append(report.Rejected, RejectedRule{RuleID: r.RuleID, Reason: err.Error()})
			continue
		}
		normalized = append(normalized, tax.Normalize(r))
	}

	for _, policy := range normalized {
		verdict := classifyRule(policy, corpus, tax, report)
		report.PerRule[policy.RuleID] = verdict

		switch verdict.WorstConflict {
		case Contradicts, FallsShort:
			report.Summary.Conflicts++
		case Aligned:
			report.Summary.Compliant++
		}
	}
	report.Summary.Total = len(report.PerRule)

	report.MissingRequirements = findMissing(normalized, corpus)
	return report
}

// classifyRule produces the per-jurisdiction results for one policy rule
// and folds them into a verdict. Warnings discovered along the way are
// attached to the report.
func classifyRule(policy taxonomy.NormalizedRule, corpus *legislation.Corpus, tax *taxonomy.Taxonomy, report *Report) RuleVerdict {
	if policy.Unmapped() {
		return RuleVerdict{
			WorstConflict: Unclassified,
			AllResults: []Result{{
				PolicyRuleID:       policy.RuleID,
				ConflictType:       Unclassified,
				LegislationRuleIDs: []string{},
				Details:            []Detail{},
				Explanation:        fmt.Sprintf("Could not classify subject %q into a known topic; no legislation match attempted.", policy.Action.Subject),
			}},
		}
	}

	topic, ok := tax.Topic(policy.Topic)
	if !ok {
		// ClassifyTopic only returns declared topics; this is unreachable
		// unless the taxonomy table itself is inconsistent.
		return RuleVerdict{WorstConflict: Unclassified}
	}

	candidates := Match(policy, corpus)
	byJur := make(map[rules.Jurisdiction][]Candidate)
	for _, c := range candidates {
		byJur[c.Jurisdiction] = append(byJur[c.Jurisdiction], c)
	}

	verdict := RuleVerdict{WorstConflict: Aligned}
	for _, jur := range rules.Jurisdictions {
		matched := byJur[jur]
		if len(matched) == 0 {
			verdict.AllResults = append(verdict.AllResults, noFloorResult(policy, jur))
			continue
		}
		if len(matched) > 1 {
			ids := make([]string, len(matched))
			for i, c := range matched {
				ids[i] = c.Rule.RuleID
			}
			report.Warnings = append(report.Warnings, Warning{
				Type:               WarningMatchAmbiguity,
				PolicyRuleID:       policy.RuleID,
				Topic:              policy.Topic,
				Jurisdiction:       jur,
				LegislationRuleIDs: ids,
				Detail:             fmt.Sprintf("%d %s legislation rules match topic %q; classified against all of them.", len(matched), jur, policy.Topic),
			})
		}

		result := Result{
			PolicyRuleID:       policy.RuleID,
			Topic:              policy.Topic,
			Jurisdiction:       jur,
			ConflictType:       Aligned,
			LegislationRuleIDs: []string{},
			Details:            []Detail{},
		}
		for _, c := range matched {
			pairType, details := classifyPair(policy, c.Rule, topic)
			result.LegislationRuleIDs = append(result.LegislationRuleIDs, c.Rule.RuleID)
			result.Details = append(result.Details, details...)
			result.ConflictType = Worse(result.ConflictType, pairType)
		}
		result.Explanation = explain(result)
		verdict.AllResults = append(verdict.AllResults, result)
	}

	for _, r := range verdict.AllResults {
		verdict.WorstConflict = Worse(verdict.WorstConflict, r.ConflictType)
	}
	return verdict
}

// noFloorResult covers a (topic, jurisdiction) with no matching
// legislation. A policy providing anything against a non-existent floor
// is reported aligned, not flagged: there is nothing to fall below.
func noFloorResult(policy taxonomy.NormalizedRule, jur rules.Jurisdiction) Result {
	return Result{
		PolicyRuleID:       policy.RuleID,
		Topic:              policy.Topic,
		Jurisdiction:       jur,
		ConflictType:       Aligned,
		LegislationRuleIDs: []string{},
		Details:            []Detail{},
		Explanation:        fmt.Sprintf("No %s legislation for topic %q; the policy exceeds a non-existent floor.", jur, policy.Topic),
	}
}

// explain renders a one-line summary for a classified result.
func explain(r Result) string {
	if len(r.Details) == 0 {
		return fmt.Sprintf("Policy rule is %s with %s legislation for topic %q.", r.ConflictType, r.Jurisdiction, r.Topic)
	}
	parts := make([]string, 0, len(r.Details))
	for _, d := range r.Details {
		parts = append(parts, d.Detail)
	}
	return strings.Join(parts, " ")
}
