package compare

import (
	"fmt"

	"github.com/redlinehq/redline/rules"
	"github.com/redlinehq/redline/taxonomy"
)

// opposed reports a direct binary contradiction between action types:
// one side denies what the other grants or requires.
func opposed(policy, leg rules.ActionType) bool {
	if policy == rules.ActionDeny && (leg == rules.ActionGrant || leg == rules.ActionRequire) {
		return true
	}
	if leg == rules.ActionDeny && (policy == rules.ActionGrant || policy == rules.ActionRequire) {
		return true
	}
	return false
}

// actionParam reads a named action parameter, if present.
func actionParam(r rules.Rule, name string) (any, bool) {
	v, ok := r.Action.Parameters[name]
	return v, ok
}

// conditionThreshold reads the threshold value of the first condition on
// the named canonical field, if present.
func conditionThreshold(r rules.Rule, field string) (any, bool) {
	for _, c := range r.Conditions {
		if c.Field == field {
			return c.Value, true
		}
	}
	return nil, false
}

// classifyPair compares one (policy rule, legislation rule) pair known to
// share a topic. The binary action check runs first and short-circuits;
// otherwise every governing parameter the taxonomy declares for the topic
// is evaluated independently and the single worst verdict wins.
func classifyPair(policy taxonomy.NormalizedRule, leg rules.Rule, topic *taxonomy.Topic) (ConflictType, []Detail) {
	if opposed(policy.Action.Type, leg.Action.Type) {
		return Contradicts, []Detail{{
			Parameter:         "action_type",
			Type:              Contradicts,
			PolicyValue:       string(policy.Action.Type),
			LegislationValue:  string(leg.Action.Type),
			LegislationRuleID: leg.RuleID,
			Detail:            fmt.Sprintf("Policy action is %q but legislation action is %q for subject %q.", policy.Action.Type, leg.Action.Type, leg.Action.Subject),
		}}
	}

	verdict := Aligned
	var details []Detail
	evaluated := 0

	for _, param := range topic.Parameters {
		var legRaw, policyRaw any
		var legHas, policyHas bool
		switch param.Source {
		case taxonomy.SourceAction:
			legRaw, legHas = actionParam(leg, param.Name)
			policyRaw, policyHas = actionParam(policy.Rule, param.Name)
		case taxonomy.SourceCondition:
			legRaw, legHas = conditionThreshold(leg, param.Name)
			policyRaw, policyHas = conditionThreshold(policy.Rule, param.Name)
		}

		// A parameter the legislation rule does not set is not governing
		// for this pair.
		if !legHas {
			continue
		}
		evaluated++

		legVal, legOK := rules.Number(legRaw)
		if !legOK {
			details = append(details, Detail{
				Parameter:         param.Name,
				Type:              ClassificationError,
				PolicyValue:       policyRaw,
				LegislationValue:  legRaw,
				LegislationRuleID: leg.RuleID,
				Detail:            fmt.Sprintf("Legislation value for %s is not numeric (%v); pair needs review.", param.Name, legRaw),
			})
			verdict = Worse(verdict, ClassificationError)
			continue
		}

		if !policyHas {
			// The legislation declares this parameter governing and the
			// policy provides nothing for it: the policy offers no
			// protection on this axis (e.g. a weekly-only overtime rule
			// against a daily-hours law).
			details = append(details, Detail{
				Parameter:         param.Name,
				Type:              FallsShort,
				PolicyValue:       nil,
				LegislationValue:  legVal,
				LegislationRuleID: leg.RuleID,
				Detail:            fmt.Sprintf("Policy sets no %s; legislation of %q sets %v.", param.Name, leg.Action.Subject, legVal),
			})
			verdict = Worse(verdict, FallsShort)
			continue
		}

		policyVal, policyOK := rules.Number(policyRaw)
		if !policyOK {
			details = append(details, Detail{
				Parameter:         param.Name,
				Type:              ClassificationError,
				PolicyValue:       policyRaw,
				LegislationValue:  legVal,
				LegislationRuleID: leg.RuleID,
				Detail:            fmt.Sprintf("Policy value for %s is not numeric (%v); pair needs review.", param.Name, policyRaw),
			})
			verdict = Worse(verdict, ClassificationError)
			continue
		}

		d := compareValues(param, policyVal, legVal, leg)
		if d == nil {
			continue // equal: aligned, nothing to report
		}
		details = append(details, *d)
		verdict = Worse(verdict, d.Type)
	}

	if evaluated == 0 {
		return ClassificationError, []Detail{{
			Type:              ClassificationError,
			PolicyValue:       nil,
			LegislationValue:  nil,
			LegislationRuleID: leg.RuleID,
			Detail:            "No governing parameter could be evaluated for this pair; flagged for review.",
		}}
	}
	return verdict, details
}

// compareValues applies the parameter's protective direction. A shortfall
// on an action-side parameter of a statutory mandate is a direct
// contradiction (the policy provides less than the law orders); a
// shortfall on a condition-side trigger threshold means the policy covers
// fewer situations and falls short.
func compareValues(param taxonomy.Parameter, policyVal, legVal float64, leg rules.Rule) *Detail {
	if policyVal == legVal {
		return nil
	}

	policyBetter := policyVal > legVal
	if param.Direction == taxonomy.LowerMoreProtective {
		policyBetter = policyVal < legVal
	}

	if policyBetter {
		return &Detail{
			Parameter:         param.Name,
			Type:              Exceeds,
			PolicyValue:       policyVal,
			LegislationValue:  legVal,
			LegislationRuleID: leg.RuleID,
			Detail:            fmt.Sprintf("Policy sets %s=%v, more protective than the legislation's %v.", param.Name, policyVal, legVal),
		}
	}

	shortfall := FallsShort
	if param.Source == taxonomy.SourceAction && leg.Action.Type == rules.ActionRequire {
		shortfall = Contradicts
	}
	return &Detail{
		Parameter:         param.Name,
		Type:              shortfall,
		PolicyValue:       policyVal,
		LegislationValue:  legVal,
		LegislationRuleID: leg.RuleID,
		Detail:            fmt.Sprintf("Policy sets %s=%v, less protective than the legislation's %v.", param.Name, policyVal, legVal),
	}
}
