// Package evaluate answers "which rules apply to this employee": it
// compiles structured rule conditions into CEL programs and evaluates
// them against fact maps keyed by namespace (employee, employer, ...).
package evaluate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/redlinehq/redline/rules"
)

// Namespaces are the top-level fact objects rules may reference.
var Namespaces = []string{"employee", "employer", "termination", "layoff", "leave", "breaks", "shift"}

// break is a CEL reserved word, so break.* fields evaluate under the
// breaks namespace. Fact maps must use the renamed key as well.
var namespaceRenames = map[string]string{
	"break": "breaks",
}

// Translate renders a rule's conditions as a single CEL expression,
// joined per the rule's condition logic. A rule without conditions always
// applies.
func Translate(r rules.Rule) (string, error) {
	if len(r.Conditions) == 0 {
		return "true", nil
	}

	terms := make([]string, 0, len(r.Conditions))
	for _, c := range r.Conditions {
		term, err := translateCondition(c)
		if err != nil {
			return "", fmt.Errorf("rule %s: %w", r.RuleID, err)
		}
		terms = append(terms, term)
	}

	join := " && "
	if r.ConditionLogic == rules.LogicAny {
		join = " || "
	}
	return strings.Join(terms, join), nil
}

func translateCondition(c rules.Condition) (string, error) {
	ref, err := fieldRef(c.Field)
	if err != nil {
		return "", err
	}

	switch c.Operator {
	case rules.OpEq:
		return binary(ref, "==", c.Value)
	case rules.OpNeq:
		return binary(ref, "!=", c.Value)
	case rules.OpGt:
		return binary(ref, ">", c.Value)
	case rules.OpGte:
		return binary(ref, ">=", c.Value)
	case rules.OpLt:
		return binary(ref, "<", c.Value)
	case rules.OpLte:
		return binary(ref, "<=", c.Value)
	case rules.OpIn, rules.OpNotIn:
		items := rules.ListValues(c.Value)
		if items == nil {
			return "", fmt.Errorf("operator %s on %s requires a list value", c.Operator, c.Field)
		}
		lits := make([]string, 0, len(items))
		for _, item := range items {
			lit, err := literal(item)
			if err != nil {
				return "", err
			}
			lits = append(lits, lit)
		}
		expr := fmt.Sprintf("%s in [%s]", ref, strings.Join(lits, ", "))
		if c.Operator == rules.OpNotIn {
			expr = "!(" + expr + ")"
		}
		return expr, nil
	}
	return "", fmt.Errorf("unknown operator %q on %s", c.Operator, c.Field)
}

func binary(ref, op string, value any) (string, error) {
	lit, err := literal(value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s", ref, op, lit), nil
}

// fieldRef maps a canonical field name ("employee.tenure_months") onto a
// CEL reference, applying namespace renames.
func fieldRef(field string) (string, error) {
	ns, attr, ok := strings.Cut(field, ".")
	if !ok || ns == "" || attr == "" {
		return "", fmt.Errorf("field %q is not namespace.attribute shaped", field)
	}
	if renamed, ok := namespaceRenames[ns]; ok {
		ns = renamed
	}
	known := false
	for _, n := range Namespaces {
		if n == ns {
			known = true
			break
		}
	}
	if !known {
		return "", fmt.Errorf("field %q uses unknown namespace %q", field, ns)
	}
	return ns + "." + attr, nil
}

func literal(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strconv.Quote(val), nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10), nil
		}
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	}
	return "", fmt.Errorf("unsupported literal type %T", v)
}
