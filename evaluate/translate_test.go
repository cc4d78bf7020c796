package evaluate

import (
	"strings"
	"testing"

	"github.com/redlinehq/redline/rules"
)

func TestTranslateOperators(t *testing.T) {
	testCases := []struct {
		name      string
		condition rules.Condition
		want      string
	}{
		{
			"eq string",
			rules.Condition{Field: "employee.classification", Operator: rules.OpEq, Value: "non_exempt"},
			`employee.classification == "non_exempt"`,
		},
		{
			"neq string",
			rules.Condition{Field: "termination.type", Operator: rules.OpNeq, Value: "voluntary"},
			`termination.type != "voluntary"`,
		},
		{
			"gt int",
			rules.Condition{Field: "employee.hours_worked_daily", Operator: rules.OpGt, Value: 8},
			"employee.hours_worked_daily > 8",
		},
		{
			"gte int",
			rules.Condition{Field: "employer.employee_count", Operator: rules.OpGte, Value: 75},
			"employer.employee_count >= 75",
		},
		{
			"lt int",
			rules.Condition{Field: "employee.tenure_months", Operator: rules.OpLt, Value: 12},
			"employee.tenure_months < 12",
		},
		{
			"lte float",
			rules.Condition{Field: "shift.duration_hours", Operator: rules.OpLte, Value: 7.5},
			"shift.duration_hours <= 7.5",
		},
		{
			"whole float renders as int",
			rules.Condition{Field: "employee.hours_worked_weekly", Operator: rules.OpGt, Value: 40.0},
			"employee.hours_worked_weekly > 40",
		},
		{
			"eq bool",
			rules.Condition{Field: "employee.sdi_contributor", Operator: rules.OpEq, Value: true},
			"employee.sdi_contributor == true",
		},
		{
			"in list",
			rules.Condition{Field: "layoff.type", Operator: rules.OpIn, Value: []any{"mass_layoff", "plant_closure"}},
			`layoff.type in ["mass_layoff", "plant_closure"]`,
		},
		{
			"not_in list",
			rules.Condition{Field: "leave.type", Operator: rules.OpNotIn, Value: []string{"parental"}},
			`!(leave.type in ["parental"])`,
		},
		{
			"break namespace renamed",
			rules.Condition{Field: "break.duration_minutes", Operator: rules.OpGte, Value: 30},
			"breaks.duration_minutes >= 30",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := translateCondition(tc.condition)
			if err != nil {
				t.Fatalf("translateCondition() failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("translateCondition() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTranslateJoinsByConditionLogic(t *testing.T) {
	r := rules.Rule{
		RuleID: "rule_001",
		Conditions: []rules.Condition{
			{Field: "employee.classification", Operator: rules.OpEq, Value: "non_exempt"},
			{Field: "employee.hours_worked_daily", Operator: rules.OpGt, Value: 8},
		},
	}

	got, err := Translate(r)
	if err != nil {
		t.Fatalf("Translate() failed: %v", err)
	}
	if !strings.Contains(got, " && ") {
		t.Errorf("default logic should join with &&, got %q", got)
	}

	r.ConditionLogic = rules.LogicAny
	got, err = Translate(r)
	if err != nil {
		t.Fatalf("Translate() failed: %v", err)
	}
	if !strings.Contains(got, " || ") {
		t.Errorf("any logic should join with ||, got %q", got)
	}
}

func TestTranslateEmptyConditionsAlwaysApply(t *testing.T) {
	got, err := Translate(rules.Rule{RuleID: "rule_001"})
	if err != nil {
		t.Fatalf("Translate() failed: %v", err)
	}
	if got != "true" {
		t.Errorf("Translate() = %q, want true", got)
	}
}

func TestTranslateErrors(t *testing.T) {
	testCases := []struct {
		name      string
		condition rules.Condition
	}{
		{"flat field name", rules.Condition{Field: "tenure", Operator: rules.OpGt, Value: 6}},
		{"unknown namespace", rules.Condition{Field: "vehicle.wheel_count", Operator: rules.OpEq, Value: 4}},
		{"list operator with scalar", rules.Condition{Field: "leave.type", Operator: rules.OpIn, Value: "family"}},
		{"unknown operator", rules.Condition{Field: "leave.type", Operator: "around", Value: "family"}},
		{"unsupported literal", rules.Condition{Field: "leave.type", Operator: rules.OpEq, Value: map[string]any{}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := translateCondition(tc.condition); err == nil {
				t.Error("translateCondition() accepted an untranslatable condition")
			}
		})
	}
}
