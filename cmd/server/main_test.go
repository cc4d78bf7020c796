package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/redlinehq/redline/report"
	"github.com/redlinehq/redline/rules"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	server, err := NewServer()
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}
	return server
}

func doJSON(t *testing.T, server *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, w.Body.String())
	}
	return out
}

func sampleCompareRequest() CompareRequest {
	return CompareRequest{
		PolicyName: "Acme Employee Handbook",
		Rules: []rules.ExtractedRule{
			{
				Rule: rules.Rule{
					RuleID:         "policy_001",
					RuleType:       rules.TypeCompensation,
					ConditionLogic: rules.LogicAll,
					Conditions: []rules.Condition{
						{Field: "employee.classification", Operator: rules.OpEq, Value: "non_exempt"},
						{Field: "employee.hours_worked_weekly", Operator: rules.OpGt, Value: 40},
					},
					Action: rules.Action{
						Type:       rules.ActionRequire,
						Subject:    "overtime_pay",
						Parameters: map[string]any{"rate_multiplier": 1.5},
					},
					SourceText: "Overtime is paid at 1.5x after 40 hours per week.",
				},
				Confidence: rules.ConfidenceHigh,
			},
		},
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/api/v1/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decode[HealthResponse](t, w)
	if resp.Status != "healthy" || resp.Topics == 0 {
		t.Errorf("health = %+v", resp)
	}
}

func TestLegislationEndpoint(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/api/v1/legislation", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decode[LegislationListResponse](t, w)
	if len(resp.Legislation) == 0 {
		t.Fatal("no legislation listed")
	}
	for _, leg := range resp.Legislation {
		if leg.Topic == "" || leg.Name == "" {
			t.Errorf("incomplete entry: %+v", leg)
		}
	}
}

func TestCompareEndpoint(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/v1/compare", sampleCompareRequest())
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", w.Code, w.Body.String())
	}
	rep := decode[report.ComplianceReport](t, w)
	if rep.ReportID == "" || rep.Revision != 1 {
		t.Errorf("report envelope = %+v", rep)
	}
	verdict, ok := rep.Comparison.PerRule["policy_001"]
	if !ok {
		t.Fatal("policy_001 missing from comparison")
	}
	// Weekly-only overtime falls short of CA's daily rule.
	if verdict.WorstConflict != "falls_short" {
		t.Errorf("WorstConflict = %s, want falls_short", verdict.WorstConflict)
	}
	if rep.Reviews["policy_001"].Status != report.StatusPending {
		t.Errorf("review status = %q, want pending", rep.Reviews["policy_001"].Status)
	}
}

func TestCompareEndpointValidation(t *testing.T) {
	server := newTestServer(t)

	testCases := []struct {
		name string
		body any
	}{
		{"missing policy name", CompareRequest{Rules: sampleCompareRequest().Rules}},
		{"missing rules", CompareRequest{PolicyName: "Acme"}},
		{"malformed body", "not json at all"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var w *httptest.ResponseRecorder
			if s, ok := tc.body.(string); ok {
				req := httptest.NewRequest(http.MethodPost, "/api/v1/compare", bytes.NewBufferString(s))
				w = httptest.NewRecorder()
				server.ServeHTTP(w, req)
			} else {
				w = doJSON(t, server, http.MethodPost, "/api/v1/compare", tc.body)
			}
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestCompareEndpointRejectsOnlyMalformedRules(t *testing.T) {
	server := newTestServer(t)

	req := sampleCompareRequest()
	bad := req.Rules[0]
	bad.RuleID = "policy_bad"
	bad.Conditions = []rules.Condition{{Field: "employee.hours_worked_daily", Operator: "around", Value: 8}}
	req.Rules = append(req.Rules, bad)

	w := doJSON(t, server, http.MethodPost, "/api/v1/compare", req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (per-rule rejection must not fail the batch)", w.Code)
	}
	rep := decode[report.ComplianceReport](t, w)
	if len(rep.Comparison.Rejected) != 1 || rep.Comparison.Rejected[0].RuleID != "policy_bad" {
		t.Errorf("Rejected = %+v", rep.Comparison.Rejected)
	}
	if _, ok := rep.Comparison.PerRule["policy_001"]; !ok {
		t.Error("valid rule missing from comparison")
	}
}

func TestReportLifecycle(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/v1/compare", sampleCompareRequest())
	if w.Code != http.StatusCreated {
		t.Fatalf("compare status = %d", w.Code)
	}
	created := decode[report.ComplianceReport](t, w)

	w = doJSON(t, server, http.MethodGet, "/api/v1/reports/"+created.ReportID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}

	w = doJSON(t, server, http.MethodGet, "/api/v1/reports/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	list := decode[ReportListResponse](t, w)
	if len(list.Reports) != 1 || list.Reports[0].ReportID != created.ReportID {
		t.Errorf("list = %+v", list.Reports)
	}

	w = doJSON(t, server, http.MethodPost, "/api/v1/reports/"+created.ReportID+"/review", ReviewRequest{
		Reviews: []report.Review{{RuleID: "policy_001", Action: report.ActionApprove, Notes: "checked"}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("review status = %d (body %s)", w.Code, w.Body.String())
	}
	reviewed := decode[ReviewResponse](t, w)
	if reviewed.Revision != 2 || reviewed.ReviewedCount != 1 {
		t.Errorf("review response = %+v", reviewed)
	}

	w = doJSON(t, server, http.MethodGet, "/api/v1/reports/"+created.ReportID, nil)
	latest := decode[report.ComplianceReport](t, w)
	if latest.Revision != 2 {
		t.Errorf("stored revision = %d, want 2", latest.Revision)
	}
	if latest.Reviews["policy_001"].Status != report.StatusApproved {
		t.Errorf("review status = %q, want approved", latest.Reviews["policy_001"].Status)
	}
}

func TestReportNotFound(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/api/v1/reports/report_ghost", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}

	w = doJSON(t, server, http.MethodPost, "/api/v1/reports/report_ghost/review", ReviewRequest{
		Reviews: []report.Review{{RuleID: "policy_001", Action: report.ActionApprove}},
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("review status = %d, want 404", w.Code)
	}
}

func TestEvaluateEndpoint(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/v1/evaluate", EvaluateRequest{
		Facts: map[string]any{
			"employee": map[string]any{"classification": "non_exempt", "hours_worked_daily": 10},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}
	resp := decode[EvaluateResponse](t, w)
	if len(resp.Results) == 0 {
		t.Fatal("no evaluation results")
	}

	var overtimeMatched bool
	for _, r := range resp.Results {
		if r.RuleID == "ca_overtime_001" && r.Matched {
			overtimeMatched = true
		}
	}
	if !overtimeMatched {
		t.Error("ca_overtime_001 should match a non-exempt 10-hour day")
	}

	w = doJSON(t, server, http.MethodPost, "/api/v1/evaluate", EvaluateRequest{Facts: nil})
	if w.Code != http.StatusBadRequest {
		t.Errorf("nil facts status = %d, want 400", w.Code)
	}
}

func TestEvaluateEndpointRuleFilter(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/v1/evaluate", EvaluateRequest{
		Facts:   map[string]any{"employee": map[string]any{"classification": "exempt"}},
		RuleIDs: []string{"ca_overtime_001"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[EvaluateResponse](t, w)
	if len(resp.Results) != 1 || resp.Results[0].RuleID != "ca_overtime_001" {
		t.Errorf("results = %+v", resp.Results)
	}

	w = doJSON(t, server, http.MethodPost, "/api/v1/evaluate", EvaluateRequest{
		Facts:   map[string]any{},
		RuleIDs: []string{"ghost"},
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown rule status = %d, want 404", w.Code)
	}
}
