package main

import (
	"time"

	"github.com/redlinehq/redline/compare"
	"github.com/redlinehq/redline/evaluate"
	"github.com/redlinehq/redline/report"
	"github.com/redlinehq/redline/rules"
)

// CompareRequest is the request body for running a comparison.
type CompareRequest struct {
	PolicyName string                `json:"policy_name" example:"Acme Employee Handbook 2025"`
	Rules      []rules.ExtractedRule `json:"rules"`
}

// EvaluateRequest asks which legislation rules apply to a fact set.
// RuleIDs narrows evaluation to specific rules; empty means all.
type EvaluateRequest struct {
	Facts   map[string]any `json:"facts"`
	RuleIDs []string       `json:"rule_ids,omitempty" example:"ca_warn_001,ca_ot_001"`
}

// EvaluateResponse is the response for rule evaluation.
type EvaluateResponse struct {
	Results        []*evaluate.Result `json:"results"`
	EvaluationTime string             `json:"evaluation_time" example:"1.2ms"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"healthy"`
	Topics int    `json:"topics" example:"5"`
}

// LegislationSummary describes one loaded statute without its rules.
type LegislationSummary struct {
	Topic         string             `json:"topic" example:"overtime"`
	Jurisdiction  rules.Jurisdiction `json:"jurisdiction" example:"CA"`
	Name          string             `json:"name" example:"California Labor Code Section 510"`
	EffectiveDate string             `json:"effective_date" example:"2000-01-01"`
	SourceURL     string             `json:"source_url,omitempty"`
	RuleCount     int                `json:"rule_count" example:"1"`
}

// LegislationListResponse lists every loaded statute.
type LegislationListResponse struct {
	Legislation []LegislationSummary `json:"legislation"`
}

// ReportSummary is the list view of a stored report: identity and
// verdict counts without the per-rule detail.
type ReportSummary struct {
	ReportID    string          `json:"report_id" example:"report_123e4567-e89b-12d3-a456-426614174000"`
	PolicyName  string          `json:"policy_name" example:"Acme Employee Handbook 2025"`
	GeneratedAt time.Time       `json:"generated_at" example:"2025-06-15T10:30:00Z"`
	Revision    int             `json:"revision" example:"1"`
	Summary     compare.Summary `json:"summary"`
}

// ReportListResponse lists stored reports.
type ReportListResponse struct {
	Reports []ReportSummary `json:"reports"`
}

// ReviewRequest submits lawyer decisions against a report.
type ReviewRequest struct {
	Reviews []report.Review `json:"reviews"`
}

// ReviewResponse confirms a recorded review revision.
type ReviewResponse struct {
	ReportID      string `json:"report_id" example:"report_123e4567-e89b-12d3-a456-426614174000"`
	Revision      int    `json:"revision" example:"2"`
	ReviewedCount int    `json:"reviewed_count" example:"3"`
}
