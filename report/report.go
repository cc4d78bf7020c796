// Package report wraps the pure comparator output in the envelope the
// review workflow consumes: report identity, generation time, and
// per-rule lawyer review state. Reports are immutable; a review produces
// a new revision, and an edited rule produces a brand-new comparator run.
package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/redlinehq/redline/compare"
	"github.com/redlinehq/redline/rules"
)

// LawyerStatus tracks the review state of one policy rule's verdicts.
type LawyerStatus string

const (
	StatusPending  LawyerStatus = "pending"
	StatusApproved LawyerStatus = "approved"
	StatusDenied   LawyerStatus = "denied"
	StatusEdited   LawyerStatus = "edited"
)

// ReviewAction is a lawyer's decision on one rule.
type ReviewAction string

const (
	ActionApprove ReviewAction = "approve"
	ActionDeny    ReviewAction = "deny"
	ActionEdit    ReviewAction = "edit"
)

// Review is one lawyer decision submitted against a report.
type Review struct {
	RuleID     string               `json:"rule_id"`
	Action     ReviewAction         `json:"action"`
	Notes      string               `json:"notes,omitempty"`
	EditedRule *rules.ExtractedRule `json:"edited_rule,omitempty"`
}

// ReviewState is the recorded review for one policy rule.
type ReviewState struct {
	Status LawyerStatus `json:"status"`
	Notes  string       `json:"notes,omitempty"`
}

// ComplianceReport is one comparator run plus its review state.
type ComplianceReport struct {
	ReportID    string                 `json:"report_id"`
	PolicyName  string                 `json:"policy_name"`
	GeneratedAt time.Time              `json:"generated_at"`
	Revision    int                    `json:"revision"`
	Comparison  *compare.Report        `json:"comparison"`
	Reviews     map[string]ReviewState `json:"reviews"`
}

// New builds a fresh report around a comparison, every rule pending.
func New(policyName string, comparison *compare.Report) *ComplianceReport {
	reviews := make(map[string]ReviewState, len(comparison.PerRule))
	for id := range comparison.PerRule {
		reviews[id] = ReviewState{Status: StatusPending}
	}
	return &ComplianceReport{
		ReportID:    "report_" + uuid.NewString(),
		PolicyName:  policyName,
		GeneratedAt: time.Now().UTC(),
		Revision:    1,
		Comparison:  comparison,
		Reviews:     reviews,
	}
}

// ApplyReviews returns a new revision with the given decisions recorded.
// The receiver is never modified. Unknown rule IDs are rejected; an edit
// only records the decision here — re-classification of the edited rule
// happens through a new comparator invocation.
func (r *ComplianceReport) ApplyReviews(reviews []Review) (*ComplianceReport, error) {
	next := &ComplianceReport{
		ReportID:    r.ReportID,
		PolicyName:  r.PolicyName,
		GeneratedAt: r.GeneratedAt,
		Revision:    r.Revision + 1,
		Comparison:  r.Comparison,
		Reviews:     make(map[string]ReviewState, len(r.Reviews)),
	}
	for id, state := range r.Reviews {
		next.Reviews[id] = state
	}

	for _, review := range reviews {
		if _, ok := next.Reviews[review.RuleID]; !ok {
			return nil, fmt.Errorf("report %s has no rule %s", r.ReportID, review.RuleID)
		}
		var status LawyerStatus
		switch review.Action {
		case ActionApprove:
			status = StatusApproved
		case ActionDeny:
			status = StatusDenied
		case ActionEdit:
			if review.EditedRule == nil {
				return nil, fmt.Errorf("review of rule %s: edit requires an edited_rule", review.RuleID)
			}
			status = StatusEdited
		default:
			return nil, fmt.Errorf("review of rule %s: unknown action %q", review.RuleID, review.Action)
		}
		next.Reviews[review.RuleID] = ReviewState{Status: status, Notes: review.Notes}
	}
	return next, nil
}
