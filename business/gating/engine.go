package gating

import "vintageCRM/domain"

// ReasonBelowThreshold is reported when a client is ineligible without any
// single violation to blame, which only happens when the configured
// threshold exceeds the audit baseline.
const ReasonBelowThreshold = "below audit threshold"

// Engine turns an audit outcome into the per-client outreach verdict. It
// never mutates its inputs; the orchestrator persists the verdicts.
type Engine struct {
	threshold float64
}

func NewEngine(threshold float64) *Engine {
	return &Engine{threshold: threshold}
}

// Decide returns eligibility plus a reason when ineligible. A client is
// eligible iff the audit score meets the threshold and no violation is
// critical. The reason is the most explanatory violation: highest severity
// first, ties resolved by the lexicographically smallest rule code.
func (e *Engine) Decide(score float64, violations []domain.AuditViolation) (bool, string) {
	hasCritical := false
	for _, v := range violations {
		if v.Severity == domain.SeverityCritical {
			hasCritical = true
			break
		}
	}

	if score >= e.threshold && !hasCritical {
		return true, ""
	}

	if len(violations) == 0 {
		return false, ReasonBelowThreshold
	}

	worst := violations[0]
	for _, v := range violations[1:] {
		if v.Severity.Rank() > worst.Severity.Rank() {
			worst = v
			continue
		}
		if v.Severity.Rank() == worst.Severity.Rank() && v.RuleCode < worst.RuleCode {
			worst = v
		}
	}

	return false, worst.RuleCode
}
