package gating

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vintageCRM/domain"
)

func TestCriticalViolationAlwaysGates(t *testing.T) {
	violations := []domain.AuditViolation{
		{RuleCode: "REC_DUP_RECENT_PURCHASE", Severity: domain.SeverityCritical},
	}

	eligible, reason := NewEngine(60).Decide(100, violations)
	assert.False(t, eligible)
	assert.Equal(t, "REC_DUP_RECENT_PURCHASE", reason)
}

func TestThresholdBoundary(t *testing.T) {
	engine := NewEngine(60)

	eligible, reason := engine.Decide(60, nil)
	assert.True(t, eligible)
	assert.Empty(t, reason)

	eligible, _ = engine.Decide(59.999, nil)
	assert.False(t, eligible)
}

func TestReasonPicksHighestSeverity(t *testing.T) {
	violations := []domain.AuditViolation{
		{RuleCode: "REC_SCENARIO_MONOCULTURE", Severity: domain.SeverityMedium},
		{RuleCode: "REC_RANK_ORDER", Severity: domain.SeverityHigh},
	}

	eligible, reason := NewEngine(60).Decide(55, violations)
	assert.False(t, eligible)
	assert.Equal(t, "REC_RANK_ORDER", reason)
}

func TestReasonTieBreaksByRuleCode(t *testing.T) {
	violations := []domain.AuditViolation{
		{RuleCode: "REC_SCORE_BOUNDS", Severity: domain.SeverityHigh},
		{RuleCode: "REC_RANK_ORDER", Severity: domain.SeverityHigh},
	}

	_, reason := NewEngine(60).Decide(40, violations)
	assert.Equal(t, "REC_RANK_ORDER", reason)
}

func TestBelowThresholdWithoutViolations(t *testing.T) {
	// Only reachable with a threshold above the audit baseline.
	eligible, reason := NewEngine(110).Decide(100, nil)
	assert.False(t, eligible)
	assert.Equal(t, ReasonBelowThreshold, reason)
}

func TestEligibleWithNonCriticalViolations(t *testing.T) {
	violations := []domain.AuditViolation{
		{RuleCode: "REC_SCENARIO_MONOCULTURE", Severity: domain.SeverityMedium},
	}

	eligible, reason := NewEngine(60).Decide(85, violations)
	assert.True(t, eligible)
	assert.Empty(t, reason)
}
