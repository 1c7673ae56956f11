package audit

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"vintageCRM/domain"
)

// Policy carries the audit weighting scheme and the gating threshold.
// The defaults apply globally; deployments override them with a YAML
// policy file (AUDIT_POLICY_FILE).
type Policy struct {
	Baseline        float64
	Threshold       float64
	BudgetTolerance float64
	MonocultureMin  int
	Weights         map[domain.Severity]float64
}

// DefaultPolicy is the documented global default: violations deduct
// 5/15/30/60 points from a 100 baseline, clients gate at 60.
func DefaultPolicy() Policy {
	return Policy{
		Baseline:        100,
		Threshold:       60,
		BudgetTolerance: 0.10,
		MonocultureMin:  3,
		Weights: map[domain.Severity]float64{
			domain.SeverityLow:      5,
			domain.SeverityMedium:   15,
			domain.SeverityHigh:     30,
			domain.SeverityCritical: 60,
		},
	}
}

// Weight returns the deduction for a severity; unknown severities deduct
// nothing rather than guessing.
func (p Policy) Weight(sev domain.Severity) float64 {
	return p.Weights[sev]
}

type policyFile struct {
	Baseline        *float64           `yaml:"baseline"`
	Threshold       *float64           `yaml:"threshold"`
	BudgetTolerance *float64           `yaml:"budget_tolerance"`
	MonocultureMin  *int               `yaml:"monoculture_min"`
	Weights         map[string]float64 `yaml:"weights"`
}

// LoadPolicy reads a YAML policy file over the defaults. An empty path
// returns the defaults untouched; fields absent from the file keep their
// default values.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to read audit policy file: %w", err)
	}

	var file policyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Policy{}, fmt.Errorf("failed to parse audit policy file: %w", err)
	}

	if file.Baseline != nil {
		policy.Baseline = *file.Baseline
	}
	if file.Threshold != nil {
		policy.Threshold = *file.Threshold
	}
	if file.BudgetTolerance != nil {
		policy.BudgetTolerance = *file.BudgetTolerance
	}
	if file.MonocultureMin != nil {
		policy.MonocultureMin = *file.MonocultureMin
	}
	for name, weight := range file.Weights {
		policy.Weights[domain.Severity(name)] = weight
	}

	return policy, nil
}
