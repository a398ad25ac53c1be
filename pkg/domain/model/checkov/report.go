package checkov

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/complior/pkg/domain/model"
	"github.com/secmon-lab/complior/pkg/domain/types"
)

// Report is the JSON output of the external compliance rule engine.
type Report struct {
	CheckType string  `json:"check_type,omitempty"`
	Results   Results `json:"results"`
}

type Results struct {
	FailedChecks []Check `json:"failed_checks"`
	PassedChecks []Check `json:"passed_checks"`
}

type Check struct {
	CheckID   string `json:"check_id"`
	CheckName string `json:"check_name"`
	Resource  string `json:"resource"`
	FilePath  string `json:"file_path"`
	Severity  string `json:"severity,omitempty"`
}

// Load decodes and validates an engine report.
func Load(r io.Reader) (*Report, error) {
	var report Report
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return nil, goerr.Wrap(err, "failed to decode rule engine report")
	}
	return &report, nil
}

// Findings converts the engine checks into findings. Failed external checks
// are treated as required: the engine only reports checks that block a
// deployment when violated.
func (x *Report) Findings() []model.Finding {
	findings := make([]model.Finding, 0, len(x.Results.FailedChecks)+len(x.Results.PassedChecks))
	for _, c := range x.Results.FailedChecks {
		findings = append(findings, model.Finding{
			Control:   types.ControlID(c.CheckID),
			Resource:  c.Resource,
			File:      c.FilePath,
			Status:    types.FindingFail,
			Severity:  severityOf(c),
			Required:  true,
			Rationale: c.CheckName,
		})
	}
	for _, c := range x.Results.PassedChecks {
		findings = append(findings, model.Finding{
			Control:   types.ControlID(c.CheckID),
			Resource:  c.Resource,
			File:      c.FilePath,
			Status:    types.FindingPass,
			Severity:  severityOf(c),
			Required:  true,
			Rationale: c.CheckName,
		})
	}
	return findings
}

func severityOf(c Check) types.Severity {
	switch strings.ToLower(c.Severity) {
	case "critical":
		return types.SeverityCritical
	case "high":
		return types.SeverityHigh
	case "low":
		return types.SeverityLow
	default:
		return types.SeverityMedium
	}
}
