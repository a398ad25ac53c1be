package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/complior/pkg/domain/types"
)

// Finding is one compliance control evaluated against one resource.
// Immutable once written to the scan report.
type Finding struct {
	Control   types.ControlID     `json:"control" bigquery:"control"`
	Resource  string              `json:"resource" bigquery:"resource"` // e.g. aws_s3_bucket.logs
	File      string              `json:"file,omitempty" bigquery:"file"`
	Status    types.FindingStatus `json:"status" bigquery:"status"`
	Severity  types.Severity      `json:"severity" bigquery:"severity"`
	Required  bool                `json:"required" bigquery:"required"`
	Rationale string              `json:"rationale,omitempty" bigquery:"rationale"`
}

// Report is the scan-stage output artifact.
type Report struct {
	RunID     types.RunID      `json:"run_id" bigquery:"run_id"`
	Repo      string           `json:"repo" bigquery:"repo"`
	Branch    types.BranchName `json:"branch" bigquery:"branch"`
	CommitID  types.CommitID   `json:"commit_id" bigquery:"commit_id"`
	Timestamp time.Time        `json:"timestamp" bigquery:"timestamp"`
	Findings  []Finding        `json:"findings" bigquery:"findings"`

	Overall types.OverallStatus `json:"overall" bigquery:"overall"`
	// Partial marks that at least one control was downgraded to
	// needs_review instead of being decided.
	Partial bool `json:"partial" bigquery:"partial"`
}

func (x *Report) Validate() error {
	if x.RunID == "" {
		return goerr.Wrap(types.ErrValidationFailed, "report has no run ID")
	}
	seen := map[string]struct{}{}
	for _, f := range x.Findings {
		if f.Control == "" {
			return goerr.Wrap(types.ErrValidationFailed, "finding has no control ID")
		}
		key := string(f.Control) + "\x00" + f.Resource
		if _, ok := seen[key]; ok {
			return goerr.Wrap(types.ErrValidationFailed, "duplicated finding",
				goerr.V("control", f.Control),
				goerr.V("resource", f.Resource),
			)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Finalize computes the overall status: fail if any required control failed,
// pass otherwise. A needs_review finding never counts as pass nor fail but
// flags the report as partial.
func (x *Report) Finalize() {
	x.Overall = types.OverallPass
	x.Partial = false
	for _, f := range x.Findings {
		switch f.Status {
		case types.FindingFail:
			if f.Required {
				x.Overall = types.OverallFail
			}
		case types.FindingNeedsReview:
			x.Partial = true
		}
	}
}

// FailedFindings returns findings with fail status, for notification bodies.
func (x *Report) FailedFindings() []Finding {
	var out []Finding
	for _, f := range x.Findings {
		if f.Status == types.FindingFail {
			out = append(out, f)
		}
	}
	return out
}
