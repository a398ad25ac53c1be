package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/secmon-lab/complior/pkg/domain/types"
)

// Notification is built once per terminal run and delivered at most once
// per subscriber.
type Notification struct {
	RunID     types.RunID `json:"run_id"`
	Subject   string      `json:"subject"`
	Body      string      `json:"body"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewNotification renders the terminal run state into a message. The report
// may be nil when the run failed before the scan stage.
func NewNotification(run *Run, report *Report, now time.Time) *Notification {
	var subject string
	switch run.Status {
	case types.RunStatusSucceeded:
		subject = fmt.Sprintf("[complior] compliance scan passed: %s@%s", run.Repo, run.Branch)
	default:
		subject = fmt.Sprintf("[complior] compliance scan failed: %s@%s", run.Repo, run.Branch)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\n", run.Repo)
	fmt.Fprintf(&b, "Branch:     %s\n", run.Branch)
	fmt.Fprintf(&b, "Commit:     %s\n", run.CommitID)
	fmt.Fprintf(&b, "Run:        %s\n", run.ID)
	fmt.Fprintf(&b, "Status:     %s\n", run.Status)

	if report != nil {
		failed := report.FailedFindings()
		fmt.Fprintf(&b, "\nTotal findings: %d (failed: %d)\n", len(report.Findings), len(failed))
		for i, f := range failed {
			fmt.Fprintf(&b, "\nViolation %d:\n", i+1)
			fmt.Fprintf(&b, "  Resource: %s\n", f.Resource)
			fmt.Fprintf(&b, "  Control:  %s\n", f.Control)
			if f.File != "" {
				fmt.Fprintf(&b, "  File:     %s\n", f.File)
			}
			if f.Rationale != "" {
				fmt.Fprintf(&b, "  Detail:   %s\n", f.Rationale)
			}
		}
		if report.Partial {
			fmt.Fprintf(&b, "\nSome controls need human review; the result is partial.\n")
		}
		if report.Overall == types.OverallFail {
			fmt.Fprintf(&b, "\nDeployment BLOCKED due to %d violation(s)\n", len(failed))
		}
	}

	for _, a := range run.Annotations {
		fmt.Fprintf(&b, "\nNote: %s\n", a)
	}

	return &Notification{
		RunID:     run.ID,
		Subject:   subject,
		Body:      b.String(),
		CreatedAt: now,
	}
}
