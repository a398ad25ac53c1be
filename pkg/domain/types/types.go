package types

import (
	"log/slog"

	"github.com/google/uuid"
)

type (
	RunID        string
	RequestID    string
	BranchName   string
	CommitID     string
	ArtifactName string
	ControlID    string

	RunStatus     string
	Stage         string
	FindingStatus string
	Severity      string
	OverallStatus string

	GitHubAppID         int64
	GitHubAppInstallID  int64
	GitHubAppSecret     string
	GitHubAppPrivateKey string

	GoogleProjectID string
	BQDatasetID     string
	BQTableID       string
)

func (x GoogleProjectID) String() string { return string(x) }
func (x BQDatasetID) String() string     { return string(x) }
func (x BQTableID) String() string       { return string(x) }

func NewRunID() RunID {
	return RunID(uuid.NewString())
}

func (x RunID) String() string {
	return string(x)
}

func NewRequestID() RequestID {
	return RequestID(uuid.NewString())
}

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// IsTerminal returns true if the run can not transit to any other status
func (x RunStatus) IsTerminal() bool {
	return x == RunStatusSucceeded || x == RunStatusFailed
}

const (
	StagePending       Stage = "pending"
	StageSourceFetched Stage = "source_fetched"
	StageScanned       Stage = "scanned"
	StageNotified      Stage = "notified"
	StageFailed        Stage = "failed"
)

var stageOrder = map[Stage]int{
	StagePending:       0,
	StageSourceFetched: 1,
	StageScanned:       2,
	StageNotified:      3,
	StageFailed:        4,
}

// Ordinal returns the position of the stage in the pipeline. StageFailed is
// reachable from any stage and sorts after the regular stages.
func (x Stage) Ordinal() int {
	return stageOrder[x]
}

// CanTransit returns true if the pipeline may move from x to next. Stages
// only move forward, and a failed run never leaves StageFailed.
func (x Stage) CanTransit(next Stage) bool {
	if x == StageFailed || x == StageNotified {
		return false
	}
	if next == StageFailed {
		return true
	}
	return next.Ordinal() == x.Ordinal()+1
}

const (
	FindingPass        FindingStatus = "pass"
	FindingFail        FindingStatus = "fail"
	FindingNeedsReview FindingStatus = "needs_review"
)

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

const (
	OverallPass OverallStatus = "pass"
	OverallFail OverallStatus = "fail"
)

func (x GitHubAppSecret) LogValue() slog.Value {
	return slog.StringValue("***********")
}

func (x GitHubAppSecret) String() string {
	return "***********"
}

func (x GitHubAppPrivateKey) LogValue() slog.Value {
	return slog.StringValue("***********")
}

func (x GitHubAppPrivateKey) String() string {
	return "***********"
}
