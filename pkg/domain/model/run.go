package model

import (
	"fmt"
	"regexp"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/complior/pkg/domain/types"
)

var ptnValidCommitID = regexp.MustCompile(`^[0-9a-f]{7,40}$`)

// SourceChangeEvent is the trigger input of the pipeline, built from a push
// webhook or given explicitly via CLI.
type SourceChangeEvent struct {
	Owner     string                   `json:"owner"`
	RepoName  string                   `json:"repo_name"`
	Branch    types.BranchName         `json:"branch"`
	CommitID  types.CommitID           `json:"commit_id"`
	InstallID types.GitHubAppInstallID `json:"install_id"`
}

func (x *SourceChangeEvent) Validate() error {
	if x.Owner == "" {
		return goerr.Wrap(types.ErrValidationFailed, "owner is empty")
	}
	if x.RepoName == "" {
		return goerr.Wrap(types.ErrValidationFailed, "repo name is empty")
	}
	if x.Branch == "" {
		return goerr.Wrap(types.ErrValidationFailed, "branch is empty")
	}
	if !ptnValidCommitID.MatchString(string(x.CommitID)) {
		return goerr.Wrap(types.ErrValidationFailed, "invalid commit ID", goerr.V("commit", x.CommitID))
	}
	return nil
}

func (x *SourceChangeEvent) RepoFullName() string {
	return fmt.Sprintf("%s/%s", x.Owner, x.RepoName)
}

// Run is one end-to-end pipeline execution for one source revision.
// A run is created on a detected source change and becomes immutable once
// its status is terminal.
type Run struct {
	ID        types.RunID              `json:"id" firestore:"id"`
	Repo      string                   `json:"repo" firestore:"repo"` // owner/name
	Branch    types.BranchName         `json:"branch" firestore:"branch"`
	CommitID  types.CommitID           `json:"commit_id" firestore:"commit_id"`
	InstallID types.GitHubAppInstallID `json:"install_id" firestore:"install_id"`

	Status types.RunStatus `json:"status" firestore:"status"`
	Stage  types.Stage     `json:"stage" firestore:"stage"`

	// Annotations records non-fatal degradations (AI downgrades, failed
	// notification deliveries, recovery marks) for the status query.
	Annotations []string `json:"annotations,omitempty" firestore:"annotations"`

	CreatedAt  time.Time  `json:"created_at" firestore:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" firestore:"updated_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" firestore:"finished_at"`
}

func NewRun(ev *SourceChangeEvent, now time.Time) *Run {
	return &Run{
		ID:        types.NewRunID(),
		Repo:      ev.RepoFullName(),
		Branch:    ev.Branch,
		CommitID:  ev.CommitID,
		InstallID: ev.InstallID,
		Status:    types.RunStatusPending,
		Stage:     types.StagePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (x *Run) IsTerminal() bool {
	return x.Status.IsTerminal()
}
