package interfaces

import (
	"context"

	"github.com/secmon-lab/complior/pkg/domain/model"
	"github.com/secmon-lab/complior/pkg/domain/types"
)

// RunRepository durably records runs and their stage transitions.
type RunRepository interface {
	// CreateRun stores a new run record.
	CreateRun(ctx context.Context, run *model.Run) error

	// GetRun returns a run by ID, or repository.ErrNotFound.
	GetRun(ctx context.Context, id types.RunID) (*model.Run, error)

	// ListRuns returns recent runs for a repo/branch, newest first.
	ListRuns(ctx context.Context, repo string, branch types.BranchName, limit int) ([]*model.Run, error)

	// ListNonTerminal returns every run whose status is not terminal,
	// used for crash recovery on startup.
	ListNonTerminal(ctx context.Context) ([]*model.Run, error)

	// FindByCommit returns the run for a (repo, branch, commit) triple if
	// one exists, for webhook deduplication.
	FindByCommit(ctx context.Context, repo string, branch types.BranchName, commit types.CommitID) (*model.Run, error)

	// TransitStage advances the run to the next stage. The transition is
	// rejected with types.ErrStageOrder unless Stage.CanTransit allows it.
	TransitStage(ctx context.Context, id types.RunID, stage types.Stage) error

	// Finalize sets the terminal status and appends annotations. A run
	// that is already terminal is never modified.
	Finalize(ctx context.Context, id types.RunID, status types.RunStatus, annotations ...string) error

	// Annotate appends a non-fatal degradation note to a run.
	Annotate(ctx context.Context, id types.RunID, note string) error
}
