package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/complior/pkg/domain/interfaces"
	"github.com/secmon-lab/complior/pkg/domain/model"
	"github.com/secmon-lab/complior/pkg/domain/types"
	"github.com/secmon-lab/complior/pkg/repository"
)

// New creates a new in-memory run repository
func New() interfaces.RunRepository {
	return &runRepository{
		runs: make(map[types.RunID]*model.Run),
	}
}

type runRepository struct {
	mu   sync.RWMutex
	runs map[types.RunID]*model.Run
}

func (r *runRepository) CreateRun(ctx context.Context, run *model.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.runs[run.ID]; exists {
		return goerr.Wrap(repository.ErrAlreadyExists, "run already exists",
			goerr.V("runID", run.ID),
		)
	}
	r.runs[run.ID] = copyRun(run)

	return nil
}

func (r *runRepository) GetRun(ctx context.Context, id types.RunID) (*model.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, exists := r.runs[id]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "run not found",
			goerr.V("runID", id),
		)
	}

	return copyRun(run), nil
}

func (r *runRepository) ListRuns(ctx context.Context, repo string, branch types.BranchName, limit int) ([]*model.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var runs []*model.Run
	for _, run := range r.runs {
		if run.Repo == repo && run.Branch == branch {
			runs = append(runs, copyRun(run))
		}
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	return runs, nil
}

func (r *runRepository) ListNonTerminal(ctx context.Context) ([]*model.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var runs []*model.Run
	for _, run := range r.runs {
		if !run.IsTerminal() {
			runs = append(runs, copyRun(run))
		}
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.Before(runs[j].CreatedAt)
	})

	return runs, nil
}

func (r *runRepository) FindByCommit(ctx context.Context, repo string, branch types.BranchName, commit types.CommitID) (*model.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, run := range r.runs {
		if run.Repo == repo && run.Branch == branch && run.CommitID == commit {
			return copyRun(run), nil
		}
	}

	return nil, goerr.Wrap(repository.ErrNotFound, "run not found",
		goerr.V("repo", repo),
		goerr.V("branch", branch),
		goerr.V("commit", commit),
	)
}

func (r *runRepository) TransitStage(ctx context.Context, id types.RunID, stage types.Stage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, exists := r.runs[id]
	if !exists {
		return goerr.Wrap(repository.ErrNotFound, "run not found", goerr.V("runID", id))
	}
	if !run.Stage.CanTransit(stage) {
		return goerr.Wrap(types.ErrStageOrder, "invalid stage transition",
			goerr.V("runID", id),
			goerr.V("from", run.Stage),
			goerr.V("to", stage),
		)
	}

	run.Stage = stage
	if run.Status == types.RunStatusPending {
		run.Status = types.RunStatusRunning
	}
	run.UpdatedAt = time.Now().UTC()

	return nil
}

func (r *runRepository) Finalize(ctx context.Context, id types.RunID, status types.RunStatus, annotations ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, exists := r.runs[id]
	if !exists {
		return goerr.Wrap(repository.ErrNotFound, "run not found", goerr.V("runID", id))
	}
	if run.IsTerminal() {
		return goerr.Wrap(repository.ErrInvalidInput, "run is already terminal",
			goerr.V("runID", id),
			goerr.V("status", run.Status),
		)
	}
	if !status.IsTerminal() {
		return goerr.Wrap(repository.ErrInvalidInput, "finalize requires a terminal status",
			goerr.V("status", status),
		)
	}

	now := time.Now().UTC()
	run.Status = status
	// A run that failed before delivering its notification ends at the
	// failed stage. A notified run keeps its stage even when the overall
	// compliance result is a failure.
	if status == types.RunStatusFailed && run.Stage != types.StageNotified {
		run.Stage = types.StageFailed
	}
	run.Annotations = append(run.Annotations, annotations...)
	run.FinishedAt = &now
	run.UpdatedAt = now

	return nil
}

func (r *runRepository) Annotate(ctx context.Context, id types.RunID, note string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, exists := r.runs[id]
	if !exists {
		return goerr.Wrap(repository.ErrNotFound, "run not found", goerr.V("runID", id))
	}
	if run.IsTerminal() {
		return goerr.Wrap(repository.ErrInvalidInput, "run is already terminal", goerr.V("runID", id))
	}

	run.Annotations = append(run.Annotations, note)
	run.UpdatedAt = time.Now().UTC()

	return nil
}

func copyRun(run *model.Run) *model.Run {
	copied := *run
	if run.Annotations != nil {
		copied.Annotations = append([]string{}, run.Annotations...)
	}
	if run.FinishedAt != nil {
		t := *run.FinishedAt
		copied.FinishedAt = &t
	}
	return &copied
}
