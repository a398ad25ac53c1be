package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/secmon-lab/complior/pkg/domain/model"
	"github.com/secmon-lab/complior/pkg/domain/types"
	"github.com/secmon-lab/complior/pkg/repository"
	"github.com/secmon-lab/complior/pkg/utils/errutil"
	"github.com/secmon-lab/complior/pkg/utils/logging"
)

// Submit registers a run for the source change and dispatches it. The same
// revision notified twice returns the existing run instead of a second one.
// When a run on the branch is still in flight, the new run is queued behind
// it and stays pending until its predecessor reaches a terminal status.
func (x *UseCase) Submit(ctx context.Context, ev *model.SourceChangeEvent) (types.RunID, error) {
	if err := ev.Validate(); err != nil {
		return "", err
	}

	if existing, err := x.clients.RunRepository().FindByCommit(ctx, ev.RepoFullName(), ev.Branch, ev.CommitID); err == nil {
		logging.From(ctx).Info("duplicated source change event, skipping",
			slog.String("repo", ev.RepoFullName()),
			slog.Any("branch", ev.Branch),
			slog.Any("commit", ev.CommitID),
			slog.Any("runID", existing.ID),
		)
		return existing.ID, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	run := model.NewRun(ev, logging.CtxTime(ctx).UTC())
	if err := x.clients.RunRepository().CreateRun(ctx, run); err != nil {
		return "", err
	}
	runsSubmitted.Inc()

	logging.From(ctx).Info("run submitted",
		slog.Any("runID", run.ID),
		slog.String("repo", run.Repo),
		slog.Any("branch", run.Branch),
		slog.Any("commit", run.CommitID),
	)

	x.dispatch(detachContext(ctx), branchKey(run.Repo, run.Branch), run.ID)

	return run.ID, nil
}

// GetStatus returns the run record for a status query.
func (x *UseCase) GetStatus(ctx context.Context, id types.RunID) (*model.Run, error) {
	return x.clients.RunRepository().GetRun(ctx, id)
}

// ListRuns returns recent runs of a repo/branch, newest first.
func (x *UseCase) ListRuns(ctx context.Context, repo string, branch types.BranchName, limit int) ([]*model.Run, error) {
	return x.clients.RunRepository().ListRuns(ctx, repo, branch, limit)
}

func branchKey(repo string, branch types.BranchName) string {
	return repo + "#" + string(branch)
}

// dispatch starts a worker for the branch unless one is already draining
// its queue, in which case the run is appended behind the active one.
func (x *UseCase) dispatch(ctx context.Context, key string, runID types.RunID) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.active[key] {
		x.queues[key] = append(x.queues[key], runID)
		return
	}

	x.active[key] = true
	x.wg.Add(1)
	go x.branchWorker(ctx, key, runID)
}

// branchWorker executes runs of one branch strictly in FIFO order. The
// semaphore bounds how many branches execute at once.
func (x *UseCase) branchWorker(ctx context.Context, key string, runID types.RunID) {
	defer x.wg.Done()

	for {
		x.sem <- struct{}{}
		x.executeRun(ctx, runID)
		<-x.sem

		x.mu.Lock()
		queue := x.queues[key]
		if len(queue) == 0 {
			x.active[key] = false
			x.mu.Unlock()
			return
		}
		runID = queue[0]
		x.queues[key] = queue[1:]
		x.mu.Unlock()
	}
}

// detachContext creates a background context that survives the triggering
// request but keeps its logger, request ID and time function.
func detachContext(ctx context.Context) context.Context {
	newCtx := logging.With(context.Background(), logging.From(ctx))
	return logging.InheritContextValues(newCtx, ctx)
}

// RecoverStaleRuns marks runs left non-terminal by a previous process as
// failed. Called once at startup before accepting new submissions.
func (x *UseCase) RecoverStaleRuns(ctx context.Context) error {
	runs, err := x.clients.RunRepository().ListNonTerminal(ctx)
	if err != nil {
		return err
	}

	for _, run := range runs {
		if err := x.clients.RunRepository().Finalize(ctx, run.ID, types.RunStatusFailed,
			"recovered after restart: run was interrupted",
		); err != nil {
			errutil.HandleError(ctx, "failed to mark stale run as failed", err)
			continue
		}
		runsCompleted.WithLabelValues(string(types.RunStatusFailed)).Inc()
		logging.From(ctx).Warn("marked stale run as failed",
			slog.Any("runID", run.ID),
			slog.String("repo", run.Repo),
			slog.Any("branch", run.Branch),
		)
	}

	return nil
}
