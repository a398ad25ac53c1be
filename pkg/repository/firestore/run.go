package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"

	"github.com/secmon-lab/complior/pkg/domain/model"
	"github.com/secmon-lab/complior/pkg/domain/types"
	"github.com/secmon-lab/complior/pkg/repository"
)

func (r *runRepository) CreateRun(ctx context.Context, run *model.Run) error {
	ref := r.client.Collection(runCollection).Doc(string(run.ID))
	if _, err := ref.Create(ctx, run); err != nil {
		if isAlreadyExists(err) {
			return goerr.Wrap(repository.ErrAlreadyExists, "run already exists",
				goerr.V("runID", run.ID),
			)
		}
		return goerr.Wrap(err, "failed to create run", goerr.V("runID", run.ID))
	}

	return nil
}

func (r *runRepository) GetRun(ctx context.Context, id types.RunID) (*model.Run, error) {
	snap, err := r.client.Collection(runCollection).Doc(string(id)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(repository.ErrNotFound, "run not found", goerr.V("runID", id))
		}
		return nil, goerr.Wrap(err, "failed to get run", goerr.V("runID", id))
	}

	var run model.Run
	if err := snap.DataTo(&run); err != nil {
		return nil, goerr.Wrap(err, "failed to decode run", goerr.V("runID", id))
	}

	return &run, nil
}

func (r *runRepository) ListRuns(ctx context.Context, repo string, branch types.BranchName, limit int) ([]*model.Run, error) {
	q := r.client.Collection(runCollection).
		Where("repo", "==", repo).
		Where("branch", "==", string(branch)).
		OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	return collectRuns(q.Documents(ctx))
}

func (r *runRepository) ListNonTerminal(ctx context.Context) ([]*model.Run, error) {
	q := r.client.Collection(runCollection).
		Where("status", "in", []string{
			string(types.RunStatusPending),
			string(types.RunStatusRunning),
		})

	return collectRuns(q.Documents(ctx))
}

func (r *runRepository) FindByCommit(ctx context.Context, repo string, branch types.BranchName, commit types.CommitID) (*model.Run, error) {
	iter := r.client.Collection(runCollection).
		Where("repo", "==", repo).
		Where("branch", "==", string(branch)).
		Where("commit_id", "==", string(commit)).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(repository.ErrNotFound, "run not found",
			goerr.V("repo", repo),
			goerr.V("branch", branch),
			goerr.V("commit", commit),
		)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query run by commit")
	}

	var run model.Run
	if err := snap.DataTo(&run); err != nil {
		return nil, goerr.Wrap(err, "failed to decode run")
	}

	return &run, nil
}

func (r *runRepository) TransitStage(ctx context.Context, id types.RunID, stage types.Stage) error {
	ref := r.client.Collection(runCollection).Doc(string(id))

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return goerr.Wrap(repository.ErrNotFound, "run not found", goerr.V("runID", id))
			}
			return goerr.Wrap(err, "failed to get run", goerr.V("runID", id))
		}

		var run model.Run
		if err := snap.DataTo(&run); err != nil {
			return goerr.Wrap(err, "failed to decode run", goerr.V("runID", id))
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

		return tx.Set(ref, &run)
	})
	if err != nil {
		return err
	}

	return nil
}

func (r *runRepository) Finalize(ctx context.Context, id types.RunID, status types.RunStatus, annotations ...string) error {
	if !status.IsTerminal() {
		return goerr.Wrap(repository.ErrInvalidInput, "finalize requires a terminal status",
			goerr.V("status", status),
		)
	}

	ref := r.client.Collection(runCollection).Doc(string(id))

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return goerr.Wrap(repository.ErrNotFound, "run not found", goerr.V("runID", id))
			}
			return goerr.Wrap(err, "failed to get run", goerr.V("runID", id))
		}

		var run model.Run
		if err := snap.DataTo(&run); err != nil {
			return goerr.Wrap(err, "failed to decode run", goerr.V("runID", id))
		}

		if run.IsTerminal() {
			return goerr.Wrap(repository.ErrInvalidInput, "run is already terminal",
				goerr.V("runID", id),
				goerr.V("status", run.Status),
			)
		}

		now := time.Now().UTC()
		run.Status = status
		// A notified run keeps its stage even when the overall compliance
		// result is a failure.
		if status == types.RunStatusFailed && run.Stage != types.StageNotified {
			run.Stage = types.StageFailed
		}
		run.Annotations = append(run.Annotations, annotations...)
		run.FinishedAt = &now
		run.UpdatedAt = now

		return tx.Set(ref, &run)
	})
}

func (r *runRepository) Annotate(ctx context.Context, id types.RunID, note string) error {
	ref := r.client.Collection(runCollection).Doc(string(id))

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return goerr.Wrap(repository.ErrNotFound, "run not found", goerr.V("runID", id))
			}
			return goerr.Wrap(err, "failed to get run", goerr.V("runID", id))
		}

		var run model.Run
		if err := snap.DataTo(&run); err != nil {
			return goerr.Wrap(err, "failed to decode run", goerr.V("runID", id))
		}

		if run.IsTerminal() {
			return goerr.Wrap(repository.ErrInvalidInput, "run is already terminal", goerr.V("runID", id))
		}

		run.Annotations = append(run.Annotations, note)
		run.UpdatedAt = time.Now().UTC()

		return tx.Set(ref, &run)
	})
}

func collectRuns(iter *firestore.DocumentIterator) ([]*model.Run, error) {
	defer iter.Stop()

	var runs []*model.Run
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate runs")
		}

		var run model.Run
		if err := snap.DataTo(&run); err != nil {
			return nil, goerr.Wrap(err, "failed to decode run")
		}
		runs = append(runs, &run)
	}

	return runs, nil
}
