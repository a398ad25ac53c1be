package usecase

import (
	"context"

	"github.com/secmon-lab/complior/pkg/domain/model"
	"github.com/secmon-lab/complior/pkg/domain/types"
	"github.com/secmon-lab/complior/pkg/utils/logging"
)

// ScanLocal runs the scan stage against a local directory without going
// through the orchestrator. Used by the one-shot CLI scan; the ephemeral
// run is never persisted.
func (x *UseCase) ScanLocal(ctx context.Context, dir, repo string, branch types.BranchName, commit types.CommitID) (*model.Report, error) {
	run := &model.Run{
		ID:        types.NewRunID(),
		Repo:      repo,
		Branch:    branch,
		CommitID:  commit,
		Status:    types.RunStatusRunning,
		Stage:     types.StageSourceFetched,
		CreatedAt: logging.CtxTime(ctx).UTC(),
	}

	report, err := x.scanDirectory(ctx, run, dir)
	if err != nil {
		return nil, err
	}

	x.exportRun(ctx, run, report)

	return report, nil
}
