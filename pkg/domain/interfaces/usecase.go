package interfaces

//go:generate moq -out ../mock/usecase.go -pkg mock . UseCase

import (
	"context"

	"github.com/secmon-lab/complior/pkg/domain/model"
	"github.com/secmon-lab/complior/pkg/domain/types"
)

type UseCase interface {
	// Submit enqueues a run for the given source change. If a non-terminal
	// run exists for the branch, the new run queues behind it (FIFO). A
	// revision already submitted for the branch is deduplicated and the
	// existing run ID is returned.
	Submit(ctx context.Context, ev *model.SourceChangeEvent) (types.RunID, error)

	// GetStatus returns the run record including stage, status and
	// degradation annotations.
	GetStatus(ctx context.Context, id types.RunID) (*model.Run, error)

	// ListRuns returns recent runs of a repo/branch, newest first.
	ListRuns(ctx context.Context, repo string, branch types.BranchName, limit int) ([]*model.Run, error)
}
