package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/complior/pkg/domain/model"
	"github.com/secmon-lab/complior/pkg/domain/types"
)

func TestSourceChangeEventValidate(t *testing.T) {
	valid := func() *model.SourceChangeEvent {
		return &model.SourceChangeEvent{
			Owner:     "secmon-lab",
			RepoName:  "complior",
			Branch:    "main",
			CommitID:  "f7c8851da7c7fcc46212fccfb6c9c4bda520f1ca",
			InstallID: 12345,
		}
	}

	t.Run("valid event", func(t *testing.T) {
		gt.NoError(t, valid().Validate())
	})

	t.Run("empty owner", func(t *testing.T) {
		ev := valid()
		ev.Owner = ""
		gt.Error(t, ev.Validate())
	})

	t.Run("empty repo name", func(t *testing.T) {
		ev := valid()
		ev.RepoName = ""
		gt.Error(t, ev.Validate())
	})

	t.Run("empty branch", func(t *testing.T) {
		ev := valid()
		ev.Branch = ""
		gt.Error(t, ev.Validate())
	})

	t.Run("empty commit ID", func(t *testing.T) {
		ev := valid()
		ev.CommitID = ""
		gt.Error(t, ev.Validate())
	})

	t.Run("short abbreviated commit ID is accepted", func(t *testing.T) {
		ev := valid()
		ev.CommitID = "f7c8851"
		gt.NoError(t, ev.Validate())
	})

	t.Run("non-hex commit ID", func(t *testing.T) {
		ev := valid()
		ev.CommitID = "not-a-commit-hash"
		gt.Error(t, ev.Validate())
	})
}

func TestNewRun(t *testing.T) {
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	ev := &model.SourceChangeEvent{
		Owner:     "secmon-lab",
		RepoName:  "complior",
		Branch:    "main",
		CommitID:  "f7c8851da7c7fcc46212fccfb6c9c4bda520f1ca",
		InstallID: 12345,
	}

	run := model.NewRun(ev, now)

	gt.V(t, run.ID).NotEqual(types.RunID(""))
	gt.V(t, run.Repo).Equal("secmon-lab/complior")
	gt.V(t, run.Branch).Equal(types.BranchName("main"))
	gt.V(t, run.CommitID).Equal(types.CommitID("f7c8851da7c7fcc46212fccfb6c9c4bda520f1ca"))
	gt.V(t, run.Status).Equal(types.RunStatusPending)
	gt.V(t, run.Stage).Equal(types.StagePending)
	gt.V(t, run.CreatedAt).Equal(now)
	gt.False(t, run.IsTerminal())
}
