package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/secmon-lab/complior/pkg/domain/model"
	"github.com/secmon-lab/complior/pkg/utils/errutil"
	"github.com/secmon-lab/complior/pkg/utils/logging"
)

// notifyRun delivers the terminal run state to every subscriber. Each
// delivery is an independent attempt: one failing transport never blocks
// the others and never changes the run's terminal status.
func (x *UseCase) notifyRun(ctx context.Context, run *model.Run, report *model.Report) {
	publishers := x.clients.Publishers()
	if len(publishers) == 0 {
		logging.From(ctx).Debug("no notification publisher configured")
		return
	}

	notice := model.NewNotification(run, report, logging.CtxTime(ctx).UTC())

	for _, pub := range publishers {
		if err := pub.Publish(ctx, notice); err != nil {
			notifyFailures.WithLabelValues(pub.Name()).Inc()
			errutil.HandleError(ctx, "failed to deliver notification", err)

			note := fmt.Sprintf("notification delivery to %s failed", pub.Name())
			if aErr := x.clients.RunRepository().Annotate(ctx, run.ID, note); aErr != nil {
				logging.From(ctx).Warn("failed to annotate run", slog.Any("error", aErr))
			}
			continue
		}

		logging.From(ctx).Info("notification delivered",
			slog.String("publisher", pub.Name()),
			slog.String("subject", notice.Subject),
		)
	}
}
