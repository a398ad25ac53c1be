package config

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/complior/pkg/domain/interfaces"
	"github.com/secmon-lab/complior/pkg/infra/notify"
)

// Notify configures the notification transports. Both are optional and
// independent; a run can fan out to any subset of them.
type Notify struct {
	snsTopicARN string
	snsRegion   string

	natsURL     string
	natsSubject string
}

func (x *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sns-topic-arn",
			Usage:       "SNS topic ARN for notifications (optional)",
			Category:    "Notification",
			Sources:     cli.EnvVars("COMPLIOR_SNS_TOPIC_ARN"),
			Destination: &x.snsTopicARN,
		},
		&cli.StringFlag{
			Name:        "sns-region",
			Usage:       "AWS region of the SNS topic",
			Category:    "Notification",
			Sources:     cli.EnvVars("COMPLIOR_SNS_REGION"),
			Destination: &x.snsRegion,
		},
		&cli.StringFlag{
			Name:        "nats-url",
			Usage:       "NATS server URL for notifications (optional)",
			Category:    "Notification",
			Sources:     cli.EnvVars("COMPLIOR_NATS_URL"),
			Destination: &x.natsURL,
		},
		&cli.StringFlag{
			Name:        "nats-subject",
			Usage:       "NATS subject for notifications",
			Category:    "Notification",
			Sources:     cli.EnvVars("COMPLIOR_NATS_SUBJECT"),
			Value:       "complior.notifications",
			Destination: &x.natsSubject,
		},
	}
}

// NewPublishers builds the configured transports.
func (x *Notify) NewPublishers(ctx context.Context) ([]interfaces.Publisher, error) {
	var publishers []interfaces.Publisher

	if x.snsTopicARN != "" {
		pub, err := notify.NewSNS(ctx, x.snsTopicARN, x.snsRegion)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, pub)
	}

	if x.natsURL != "" {
		pub, err := notify.NewNATS(x.natsURL, x.natsSubject)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, pub)
	}

	return publishers, nil
}

func (x *Notify) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("snsTopicARN", x.snsTopicARN),
		slog.String("snsRegion", x.snsRegion),
		slog.String("natsURL", x.natsURL),
		slog.String("natsSubject", x.natsSubject),
	)
}
