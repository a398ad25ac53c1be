package notify

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/complior/pkg/domain/interfaces"
	"github.com/secmon-lab/complior/pkg/domain/model"
	"github.com/secmon-lab/complior/pkg/domain/types"
)

// snsSubjectLimit is the hard cap SNS puts on the Subject field.
const snsSubjectLimit = 100

// SNSPublisher delivers notifications to an SNS topic, typically fanned
// out to email or chat integrations.
type SNSPublisher struct {
	api      *sns.Client
	topicARN string
}

var _ interfaces.Publisher = (*SNSPublisher)(nil)

func NewSNS(ctx context.Context, topicARN, region string) (*SNSPublisher, error) {
	if topicARN == "" {
		return nil, goerr.Wrap(types.ErrInvalidOption, "SNS topic ARN is empty")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load AWS config")
	}

	return &SNSPublisher{
		api:      sns.NewFromConfig(awsCfg),
		topicARN: topicARN,
	}, nil
}

func (x *SNSPublisher) Name() string {
	return "sns"
}

func (x *SNSPublisher) Publish(ctx context.Context, notice *model.Notification) error {
	subject := notice.Subject
	if len(subject) > snsSubjectLimit {
		subject = subject[:snsSubjectLimit]
	}

	_, err := x.api.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(x.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(notice.Body),
	})
	if err != nil {
		return goerr.Wrap(types.ErrNotifyDelivery, "failed to publish to SNS",
			goerr.V("topic", x.topicARN),
			goerr.V("cause", err.Error()),
		)
	}

	return nil
}
