package notify

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/nats-io/nats.go"

	"github.com/secmon-lab/complior/pkg/domain/interfaces"
	"github.com/secmon-lab/complior/pkg/domain/model"
	"github.com/secmon-lab/complior/pkg/domain/types"
)

// NATSPublisher pushes notifications onto a JetStream subject so that
// downstream consumers (dashboards, ticketing bridges) can react to
// failed scans without polling the API.
type NATSPublisher struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	subject string
}

var _ interfaces.Publisher = (*NATSPublisher)(nil)

func NewNATS(url, subject string, opts ...nats.Option) (*NATSPublisher, error) {
	if url == "" {
		return nil, goerr.Wrap(types.ErrInvalidOption, "NATS URL is empty")
	}
	if subject == "" {
		return nil, goerr.Wrap(types.ErrInvalidOption, "NATS subject is empty")
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect to NATS", goerr.V("url", url))
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, goerr.Wrap(err, "failed to create JetStream context")
	}

	return &NATSPublisher{
		conn:    nc,
		js:      js,
		subject: subject,
	}, nil
}

func (x *NATSPublisher) Name() string {
	return "nats"
}

func (x *NATSPublisher) Publish(ctx context.Context, notice *model.Notification) error {
	data, err := json.Marshal(notice)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal notification")
	}

	if _, err := x.js.Publish(x.subject, data, nats.Context(ctx)); err != nil {
		return goerr.Wrap(types.ErrNotifyDelivery, "failed to publish to NATS",
			goerr.V("subject", x.subject),
			goerr.V("cause", err.Error()),
		)
	}

	return nil
}

func (x *NATSPublisher) Close() {
	if err := x.conn.Drain(); err != nil {
		x.conn.Close()
	}
}
