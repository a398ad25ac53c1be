package checkov

import (
	"context"
	"os/exec"

	"github.com/m-mizutani/goerr/v2"
)

// Client runs the external structural rule engine. Stubbed in tests so
// the scan pipeline does not need the binary installed.
type Client interface {
	Run(ctx context.Context, args []string) error
}

type clientImpl struct {
	path string
}

func New(path string) Client {
	return &clientImpl{path: path}
}

func (x *clientImpl) Run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, x.path, args...)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return goerr.Wrap(err, "failed to run checkov",
			goerr.V("path", x.path),
			goerr.V("args", args),
			goerr.V("output", string(out)),
		)
	}

	return nil
}
