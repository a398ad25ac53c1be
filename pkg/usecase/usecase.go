package usecase

import (
	"sync"
	"time"

	"github.com/secmon-lab/complior/pkg/domain/interfaces"
	"github.com/secmon-lab/complior/pkg/domain/model/policy"
	"github.com/secmon-lab/complior/pkg/domain/types"
	"github.com/secmon-lab/complior/pkg/infra"
)

type UseCase struct {
	clients *infra.Clients
	catalog *policy.Catalog

	modelID      string
	maxTokens    int
	temperature  float64
	aiTimeout    time.Duration
	aiRetryLimit uint64

	// concurrency bound across branches. Runs on the same branch are
	// always serialized regardless of this limit.
	workerLimit int

	mu     sync.Mutex
	active map[string]bool
	queues map[string][]types.RunID
	sem    chan struct{}
	wg     sync.WaitGroup
}

var _ interfaces.UseCase = (*UseCase)(nil)

type Option func(*UseCase)

func New(clients *infra.Clients, options ...Option) *UseCase {
	uc := &UseCase{
		clients: clients,
		catalog: policy.Default(),

		modelID:      "anthropic.claude-3-5-sonnet-20241022-v2:0",
		maxTokens:    1024,
		temperature:  0,
		aiTimeout:    30 * time.Second,
		aiRetryLimit: 2,

		workerLimit: 4,

		active: make(map[string]bool),
		queues: make(map[string][]types.RunID),
	}

	for _, opt := range options {
		opt(uc)
	}

	uc.sem = make(chan struct{}, uc.workerLimit)

	return uc
}

// Wait blocks until every dispatched run has finished. Used on graceful
// shutdown and in tests.
func (x *UseCase) Wait() {
	x.wg.Wait()
}

func WithCatalog(catalog *policy.Catalog) Option {
	return func(x *UseCase) {
		x.catalog = catalog
	}
}

func WithCompletionModel(modelID string, maxTokens int, temperature float64) Option {
	return func(x *UseCase) {
		x.modelID = modelID
		x.maxTokens = maxTokens
		x.temperature = temperature
	}
}

func WithAITimeout(d time.Duration) Option {
	return func(x *UseCase) {
		x.aiTimeout = d
	}
}

func WithAIRetryLimit(n uint64) Option {
	return func(x *UseCase) {
		x.aiRetryLimit = n
	}
}

func WithWorkerLimit(n int) Option {
	return func(x *UseCase) {
		if n > 0 {
			x.workerLimit = n
		}
	}
}
