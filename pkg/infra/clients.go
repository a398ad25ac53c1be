package infra

import (
	"net/http"

	"github.com/secmon-lab/complior/pkg/domain/interfaces"
	"github.com/secmon-lab/complior/pkg/infra/checkov"
)

type Clients struct {
	sourceFetcher interfaces.SourceFetcher
	httpClient    HTTPClient
	artifactStore interfaces.ArtifactStore
	completer     interfaces.TextCompleter
	ruleEngine    checkov.Client
	bqClient      interfaces.BigQuery
	runRepo       interfaces.RunRepository
	publishers    []interfaces.Publisher
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Option func(*Clients)

func New(options ...Option) *Clients {
	client := &Clients{
		httpClient: http.DefaultClient,
	}

	for _, opt := range options {
		opt(client)
	}

	return client
}

func (x *Clients) SourceFetcher() interfaces.SourceFetcher {
	return x.sourceFetcher
}
func (x *Clients) HTTPClient() HTTPClient {
	return x.httpClient
}
func (x *Clients) ArtifactStore() interfaces.ArtifactStore {
	return x.artifactStore
}
func (x *Clients) TextCompleter() interfaces.TextCompleter {
	return x.completer
}
func (x *Clients) RuleEngine() checkov.Client {
	return x.ruleEngine
}
func (x *Clients) BigQuery() interfaces.BigQuery {
	return x.bqClient
}
func (x *Clients) RunRepository() interfaces.RunRepository {
	return x.runRepo
}
func (x *Clients) Publishers() []interfaces.Publisher {
	return x.publishers
}

func WithSourceFetcher(client interfaces.SourceFetcher) Option {
	return func(x *Clients) {
		x.sourceFetcher = client
	}
}

func WithHTTPClient(client HTTPClient) Option {
	return func(x *Clients) {
		x.httpClient = client
	}
}

func WithArtifactStore(store interfaces.ArtifactStore) Option {
	return func(x *Clients) {
		x.artifactStore = store
	}
}

func WithTextCompleter(completer interfaces.TextCompleter) Option {
	return func(x *Clients) {
		x.completer = completer
	}
}

func WithRuleEngine(client checkov.Client) Option {
	return func(x *Clients) {
		x.ruleEngine = client
	}
}

func WithBigQuery(client interfaces.BigQuery) Option {
	return func(x *Clients) {
		x.bqClient = client
	}
}

func WithRunRepository(repo interfaces.RunRepository) Option {
	return func(x *Clients) {
		x.runRepo = repo
	}
}

func WithPublisher(pub interfaces.Publisher) Option {
	return func(x *Clients) {
		x.publishers = append(x.publishers, pub)
	}
}
