package iterate

import (
	"context"
	_ "embed"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/universal-automation-wiki/iterate/internal/adapters/file"
	redisstore "github.com/universal-automation-wiki/iterate/internal/adapters/redis"
	"github.com/universal-automation-wiki/iterate/internal/flow"
	"github.com/universal-automation-wiki/iterate/internal/llm"
	"github.com/universal-automation-wiki/iterate/internal/metrics"
	"github.com/universal-automation-wiki/iterate/internal/stage"
	"github.com/universal-automation-wiki/iterate/pkg/config"
	"github.com/universal-automation-wiki/iterate/pkg/ports"
)

// Version is the semantic version of this build.
//
//go:embed version.txt
var Version string

// Pipeline bundles the wired components: the stage registry over a
// configured completer, the record store, and the flow runner.
type Pipeline struct {
	Config   config.Config
	Registry *stage.Registry
	Store    ports.RecordStore
	Flows    *flow.Runner
	Metrics  *metrics.Metrics
}

// Option adjusts pipeline construction.
type Option func(*builder)

type builder struct {
	logger    *slog.Logger
	completer ports.Completer
	store     ports.RecordStore
}

// WithLogger sets the structured logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(b *builder) { b.logger = logger }
}

// WithCompleter overrides the Ollama-backed completer, e.g. for tests.
func WithCompleter(c ports.Completer) Option {
	return func(b *builder) { b.completer = c }
}

// WithStore overrides the record store chosen from the configuration.
func WithStore(s ports.RecordStore) Option {
	return func(b *builder) { b.store = s }
}

// New wires a pipeline from configuration: an Ollama completer behind
// the optional Redis response cache, Prometheus collectors, a record
// store (Redis when configured, files otherwise) and the flow runner.
func New(cfg config.Config, opts ...Option) (*Pipeline, error) {
	b := &builder{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(b)
	}

	m := metrics.New()

	completer := b.completer
	if completer == nil {
		ollama, err := llm.NewOllama(cfg.Ollama.Host)
		if err != nil {
			return nil, err
		}
		completer = ollama
	}
	completer = llm.NewInstrumented(completer, m)

	if cfg.CacheEnabled() {
		cacheOpts := []llm.CacheOption{
			llm.WithLogger(b.logger),
			llm.WithHitCallback(m.CacheHits.Inc),
		}
		if ttl := cfg.Redis.CacheTTL.Std(); ttl > 0 {
			cacheOpts = append(cacheOpts, llm.WithTTL(ttl))
		}
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		completer = llm.NewCache(completer, client, cacheOpts...)
	}

	registry := stage.NewRegistry(completer, b.logger)

	store := b.store
	if store == nil {
		if cfg.Redis.Addr != "" {
			store = redisstore.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		} else {
			store = file.NewStore(cfg.OutputDir)
		}
	}

	runner := flow.NewRunner(registry,
		flow.WithBaseDir(cfg.FlowDir),
		flow.WithPolicy(flow.Policy(cfg.Flow.OnFailure)),
		flow.WithMaxRetries(cfg.Flow.MaxRetries),
		flow.WithLogger(b.logger),
		flow.WithStartHook(m.FlowsStarted.Inc),
		flow.WithStageHook(func(name string, err error) {
			m.StageRuns.WithLabelValues(name, outcomeLabel(err)).Inc()
		}),
	)

	return &Pipeline{
		Config:   cfg,
		Registry: registry,
		Store:    store,
		Flows:    runner,
		Metrics:  m,
	}, nil
}

// RunStage executes the named stage against an input document and
// returns its record. The configured default model is applied when the
// document does not name one.
func (p *Pipeline) RunStage(ctx context.Context, name string, input map[string]any) (any, error) {
	st, err := p.Registry.Get(name)
	if err != nil {
		return nil, err
	}

	in := stage.Input(input)
	if in == nil {
		in = stage.Input{}
	}
	if _, ok := in["model"]; !ok && p.Config.Model != "" {
		in["model"] = p.Config.Model
	}

	record, err := st.Run(ctx, in)
	p.Metrics.StageRuns.WithLabelValues(name, outcomeLabel(err)).Inc()
	return record, err
}

func outcomeLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Stages returns the available stage names in registration order.
func (p *Pipeline) Stages() []string {
	return p.Registry.Names()
}

// RunFlow executes the full stage sequence against an input document
// and returns the flow directory holding the artifacts.
func (p *Pipeline) RunFlow(ctx context.Context, input map[string]any, inputFile, breadcrumbs string) (string, error) {
	in := stage.Input(input)
	if in == nil {
		in = stage.Input{}
	}
	if _, ok := in["model"]; !ok && p.Config.Model != "" {
		in["model"] = p.Config.Model
	}

	result, err := p.Flows.Run(ctx, in, inputFile, breadcrumbs)
	if result == nil {
		return "", err
	}
	return result.Dir, err
}
