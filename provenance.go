package provenance

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/veralith/provenance/chain"
	"github.com/veralith/provenance/id"
	"github.com/veralith/provenance/plugin"
	"github.com/veralith/provenance/usage"
)

// Client is the main entry point. It owns one session, the plugin
// registry, and the buffered usage-report worker.
type Client struct {
	dialer  ServiceDialer
	session *Session
	plugins *plugin.Registry
	logger  *slog.Logger

	chainOverride chain.Adapter

	// Background workers
	reportBuffer chan *usage.Event
	stopChan     chan struct{}
	wg           sync.WaitGroup

	// Configuration
	reportBatchSize     int
	reportFlushInterval time.Duration
}

// config collects construction-time settings applied by options before
// the session exists.
type config struct {
	logger        *slog.Logger
	plugins       []plugin.Plugin
	approver      Approver
	credential    *Credential
	chainOverride chain.Adapter
	bufferSize    int
	batchSize     int
	flushInterval time.Duration
}

// Option configures a Client instance.
type Option func(*config)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) { cfg.logger = logger }
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(cfg *config) { cfg.plugins = append(cfg.plugins, p) }
}

// WithApprover configures interactive signing-capability acquisition.
// Mutually exclusive with WithCredential.
func WithApprover(a Approver) Option {
	return func(cfg *config) { cfg.approver = a }
}

// WithCredential configures non-interactive signing capability.
// Mutually exclusive with WithApprover.
func WithCredential(cred Credential) Option {
	return func(cfg *config) { cfg.credential = &cred }
}

// WithChainAdapter overrides the chain adapter the dialer would provide,
// for example to point reads at a public RPC endpoint.
func WithChainAdapter(a chain.Adapter) Option {
	return func(cfg *config) { cfg.chainOverride = a }
}

// WithReportBuffer sets the capacity of the buffered Track channel.
func WithReportBuffer(size int) Option {
	return func(cfg *config) { cfg.bufferSize = size }
}

// WithReportConfig configures buffered-report flushing parameters.
func WithReportConfig(batchSize int, flushInterval time.Duration) Option {
	return func(cfg *config) {
		cfg.batchSize = batchSize
		cfg.flushInterval = flushInterval
	}
}

// New creates a new Client over a service dialer. The dialer decides
// what backend the client talks to; the devnet package provides an
// in-process one.
func New(dialer ServiceDialer, opts ...Option) (*Client, error) {
	cfg := &config{
		logger:        slog.Default(),
		bufferSize:    10000,
		batchSize:     100,
		flushInterval: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	c := &Client{
		dialer:              dialer,
		plugins:             plugin.NewRegistry().WithLogger(cfg.logger),
		logger:              cfg.logger,
		chainOverride:       cfg.chainOverride,
		reportBuffer:        make(chan *usage.Event, cfg.bufferSize),
		stopChan:            make(chan struct{}),
		reportBatchSize:     cfg.batchSize,
		reportFlushInterval: cfg.flushInterval,
	}

	for _, p := range cfg.plugins {
		if err := c.plugins.Register(p); err != nil {
			return nil, err
		}
	}

	session, err := newSession(c, cfg.approver, cfg.credential)
	if err != nil {
		return nil, err
	}
	c.session = session

	return c, nil
}

// Start initializes plugins and begins the report flush worker.
func (c *Client) Start(ctx context.Context) error {
	c.plugins.EmitInit(ctx, c)

	c.wg.Add(1)
	go c.reportFlushWorker(ctx)

	c.logger.Info("provenance client started",
		"batch_size", c.reportBatchSize,
		"flush_interval", c.reportFlushInterval,
	)
	return nil
}

// Stop shuts down the Client, flushing any buffered usage reports.
func (c *Client) Stop() error {
	close(c.stopChan)
	c.wg.Wait()

	c.plugins.EmitShutdown(context.Background())
	return nil
}

// Session returns the client's session manager.
func (c *Client) Session() *Session { return c.session }

// Connect acquires signing capability for the session.
func (c *Client) Connect(ctx context.Context) error { return c.session.Connect(ctx) }

// Disconnect drops signing capability.
func (c *Client) Disconnect(ctx context.Context) error { return c.session.Disconnect(ctx) }

// Plugins returns the plugin registry.
func (c *Client) Plugins() *plugin.Registry { return c.plugins }

// Registry returns the registry client of the current binding
// generation.
func (c *Client) Registry(ctx context.Context) (*RegistryClient, error) {
	b, err := c.session.binding(ctx)
	if err != nil {
		return nil, err
	}
	return b.registry, nil
}

// Royalty returns the royalty engine of the current binding generation.
func (c *Client) Royalty(ctx context.Context) (*RoyaltyEngine, error) {
	b, err := c.session.binding(ctx)
	if err != nil {
		return nil, err
	}
	return b.royalty, nil
}

// Usage returns the usage aggregator of the current binding generation.
func (c *Client) Usage(ctx context.Context) (*UsageAggregator, error) {
	b, err := c.session.binding(ctx)
	if err != nil {
		return nil, err
	}
	return b.usage, nil
}

// bind dials the backend for a capability and assembles a fresh binding
// generation. The seen-set is shared across generations.
func (c *Client) bind(ctx context.Context, capability Capability, seen *usage.SeenSet) (*bindings, error) {
	services, err := c.dialer.Dial(ctx, capability)
	if err != nil {
		return nil, err
	}
	if c.chainOverride != nil {
		services.Chain = c.chainOverride
	}

	b := &bindings{capability: capability}
	b.registry = newRegistryClient(services.Registry, capability, c.plugins, c.logger)
	b.royalty = newRoyaltyEngine(services.Royalty, capability, c.plugins, c.logger)
	b.usage = newUsageAggregator(services.Usage, b.registry, capability, seen, c.plugins, c.logger)
	b.chain = services.Chain
	return b, nil
}

// Chain returns the chain adapter of the current binding generation.
func (c *Client) Chain(ctx context.Context) (chain.Adapter, error) {
	b, err := c.session.binding(ctx)
	if err != nil {
		return nil, err
	}
	return b.chain, nil
}

// ──────────────────────────────────────────────────
// Buffered usage reporting
// ──────────────────────────────────────────────────

// Track records a usage event without blocking. Events are flushed in
// batches by a background worker through the same deduplicated path as
// BatchReport. A full buffer yields ErrReportBufferFull.
func (c *Client) Track(ctx context.Context, event *usage.Event) error {
	if event == nil || event.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	select {
	case c.reportBuffer <- event:
		return nil
	default:
		return ErrReportBufferFull
	}
}

// reportFlushWorker flushes buffered usage events to the remote service.
func (c *Client) reportFlushWorker(ctx context.Context) {
	defer c.wg.Done()

	batch := make([]*usage.Event, 0, c.reportBatchSize)
	ticker := time.NewTicker(c.reportFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			// Final flush, including anything still queued.
			for {
				select {
				case event := <-c.reportBuffer:
					batch = append(batch, event)
					continue
				default:
				}
				break
			}
			if len(batch) > 0 {
				c.flushReportBatch(ctx, batch)
			}
			return

		case event := <-c.reportBuffer:
			batch = append(batch, event)
			if len(batch) >= c.reportBatchSize {
				c.flushReportBatch(ctx, batch)
				batch = make([]*usage.Event, 0, c.reportBatchSize)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				c.flushReportBatch(ctx, batch)
				batch = make([]*usage.Event, 0, c.reportBatchSize)
			}
		}
	}
}

func (c *Client) flushReportBatch(ctx context.Context, batch []*usage.Event) {
	start := time.Now()
	batchID := id.NewReportBatchID()

	ua, err := c.Usage(ctx)
	if err != nil {
		c.logger.Error("failed to bind usage aggregator for flush",
			"batch_id", batchID,
			"error", err,
			"batch_size", len(batch),
		)
		return
	}

	accepted, err := ua.BatchReport(ctx, batch)
	if err != nil {
		c.logger.Error("failed to flush report batch",
			"batch_id", batchID,
			"error", err,
			"batch_size", len(batch),
		)
		return
	}

	elapsed := time.Since(start)
	c.plugins.EmitUsageFlushed(ctx, accepted, elapsed)

	c.logger.Debug("flushed report batch",
		"batch_id", batchID,
		"batch_size", len(batch),
		"accepted", accepted,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}
