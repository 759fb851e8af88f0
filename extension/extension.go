// Package extension provides the Forge extension adapter for Provenance.
//
// It implements the forge.Extension interface to integrate the
// Provenance client into a Forge application with automatic dependency
// discovery, DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.provenance" or
// "provenance" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/veralith/provenance"
	"github.com/veralith/provenance/devnet"
	"github.com/veralith/provenance/store"
	"github.com/veralith/provenance/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "provenance"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Digital content provenance and royalty client"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the Provenance client as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	client     *provenance.Client
	dialer     provenance.ServiceDialer
	store      store.Store
	clientOpts []provenance.Option
}

// New creates a new Provenance Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Client returns the underlying Provenance client.
// This is nil until Register is called.
func (e *Extension) Client() *provenance.Client { return e.client }

// Register implements [forge.Extension]. It loads configuration,
// initializes the client, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// When no dialer was provided, run against an in-process devnet.
	if e.dialer == nil {
		if e.store == nil {
			e.store = memory.New()
		}
		e.dialer = devnet.New(e.store)
	}

	opts := e.buildClientOpts()

	client, err := provenance.New(e.dialer, opts...)
	if err != nil {
		return err
	}
	e.client = client

	return vessel.Provide(fapp.Container(), func() (*provenance.Client, error) {
		return e.client, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.client == nil {
		return errors.New("provenance: extension not initialized")
	}

	if e.store != nil && !e.config.DisableMigrate {
		if err := e.store.Migrate(ctx); err != nil {
			return err
		}
	}
	if err := e.client.Start(ctx); err != nil {
		return err
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.client != nil {
		if err := e.client.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store != nil {
		return e.store.Ping(ctx)
	}
	return nil
}

// buildClientOpts constructs provenance.Option values from the resolved config.
func (e *Extension) buildClientOpts() []provenance.Option {
	opts := make([]provenance.Option, 0, len(e.clientOpts)+2)

	defaults := DefaultConfig()

	if e.config.ReportBufferSize > 0 {
		opts = append(opts, provenance.WithReportBuffer(e.config.ReportBufferSize))
	}

	if e.config.ReportBatchSize > 0 || e.config.ReportFlushInterval > 0 {
		batchSize := e.config.ReportBatchSize
		flushInterval := e.config.ReportFlushInterval
		if batchSize == 0 {
			batchSize = defaults.ReportBatchSize
		}
		if flushInterval == 0 {
			flushInterval = defaults.ReportFlushInterval
		}
		opts = append(opts, provenance.WithReportConfig(batchSize, flushInterval))
	}

	// Append any pass-through client options.
	opts = append(opts, e.clientOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("provenance: configuration is required but not found in config files; " +
				"ensure 'extensions.provenance' or 'provenance' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("provenance: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("network", e.config.Network),
		forge.F("report_buffer_size", e.config.ReportBufferSize),
		forge.F("report_batch_size", e.config.ReportBatchSize),
		forge.F("report_flush_interval", e.config.ReportFlushInterval),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.provenance" first (namespaced pattern).
	if cm.IsSet("extensions.provenance") {
		if err := cm.Bind("extensions.provenance", &cfg); err == nil {
			e.Logger().Debug("provenance: loaded config from file",
				forge.F("key", "extensions.provenance"),
			)
			return cfg, true
		}
		e.Logger().Warn("provenance: failed to bind extensions.provenance config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "provenance" key.
	if cm.IsSet("provenance") {
		if err := cm.Bind("provenance", &cfg); err == nil {
			e.Logger().Debug("provenance: loaded config from file",
				forge.F("key", "provenance"),
			)
			return cfg, true
		}
		e.Logger().Warn("provenance: failed to bind provenance config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.ReportBufferSize == 0 {
		cfg.ReportBufferSize = defaults.ReportBufferSize
	}
	if cfg.ReportBatchSize == 0 {
		cfg.ReportBatchSize = defaults.ReportBatchSize
	}
	if cfg.ReportFlushInterval == 0 {
		cfg.ReportFlushInterval = defaults.ReportFlushInterval
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.Network == "" && programmaticConfig.Network != "" {
		yamlConfig.Network = programmaticConfig.Network
	}

	// Duration/int fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.ReportBufferSize == 0 && programmaticConfig.ReportBufferSize != 0 {
		yamlConfig.ReportBufferSize = programmaticConfig.ReportBufferSize
	}
	if yamlConfig.ReportBatchSize == 0 && programmaticConfig.ReportBatchSize != 0 {
		yamlConfig.ReportBatchSize = programmaticConfig.ReportBatchSize
	}
	if yamlConfig.ReportFlushInterval == 0 && programmaticConfig.ReportFlushInterval != 0 {
		yamlConfig.ReportFlushInterval = programmaticConfig.ReportFlushInterval
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
