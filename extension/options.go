package extension

import (
	"time"

	"github.com/veralith/provenance"
	"github.com/veralith/provenance/plugin"
	"github.com/veralith/provenance/store"
)

// Option configures the Provenance Forge extension.
type Option func(*Extension)

// WithDialer sets the service dialer for the client. When omitted, the
// extension runs against an in-process devnet over the configured store.
func WithDialer(d provenance.ServiceDialer) Option {
	return func(e *Extension) {
		e.dialer = d
	}
}

// WithStore sets the store backing the in-process devnet. Ignored when
// WithDialer is also given.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithClientOption passes a provenance.Option through to the underlying client.
func WithClientOption(opt provenance.Option) Option {
	return func(e *Extension) {
		e.clientOpts = append(e.clientOpts, opt)
	}
}

// WithPlugin registers a client plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.clientOpts = append(e.clientOpts, provenance.WithPlugin(p))
	}
}

// WithCredential sets the signing credential for the client's session.
func WithCredential(cred provenance.Credential) Option {
	return func(e *Extension) {
		e.clientOpts = append(e.clientOpts, provenance.WithCredential(cred))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents store auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithNetwork selects a built-in network configuration by name.
func WithNetwork(name string) Option {
	return func(e *Extension) { e.config.Network = name }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithReportBufferSize sets the capacity of the usage report buffer.
func WithReportBufferSize(size int) Option {
	return func(e *Extension) { e.config.ReportBufferSize = size }
}

// WithReportBatchSize sets the number of usage events to buffer before flushing.
func WithReportBatchSize(size int) Option {
	return func(e *Extension) { e.config.ReportBatchSize = size }
}

// WithReportFlushInterval sets how frequently the report buffer is flushed.
func WithReportFlushInterval(d time.Duration) Option {
	return func(e *Extension) { e.config.ReportFlushInterval = d }
}
