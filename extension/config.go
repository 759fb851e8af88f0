package extension

import "time"

// Config holds the Provenance extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.provenance" or "provenance" keys).
type Config struct {
	// DisableMigrate prevents store auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// Network selects a built-in network configuration by name
	// (e.g. "ethereum", "polygon", "devnet").
	Network string `json:"network" mapstructure:"network" yaml:"network"`

	// ReportBufferSize is the capacity of the asynchronous usage report
	// buffer (default: 10000).
	ReportBufferSize int `json:"report_buffer_size" mapstructure:"report_buffer_size" yaml:"report_buffer_size"`

	// ReportBatchSize is the number of usage events to buffer before
	// flushing to the remote service (default: 100).
	ReportBatchSize int `json:"report_batch_size" mapstructure:"report_batch_size" yaml:"report_batch_size"`

	// ReportFlushInterval is how frequently the report buffer is flushed
	// even if the batch size has not been reached (default: 5s).
	ReportFlushInterval time.Duration `json:"report_flush_interval" mapstructure:"report_flush_interval" yaml:"report_flush_interval"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ReportBufferSize:    10000,
		ReportBatchSize:     100,
		ReportFlushInterval: 5 * time.Second,
	}
}
