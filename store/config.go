package store

// Config holds configuration for the Store.
type Config struct {
	// Table is the shared physical table name.
	// Defaults to the index's table when empty.
	Table string

	// ConsistentRead enables strongly consistent reads for GetItem and
	// Query. Default: false (eventually consistent).
	ConsistentRead bool
}

// DefaultConfig returns a Config that reads the index's own table with
// eventually consistent reads.
func DefaultConfig() Config {
	return Config{}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate(defaultTable string) {
	if c.Table == "" {
		c.Table = defaultTable
	}
}
