package invitation

// Config holds invitation domain configuration.
type Config struct {
	// BaseURL is the base URL for invitation links.
	BaseURL string

	// DefaultListLimit is the page size used when none is requested.
	DefaultListLimit int

	// MaxListLimit caps the requested page size.
	MaxListLimit int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:          "",
		DefaultListLimit: 20,
		MaxListLimit:     100,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DefaultListLimit <= 0 {
		c.DefaultListLimit = 20
	}
	if c.MaxListLimit <= 0 {
		c.MaxListLimit = 100
	}
	return nil
}
