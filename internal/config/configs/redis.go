package configs

// Redis configures the connection used by the connector health tracker.
// The tracker is optional: with Enabled false the middleware runs
// without cooldown tracking.
type Redis struct {
	Addr    string `env:"ADDRESS" envDefault:"localhost:6379"`
	DB      int    `env:"DB" envDefault:"0"`
	Enabled bool   `env:"ENABLED" envDefault:"false"`
}
