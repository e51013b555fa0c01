package domain

// Config is the runtime configuration, populated from defaults, config.toml and
// SHOWCATALOG__ environment variables.
type Config struct {
	Version            string
	Host               string   `toml:"host" mapstructure:"host"`
	Port               int      `toml:"port" mapstructure:"port"`
	LogLevel           string   `toml:"logLevel" mapstructure:"logLevel"`
	LogPath            string   `toml:"logPath" mapstructure:"logPath"`
	LogMaxSize         int      `toml:"logMaxSize" mapstructure:"logMaxSize"`
	LogMaxBackups      int      `toml:"logMaxBackups" mapstructure:"logMaxBackups"`
	Provider           string   `toml:"provider" mapstructure:"provider"`
	UpstreamBaseURL    string   `toml:"upstreamBaseUrl" mapstructure:"upstreamBaseUrl"`
	UpstreamTimeout    int      `toml:"upstreamTimeout" mapstructure:"upstreamTimeout"`
	BrowseTTL          int      `toml:"browseTTL" mapstructure:"browseTTL"`
	SearchTTL          int      `toml:"searchTTL" mapstructure:"searchTTL"`
	CacheMaxEntries    int      `toml:"cacheMaxEntries" mapstructure:"cacheMaxEntries"`
	DefaultLimit       int      `toml:"defaultLimit" mapstructure:"defaultLimit"`
	SummaryMode        string   `toml:"summaryMode" mapstructure:"summaryMode"`
	MetricsEnabled     bool     `toml:"metricsEnabled" mapstructure:"metricsEnabled"`
	CORSAllowedOrigins []string `toml:"corsAllowedOrigins" mapstructure:"corsAllowedOrigins"`
}
