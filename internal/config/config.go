package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"showcatalog/internal/domain"
)

var envPrefix = "SHOWCATALOG__"

// AppConfig owns the viper instance behind domain.Config.
type AppConfig struct {
	Config  *domain.Config
	viper   *viper.Viper
	version string

	mu sync.RWMutex
}

// New loads configuration from configDirOrPath (a directory holding config.toml or
// the file itself), creating a default file when none exists.
func New(configDirOrPath string, versions ...string) (*AppConfig, error) {
	version := "dev"
	if len(versions) > 0 && strings.TrimSpace(versions[0]) != "" {
		version = versions[0]
	}

	c := &AppConfig{
		viper:   viper.New(),
		Config:  &domain.Config{},
		version: version,
	}

	c.defaults()

	if err := c.load(configDirOrPath); err != nil {
		return nil, err
	}

	c.loadFromEnv()

	if err := c.viper.Unmarshal(c.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	c.Config.Version = c.version

	c.watchConfig()

	return c, nil
}

func (c *AppConfig) defaults() {
	host := "localhost"
	if detectContainer() {
		host = "0.0.0.0"
	}

	c.viper.SetDefault("host", host)
	c.viper.SetDefault("port", 8080)
	c.viper.SetDefault("logLevel", "INFO")
	c.viper.SetDefault("logPath", "")
	c.viper.SetDefault("logMaxSize", 50)
	c.viper.SetDefault("logMaxBackups", 3)
	c.viper.SetDefault("provider", "tvmaze")
	c.viper.SetDefault("upstreamBaseUrl", "https://api.tvmaze.com")
	c.viper.SetDefault("upstreamTimeout", 30)
	c.viper.SetDefault("browseTTL", 1800)
	c.viper.SetDefault("searchTTL", 900)
	c.viper.SetDefault("cacheMaxEntries", 10000)
	c.viper.SetDefault("defaultLimit", 20)
	c.viper.SetDefault("summaryMode", "strip")
	c.viper.SetDefault("metricsEnabled", false)
	c.viper.SetDefault("corsAllowedOrigins", []string{})
}

func (c *AppConfig) load(configDirOrPath string) error {
	c.viper.SetConfigType("toml")

	configPath := filepath.Join(GetDefaultConfigDir(), "config.toml")
	if configDirOrPath != "" {
		configPath = resolveConfigPath(configDirOrPath)
	}
	c.viper.SetConfigFile(configPath)

	if err := c.viper.ReadInConfig(); err != nil {
		if !isNotFound(err) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		if err := c.writeDefaultConfig(configPath); err != nil {
			return err
		}
		if err := c.viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read newly created config: %w", err)
		}
	}

	return nil
}

// isNotFound covers both viper's search error and the fs error an explicit file yields.
func isNotFound(err error) bool {
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return true
	}
	return os.IsNotExist(err)
}

func (c *AppConfig) loadFromEnv() {
	// Explicit bindings only; AutomaticEnv would pick up unrelated variables.
	c.viper.BindEnv("host", envPrefix+"HOST")
	c.viper.BindEnv("port", envPrefix+"PORT")
	c.viper.BindEnv("logLevel", envPrefix+"LOG_LEVEL")
	c.viper.BindEnv("logPath", envPrefix+"LOG_PATH")
	c.viper.BindEnv("logMaxSize", envPrefix+"LOG_MAX_SIZE")
	c.viper.BindEnv("logMaxBackups", envPrefix+"LOG_MAX_BACKUPS")
	c.viper.BindEnv("provider", envPrefix+"PROVIDER")
	c.viper.BindEnv("upstreamBaseUrl", envPrefix+"UPSTREAM_BASE_URL")
	c.viper.BindEnv("upstreamTimeout", envPrefix+"UPSTREAM_TIMEOUT")
	c.viper.BindEnv("browseTTL", envPrefix+"BROWSE_TTL")
	c.viper.BindEnv("searchTTL", envPrefix+"SEARCH_TTL")
	c.viper.BindEnv("cacheMaxEntries", envPrefix+"CACHE_MAX_ENTRIES")
	c.viper.BindEnv("defaultLimit", envPrefix+"DEFAULT_LIMIT")
	c.viper.BindEnv("summaryMode", envPrefix+"SUMMARY_MODE")
	c.viper.BindEnv("metricsEnabled", envPrefix+"METRICS_ENABLED")
	c.viper.BindEnv("corsAllowedOrigins", envPrefix+"CORS_ALLOWED_ORIGINS")
}

// Only logging settings take effect on reload; everything else is read at startup.
func (c *AppConfig) watchConfig() {
	if c.viper.ConfigFileUsed() == "" {
		return
	}
	c.viper.OnConfigChange(func(e fsnotify.Event) {
		log.Info().Msgf("Config file changed: %s", e.Name)

		c.mu.Lock()
		defer c.mu.Unlock()

		if err := c.viper.Unmarshal(c.Config); err != nil {
			log.Error().Err(err).Msg("Failed to reload configuration")
			return
		}
		c.Config.Version = c.version
		c.applyLogConfig()
	})
	c.viper.WatchConfig()
}

// ConfigFileUsed returns the path of the loaded config file.
func (c *AppConfig) ConfigFileUsed() string {
	return c.viper.ConfigFileUsed()
}

// Durations converts the second-based settings into durations.
func (c *AppConfig) Durations() (upstreamTimeout, browseTTL, searchTTL time.Duration) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.Config.UpstreamTimeout) * time.Second,
		time.Duration(c.Config.BrowseTTL) * time.Second,
		time.Duration(c.Config.SearchTTL) * time.Second
}

const configTemplate = `# config.toml - Auto-generated on first run

# Hostname / IP
# Default: "localhost" (or "0.0.0.0" in containers)
host = "{{ .host }}"

# Port
# Default: 8080
port = {{ .port }}

# Log level
# Default: "INFO"
# Options: "ERROR", "WARN", "INFO", "DEBUG", "TRACE"
logLevel = "{{ .logLevel }}"

# Log file path
# If not defined, logs to stderr
# Optional
#logPath = "log/showcatalog.log"

# Log rotation
# Maximum log file size in megabytes before rotation
# Default: {{ .logMaxSize }}
#logMaxSize = {{ .logMaxSize }}

# Number of rotated log files to retain (0 keeps all)
# Default: {{ .logMaxBackups }}
#logMaxBackups = {{ .logMaxBackups }}

# Upstream catalog provider
# Options: "tvmaze", "void"
# Default: "{{ .provider }}"
provider = "{{ .provider }}"

# Upstream API root and request timeout in seconds
upstreamBaseUrl = "{{ .upstreamBaseUrl }}"
upstreamTimeout = {{ .upstreamTimeout }}

# Cache lifetimes in seconds
# Default: browse {{ .browseTTL }}, search {{ .searchTTL }}
browseTTL = {{ .browseTTL }}
searchTTL = {{ .searchTTL }}

# Maximum number of cached pages
#cacheMaxEntries = {{ .cacheMaxEntries }}

# Page size when a request has none
#defaultLimit = {{ .defaultLimit }}

# Summary sanitizer
# "strip" removes tags; "html" extracts the text content of the markup
#summaryMode = "{{ .summaryMode }}"

# Prometheus metrics at /metrics
#metricsEnabled = false

# CORS origins allowed to call the API. Empty allows any origin.
#corsAllowedOrigins = ["https://catalog.example.com"]
`

func (c *AppConfig) writeDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		log.Debug().Msgf("Config file already exists at: %s", path)
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse config template: %w", err)
	}

	settings := map[string]any{}
	for _, key := range []string{
		"host", "port", "logLevel", "logMaxSize", "logMaxBackups", "provider", "upstreamBaseUrl",
		"upstreamTimeout", "browseTTL", "searchTTL", "cacheMaxEntries", "defaultLimit", "summaryMode",
	} {
		settings[key] = c.viper.Get(key)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, settings); err != nil {
		return fmt.Errorf("failed to render config template: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	log.Info().Msgf("Created default config file: %s", path)

	return nil
}

// WriteDefaultConfig writes a commented config.toml to path unless one already exists.
func WriteDefaultConfig(path string) error {
	c := &AppConfig{viper: viper.New()}
	c.defaults()
	return c.writeDefaultConfig(path)
}

// GetDefaultConfigDir returns the OS-specific config directory
func GetDefaultConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if xdgConfig == "/config" {
			return xdgConfig
		}
		return filepath.Join(xdgConfig, "showcatalog")
	}

	home, _ := os.UserHomeDir()
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "showcatalog")
		}
		return filepath.Join(home, "AppData", "Roaming", "showcatalog")
	}
	return filepath.Join(home, ".config", "showcatalog")
}

func detectContainer() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	if _, err := os.Stat("/dev/.lxc-boot-id"); err == nil {
		return true
	}
	return os.Getpid() == 1
}

func resolveConfigPath(configDirOrPath string) string {
	if strings.HasSuffix(strings.ToLower(configDirOrPath), ".toml") {
		return configDirOrPath
	}
	if info, err := os.Stat(configDirOrPath); err == nil && !info.IsDir() {
		return configDirOrPath
	}
	return filepath.Join(configDirOrPath, "config.toml")
}

// ApplyLogConfig installs the configured level and writers on the global logger.
func (c *AppConfig) ApplyLogConfig() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.applyLogConfig()
}

func (c *AppConfig) applyLogConfig() {
	zerolog.TimeFieldFormat = time.RFC3339

	setLogLevel(c.Config.LogLevel)

	writer := baseLogWriter(c.version)
	if c.Config.LogPath != "" {
		multiWriter, err := setupLogFile(c.Config.LogPath, writer, c.Config.LogMaxSize, c.Config.LogMaxBackups)
		if err != nil {
			log.Error().Err(err).Msg("Failed to setup log file")
		} else {
			writer = multiWriter
		}
	}

	log.Logger = log.Logger.Output(writer)
}

func setLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Logger.Level(lvl)
}

func setupLogFile(path string, base io.Writer, maxSize, maxBackups int) (io.Writer, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	if maxSize <= 0 {
		maxSize = 50
	}
	if maxBackups < 0 {
		maxBackups = 0
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
	}

	return io.MultiWriter(base, rotator), nil
}

func baseLogWriter(version string) io.Writer {
	if isDevBuild(version) {
		return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return os.Stderr
}

// InitDefaultLogger configures zerolog before a configuration file is loaded.
func InitDefaultLogger(version string) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Logger.Output(baseLogWriter(version))
}

func isDevBuild(version string) bool {
	v := strings.ToLower(strings.TrimSpace(version))
	return v == "" || v == "dev" || strings.HasSuffix(v, "-dev")
}
