package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"mahjong-realm/models"
)

// Config is the root of the server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Game    GameConfig    `yaml:"game"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
	// AllowedOrigins restricts websocket upgrades. Empty allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type StorageConfig struct {
	Type string `yaml:"type"` // memory, json, postgres or badger
	DSN  string `yaml:"dsn"`
	File string `yaml:"file"`
	Dir  string `yaml:"dir"`
}

type GameConfig struct {
	Breakpoints     []float64       `yaml:"breakpoints"`
	TileSize        models.TileSize `yaml:"tile_size"`
	Lerp            float64         `yaml:"lerp"`
	TickRate        int             `yaml:"tick_rate"`
	MatchRule       string          `yaml:"match_rule"`
	DisableInput    *bool           `yaml:"disable_input_during_match"`
	DefaultTemplate string          `yaml:"default_template"`
	TemplatesFile   string          `yaml:"templates_file"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

const (
	defaultPort            = 8080
	defaultDSN             = "host=localhost user=mahjong password=mahjong dbname=mahjong sslmode=disable"
	defaultFile            = "db.json"
	defaultDir             = "data"
	defaultTickRate        = 30
	defaultDefaultTemplate = "wizard_hat"
)

var defaultBreakpoints = []float64{0.8, 1.1, 1.6}

var storageTypes = map[string]bool{"memory": true, "json": true, "postgres": true, "badger": true}

// Load reads the YAML file at path. When path is empty GAME_CONFIG is
// consulted; with neither set the defaults are returned. Unset values fall
// back to the environment, then to built-in defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("GAME_CONFIG")
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default is the configuration used when nothing is set.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	c.Server.Port = intWithEnvFallback(c.Server.Port, "PORT", defaultPort)
	c.Storage.Type = strings.ToLower(stringWithEnvFallback(c.Storage.Type, "DB_TYPE", "json"))
	c.Storage.DSN = stringWithEnvFallback(c.Storage.DSN, "DATABASE_URL", defaultDSN)
	c.Storage.File = stringWithEnvFallback(c.Storage.File, "DB_FILE", defaultFile)
	c.Storage.Dir = stringWithEnvFallback(c.Storage.Dir, "DB_DIR", defaultDir)

	g := &c.Game
	if g.Breakpoints == nil {
		g.Breakpoints = append([]float64(nil), defaultBreakpoints...)
	}
	sort.Float64s(g.Breakpoints)
	if g.TileSize == (models.TileSize{}) {
		g.TileSize = models.DefaultTileSize
	}
	if g.Lerp == 0 {
		g.Lerp = 0.1
	}
	if g.TickRate == 0 {
		g.TickRate = defaultTickRate
	}
	if g.MatchRule == "" {
		g.MatchRule = "any"
	}
	if g.DisableInput == nil {
		on := true
		g.DisableInput = &on
	}
	if g.DefaultTemplate == "" {
		g.DefaultTemplate = defaultDefaultTemplate
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if !storageTypes[c.Storage.Type] {
		errs = append(errs, fmt.Errorf("storage.type %q is not one of memory, json, postgres, badger", c.Storage.Type))
	}
	if len(c.Game.Breakpoints) == 0 {
		errs = append(errs, errors.New("game.breakpoints must not be empty"))
	}
	for _, b := range c.Game.Breakpoints {
		if b <= 0 {
			errs = append(errs, fmt.Errorf("game.breakpoints: %v is not positive", b))
		}
	}
	if c.Game.TileSize.W <= 0 || c.Game.TileSize.H <= 0 {
		errs = append(errs, errors.New("game.tile_size needs positive width and height"))
	}
	if c.Game.Lerp <= 0 || c.Game.Lerp > 1 {
		errs = append(errs, fmt.Errorf("game.lerp %v not in (0,1]", c.Game.Lerp))
	}
	if c.Game.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("game.tick_rate %d must be positive", c.Game.TickRate))
	}
	if c.Game.MatchRule != "any" && c.Game.MatchRule != "face" {
		errs = append(errs, fmt.Errorf("game.match_rule %q is not any or face", c.Game.MatchRule))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// TickInterval is the period of the session ticker.
func (g GameConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(g.TickRate)
}

// InputDisabledDuringMatch reports the effective input gating flag.
func (g GameConfig) InputDisabledDuringMatch() bool {
	return g.DisableInput == nil || *g.DisableInput
}

// SlogLevel parses the configured level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// intWithEnvFallback resolves a value with priority config -> env -> default
func intWithEnvFallback(value int, envVar string, def int) int {
	if value > 0 {
		return value
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func stringWithEnvFallback(value, envVar, def string) string {
	if value != "" {
		return value
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		return envVal
	}
	return def
}
