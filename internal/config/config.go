// Package config loads the game configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lawnchairsociety/dragogauntlet/internal/logger"
	"gopkg.in/yaml.v3"
)

// Config is the root of data/config.yaml.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Generator  GeneratorConfig  `yaml:"generator"`
	Simulation SimulationConfig `yaml:"simulation"`
	Logging    logger.Config    `yaml:"logging"`
}

// ServerConfig holds the HTTP and WebSocket settings.
type ServerConfig struct {
	Address string `yaml:"address"`

	// AllowedOrigins is a list of origins allowed to open the game socket.
	// Empty list enforces same-origin policy; "*" allows all.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the maximum inbound WebSocket message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`

	// MaxConnections caps concurrent game sockets. 0 means unlimited.
	MaxConnections int `yaml:"max_connections"`

	// MaxPerIP caps concurrent game sockets from one address. 0 means unlimited.
	MaxPerIP int `yaml:"max_per_ip"`

	// BroadcastEvery is the number of ticks between frame pushes.
	BroadcastEvery int `yaml:"broadcast_every"`

	// EditorPasswordHash is a bcrypt hash guarding the save endpoint.
	// Empty leaves saving open.
	EditorPasswordHash string `yaml:"editor_password_hash"`

	// AuthRateLimit locks out addresses that keep failing editor auth.
	AuthRateLimit RateLimitConfig `yaml:"auth_rate_limit"`
}

// RateLimitConfig sets the lockout policy for failed editor logins.
type RateLimitConfig struct {
	MaxAttempts       int `yaml:"max_attempts"`
	LockoutSeconds    int `yaml:"lockout_seconds"`
	MaxLockoutSeconds int `yaml:"max_lockout_seconds"`
}

// StorageConfig selects where level documents live.
type StorageConfig struct {
	// Driver is "file", "sqlite" or "postgres".
	Driver     string         `yaml:"driver"`
	LevelsDir  string         `yaml:"levels_dir"`
	SQLitePath string         `yaml:"sqlite_path"`
	Postgres   PostgresConfig `yaml:"postgres"`
}

// Storage drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the lib/pq connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// Generator modes.
const (
	ModeRooms   = "rooms"
	ModeMaze    = "maze"
	ModeRegions = "regions"
)

// GeneratorConfig parameterizes procedural levels.
type GeneratorConfig struct {
	Mode          string  `yaml:"mode"`
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	RoomSize      [2]int  `yaml:"room_size"`
	RoomSizeSigma [2]int  `yaml:"room_size_sigma"`
	NearLimit     float64 `yaml:"near_limit"`
	RegionCount   int     `yaml:"region_count"`

	WaterMeanLength int     `yaml:"water_mean_length"`
	WaterSigma      int     `yaml:"water_sigma"`
	TreeFraction    float64 `yaml:"tree_fraction"`

	// RepairReachability opens walls between disconnected floor regions after
	// population. Off by default: room mode can leave rooms unreachable.
	RepairReachability bool `yaml:"repair_reachability"`

	// Seed of 0 means derive one from the clock at startup.
	Seed int64 `yaml:"seed"`
}

// SimulationConfig holds the tick rate and per-kind gameplay numbers.
type SimulationConfig struct {
	TickRate     int              `yaml:"tick_rate"`
	GridSize     int              `yaml:"grid_size"`
	RevealRadius int              `yaml:"reveal_radius"`
	ExitScore    int              `yaml:"exit_score"`
	Player       PlayerConfig     `yaml:"player"`
	Melee        EnemyConfig      `yaml:"melee"`
	Ranged       EnemyConfig      `yaml:"ranged"`
	Boss         EnemyConfig      `yaml:"boss"`
	Projectile   ProjectileConfig `yaml:"projectile"`
	Pickups      PickupConfig     `yaml:"pickups"`
}

// PlayerConfig holds the player's starting stats and action intervals in ticks.
type PlayerConfig struct {
	HP               int `yaml:"hp"`
	MoveInterval     int `yaml:"move_interval"`
	ShotInterval     int `yaml:"shot_interval"`
	FireballInterval int `yaml:"fireball_interval"`
	StartArrows      int `yaml:"start_arrows"`
	StartFireballs   int `yaml:"start_fireballs"`
}

// EnemyConfig describes one enemy kind. Distances are in cells. Reach only
// applies to melee strikers; a ranged enemy's Damage is what its arrows deal.
type EnemyConfig struct {
	HP       int     `yaml:"hp"`
	Engage   float64 `yaml:"engage"`
	Cooldown int     `yaml:"cooldown"`
	Reach    float64 `yaml:"reach"`
	Damage   int     `yaml:"damage"`
	Score    int     `yaml:"score"`
}

// ProjectileConfig holds arrow and fireball physics. Distances are in cells.
type ProjectileConfig struct {
	Speed          float64 `yaml:"speed"`
	ArrowDamage    int     `yaml:"arrow_damage"`
	FireballDamage int     `yaml:"fireball_damage"`
	BlastStart     float64 `yaml:"blast_start"`
	BlastGrowth    float64 `yaml:"blast_growth"`
	BlastCap       float64 `yaml:"blast_cap"`
	MaxFlight      int     `yaml:"max_flight"`
}

// PickupConfig holds the inclusive quantity ranges sampled per pickup.
type PickupConfig struct {
	Health    [2]int `yaml:"health"`
	Arrows    [2]int `yaml:"arrows"`
	Fireballs [2]int `yaml:"fireballs"`
}

// DefaultConfig returns the shipped configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:        ":8080",
			AllowedOrigins: []string{},
			MaxMessageSize: 4096,
			MaxConnections: 8,
			MaxPerIP:       4,
			BroadcastEvery: 1,
			AuthRateLimit: RateLimitConfig{
				MaxAttempts:       5,
				LockoutSeconds:    30,
				MaxLockoutSeconds: 300,
			},
		},
		Storage: StorageConfig{
			Driver:     DriverFile,
			LevelsDir:  "levels",
			SQLitePath: "data/levels.db",
			Postgres: PostgresConfig{
				Host:    "localhost",
				Port:    5432,
				SSLMode: "disable",
			},
		},
		Generator:  DefaultGeneratorConfig(),
		Simulation: DefaultSimulationConfig(),
		Logging:    logger.DefaultConfig(),
	}
}

// DefaultGeneratorConfig returns the room-mode defaults.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Mode:            ModeRooms,
		Width:           60,
		Height:          60,
		RoomSize:        [2]int{6, 4},
		RoomSizeSigma:   [2]int{4, 4},
		NearLimit:       5,
		RegionCount:     8,
		WaterMeanLength: 20,
		WaterSigma:      10,
		TreeFraction:    0.3,
	}
}

// DefaultSimulationConfig returns the shipped gameplay numbers.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		TickRate:     30,
		GridSize:     32,
		RevealRadius: 6,
		ExitScore:    50,
		Player: PlayerConfig{
			HP:               10,
			MoveInterval:     4,
			ShotInterval:     10,
			FireballInterval: 20,
			StartArrows:      10,
			StartFireballs:   1,
		},
		Melee:  EnemyConfig{HP: 3, Engage: 8, Cooldown: 15, Reach: 1.5, Damage: 1, Score: 10},
		Ranged: EnemyConfig{HP: 2, Engage: 10, Cooldown: 30, Damage: 1, Score: 15},
		Boss:   EnemyConfig{HP: 12, Engage: 12, Cooldown: 20, Reach: 2.5, Damage: 3, Score: 100},
		Projectile: ProjectileConfig{
			Speed:          0.3,
			ArrowDamage:    1,
			FireballDamage: 3,
			BlastStart:     0.5,
			BlastGrowth:    0.25,
			BlastCap:       2.5,
			MaxFlight:      400,
		},
		Pickups: PickupConfig{
			Health:    [2]int{1, 3},
			Arrows:    [2]int{3, 8},
			Fireballs: [2]int{1, 2},
		},
	}
}

// LoadConfig loads configuration from a YAML file over the defaults and
// applies environment overrides. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return config, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnv(config)

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func applyEnv(config *Config) {
	if addr := os.Getenv("DRAGO_ADDRESS"); addr != "" {
		config.Server.Address = addr
	}
	if seed := os.Getenv("DRAGO_SEED"); seed != "" {
		if v, err := strconv.ParseInt(seed, 10, 64); err == nil {
			config.Generator.Seed = v
		}
	}
	if driver := os.Getenv("DRAGO_STORAGE_DRIVER"); driver != "" {
		config.Storage.Driver = driver
	}
	logger.ApplyEnv(&config.Logging)
}

// Validate reports every impossible setting.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case DriverFile, DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q must be file, sqlite or postgres", c.Storage.Driver))
	}

	g := c.Generator
	switch g.Mode {
	case ModeRooms, ModeMaze, ModeRegions:
	default:
		errs = append(errs, fmt.Errorf("generator.mode %q must be rooms, maze or regions", g.Mode))
	}
	if g.Width < 16 || g.Height < 16 {
		errs = append(errs, fmt.Errorf("generator size %dx%d is below 16x16", g.Width, g.Height))
	}
	if g.RoomSize[0] <= 0 || g.RoomSize[1] <= 0 {
		errs = append(errs, errors.New("generator.room_size must be positive"))
	}
	if g.WaterMeanLength <= 0 {
		errs = append(errs, errors.New("generator.water_mean_length must be positive"))
	}
	if g.TreeFraction < 0 || g.TreeFraction > 1 {
		errs = append(errs, errors.New("generator.tree_fraction must be in [0, 1]"))
	}

	s := c.Simulation
	if s.TickRate <= 0 {
		errs = append(errs, errors.New("simulation.tick_rate must be positive"))
	}
	if s.GridSize <= 0 {
		errs = append(errs, errors.New("simulation.grid_size must be positive"))
	}
	if s.Player.HP <= 0 {
		errs = append(errs, errors.New("simulation.player.hp must be positive"))
	}
	for name, e := range map[string]EnemyConfig{"melee": s.Melee, "ranged": s.Ranged, "boss": s.Boss} {
		if e.Cooldown <= 0 || e.HP <= 0 {
			errs = append(errs, fmt.Errorf("simulation.%s needs positive hp and cooldown", name))
		}
	}
	if s.Projectile.Speed <= 0 || s.Projectile.Speed >= 1 {
		errs = append(errs, errors.New("simulation.projectile.speed must be in (0, 1)"))
	}
	if s.Projectile.BlastGrowth <= 0 {
		errs = append(errs, errors.New("simulation.projectile.blast_growth must be positive"))
	}

	if c.Server.BroadcastEvery <= 0 {
		errs = append(errs, errors.New("server.broadcast_every must be positive"))
	}

	return errors.Join(errs...)
}

// IsOriginAllowed checks if the given origin may open the game socket.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *ServerConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}

// isSameOrigin checks if the origin matches the request host (same-origin policy).
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // non-browser client
	}

	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}
