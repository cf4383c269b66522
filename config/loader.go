package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort           = 16280
	defaultStepMinutes    = 30
	defaultMaxOccurrences = 53

	defaultTimetablePath  = "maps/full_info_trips.json"
	defaultResponsePrefix = "maps/responses/maps_response"
	defaultOptionsPrefix  = "maps/events/event_options"
	defaultDayPrefix      = "maps/day_events"
)

// Load reads and validates the application configuration. YAML carries the
// structure; secrets (routing API key, database DSN, NATS URL) come from the
// environment, with .env honored when present.
func Load(paths ...string) (AppConfig, error) {
	if len(paths) == 0 {
		paths = []string{"config.yml", "./railmatch/config.yml"}
	}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return AppConfig{}, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, err
	}
	applyDefaults(&cfg)
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return AppConfig{}, err
	}

	_ = godotenv.Load()
	cfg.Secrets = Secrets{
		RoutingAPIKey: os.Getenv("ROUTING_API_KEY"),
		DatabaseURL:   getenvDefault("DATABASE_URL", os.Getenv("PG_DSN")),
		NATSURL:       getenvDefault("NATS_URL", "nats://127.0.0.1:4222"),
	}
	return cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
	if cfg.Sampling.StepMinutes == 0 {
		cfg.Sampling.StepMinutes = defaultStepMinutes
	}
	if cfg.Sampling.MaxOccurrences == 0 {
		cfg.Sampling.MaxOccurrences = defaultMaxOccurrences
	}
	if cfg.Paths.TimetablePath == "" {
		cfg.Paths.TimetablePath = defaultTimetablePath
	}
	if cfg.Paths.ResponsePrefix == "" {
		cfg.Paths.ResponsePrefix = defaultResponsePrefix
	}
	if cfg.Paths.OptionsPrefix == "" {
		cfg.Paths.OptionsPrefix = defaultOptionsPrefix
	}
	if cfg.Paths.DayPrefix == "" {
		cfg.Paths.DayPrefix = defaultDayPrefix
	}
	if cfg.NATS.SubjectPrefix == "" {
		cfg.NATS.SubjectPrefix = "events"
	}
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
