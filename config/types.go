package config

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port        int    `yaml:"port" validate:"gt=0"`
	MetricsAddr string `yaml:"metricsAddr"`
}

// TimetableConfig describes the authoritative timetable feed
type TimetableConfig struct {
	StaticURL string `yaml:"staticURL" validate:"omitempty,url"`
	AgencyID  string `yaml:"agency_id" validate:"omitempty"`
	// Operator is the authoritative rail operator name; transit steps run by
	// any other carrier void the whole candidate route.
	Operator  string `yaml:"operator" validate:"required"`
	TimeoutMS int    `yaml:"timeoutMS" validate:"gte=0"`
	// CachePath is a local gob cache of the flattened trip list, consulted
	// before the blob artifact and the static URL. Empty disables caching.
	CachePath string `yaml:"cachePath"`
}

// RoutingConfig describes the external directions service
type RoutingConfig struct {
	Endpoint  string `yaml:"endpoint" validate:"required,url"`
	Region    string `yaml:"region"`
	Language  string `yaml:"language"`
	TimeoutMS int    `yaml:"timeoutMS" validate:"gte=0"`
}

// SamplingConfig controls the event-window sampling loop
type SamplingConfig struct {
	StepMinutes int `yaml:"stepMinutes" validate:"gte=0"`
	// MaxOccurrences bounds weekly recurrence expansion so a malformed
	// recurrence end date cannot produce unbounded work.
	MaxOccurrences int `yaml:"maxOccurrences" validate:"gte=0"`
}

// PathsConfig holds the blob-store namespace prefixes. Passed explicitly to
// each component that reads or writes artifacts; there are no package-level
// path globals.
type PathsConfig struct {
	TimetablePath  string `yaml:"timetablePath"`
	ResponsePrefix string `yaml:"responsePrefix"`
	OptionsPrefix  string `yaml:"optionsPrefix"`
	DayPrefix      string `yaml:"dayPrefix"`
}

// NATSConfig configures the event trigger subscription
type NATSConfig struct {
	SubjectPrefix string `yaml:"subjectPrefix"`
}

// Secrets are loaded from the environment (optionally via .env), never from
// config.yml.
type Secrets struct {
	RoutingAPIKey string
	DatabaseURL   string
	NATSURL       string
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server    ServerConfig    `yaml:"server" validate:"required"`
	Timetable TimetableConfig `yaml:"timetable" validate:"required"`
	Routing   RoutingConfig   `yaml:"routing" validate:"required"`
	Sampling  SamplingConfig  `yaml:"sampling"`
	Paths     PathsConfig     `yaml:"paths"`
	NATS      NATSConfig      `yaml:"nats"`
	Secrets   Secrets         `yaml:"-"`
}
