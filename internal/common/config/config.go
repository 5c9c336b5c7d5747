// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	EventLog      EventLogConfig     `mapstructure:"event_log"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Integrations  IntegrationConfig  `mapstructure:"integrations"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Admin         AdminConfig        `mapstructure:"admin"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// EventLogConfig holds consumer-group settings for the shared event log.
type EventLogConfig struct {
	ConsumerGroup string   `mapstructure:"consumer_group"`
	ConsumerName  string   `mapstructure:"consumer_name"`
	Topics        []string `mapstructure:"topics"`
	PollTimeout   int      `mapstructure:"poll_timeout"` // milliseconds
	// CommitMode is "at_most_once" (ack before the handler runs, a crash
	// mid-dispatch can drop a notification) or "at_least_once" (ack after
	// the handler returns, duplicates possible).
	CommitMode string `mapstructure:"commit_mode"`
}

const (
	CommitAtMostOnce  = "at_most_once"
	CommitAtLeastOnce = "at_least_once"
)

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ElasticsearchConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	AuditIndex string   `mapstructure:"audit_index"`
}

// IntegrationConfig holds settings for email/SMS transports.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			FromEmail string `mapstructure:"from_email"`
		} `mapstructure:"ses"`
		SNS struct {
			DefaultSMSSenderID string `mapstructure:"default_sms_sender_id"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`

	SMTP struct {
		Host        string `mapstructure:"host"`
		Port        int    `mapstructure:"port"`
		Username    string `mapstructure:"username"`
		Password    string `mapstructure:"password"`
		UseTLS      bool   `mapstructure:"use_tls"`
		DefaultFrom string `mapstructure:"default_from"`
	} `mapstructure:"smtp"`
}

// NotificationConfig holds dispatch behavior settings.
type NotificationConfig struct {
	Email struct {
		Enabled  bool   `mapstructure:"enabled"`
		Provider string `mapstructure:"provider"` // "ses" or "smtp"
	} `mapstructure:"email"`
	SMS struct {
		Enabled           bool   `mapstructure:"enabled"`
		PriorityThreshold string `mapstructure:"priority_threshold"`
	} `mapstructure:"sms"`
	// VerificationDelivery is "send" or "record_only". "record_only" creates
	// and marks the verification record SENT without touching the transport.
	VerificationDelivery string `mapstructure:"verification_delivery"`
	DispatchTimeout      int    `mapstructure:"dispatch_timeout"` // milliseconds
	MaxRetries           int    `mapstructure:"max_retries"`

	PlatformName    string `mapstructure:"platform_name"`
	SupportEmail    string `mapstructure:"support_email"`
	FrontendBaseURL string `mapstructure:"frontend_base_url"`
	LoginURL        string `mapstructure:"login_url"`
}

const (
	VerificationSend       = "send"
	VerificationRecordOnly = "record_only"
)

// AdminConfig holds settings for the operator HTTP surface.
type AdminConfig struct {
	ListenAddress string `mapstructure:"listen_address"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
