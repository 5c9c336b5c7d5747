// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like EVENT_LOG_CONSUMER_GROUP
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, e.g. config.production.yaml
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	// Try multiple paths (for running from different directories)
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars rewrites ${VAR} placeholders in string settings.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)
		if s, ok := val.(string); ok && strings.Contains(s, "${") {
			v.Set(key, os.ExpandEnv(s))
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "legalease-notifications"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.EventLog.ConsumerGroup == "" {
		cfg.EventLog.ConsumerGroup = "notification_service"
	}
	if cfg.EventLog.ConsumerName == "" {
		host, _ := os.Hostname()
		if host == "" {
			host = "worker"
		}
		cfg.EventLog.ConsumerName = fmt.Sprintf("%s-%d", host, os.Getpid())
	}
	if len(cfg.EventLog.Topics) == 0 {
		cfg.EventLog.Topics = DefaultTopics()
	}
	if cfg.EventLog.PollTimeout <= 0 {
		cfg.EventLog.PollTimeout = 1000
	}
	if cfg.EventLog.CommitMode == "" {
		cfg.EventLog.CommitMode = CommitAtMostOnce
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = "localhost:6379"
	}
	if cfg.Database.Elasticsearch.AuditIndex == "" {
		cfg.Database.Elasticsearch.AuditIndex = "notification-audit"
	}

	if cfg.Notifications.Email.Provider == "" {
		cfg.Notifications.Email.Provider = "smtp"
	}
	if cfg.Notifications.VerificationDelivery == "" {
		cfg.Notifications.VerificationDelivery = VerificationSend
	}
	if cfg.Notifications.DispatchTimeout <= 0 {
		cfg.Notifications.DispatchTimeout = 10000
	}
	if cfg.Notifications.MaxRetries <= 0 {
		cfg.Notifications.MaxRetries = 3
	}
	if cfg.Notifications.SMS.PriorityThreshold == "" {
		cfg.Notifications.SMS.PriorityThreshold = "URGENT"
	}
	if cfg.Notifications.PlatformName == "" {
		cfg.Notifications.PlatformName = "Legal Ease"
	}
	if cfg.Notifications.SupportEmail == "" {
		cfg.Notifications.SupportEmail = "support@legalease.com"
	}
	if cfg.Notifications.FrontendBaseURL == "" {
		cfg.Notifications.FrontendBaseURL = "http://localhost:3000"
	}
	if cfg.Notifications.LoginURL == "" {
		cfg.Notifications.LoginURL = cfg.Notifications.FrontendBaseURL + "/login"
	}

	if cfg.Admin.ListenAddress == "" {
		cfg.Admin.ListenAddress = ":8085"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// DefaultTopics returns the recognized event topics.
func DefaultTopics() []string {
	return []string{
		"user_signed_up",
		"user_verified",
		"user_logged_in",
		"password_reset_requested",
		"hearing_scheduled",
		"case_updated",
		"document_shared",
		"payment_completed",
	}
}

func validateConfig(cfg *Config) error {
	switch cfg.EventLog.CommitMode {
	case CommitAtMostOnce, CommitAtLeastOnce:
	default:
		return fmt.Errorf("event_log.commit_mode must be %q or %q, got %q",
			CommitAtMostOnce, CommitAtLeastOnce, cfg.EventLog.CommitMode)
	}

	switch cfg.Notifications.VerificationDelivery {
	case VerificationSend, VerificationRecordOnly:
	default:
		return fmt.Errorf("notifications.verification_delivery must be %q or %q, got %q",
			VerificationSend, VerificationRecordOnly, cfg.Notifications.VerificationDelivery)
	}

	switch cfg.Notifications.Email.Provider {
	case "ses", "smtp":
	default:
		return fmt.Errorf("notifications.email.provider must be \"ses\" or \"smtp\", got %q",
			cfg.Notifications.Email.Provider)
	}

	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}

	return nil
}
