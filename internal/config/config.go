package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv   = "LEAD_SCANNER_CONFIG"
	imapUsernameEnv = "IMAP_USERNAME"
	imapPasswordEnv = "IMAP_PASSWORD"
	smtpPasswordEnv = "SMTP_PASSWORD"
	databaseDSNEnv  = "DATABASE_DSN"
)

// Config holds high-level settings required across the application.
type Config struct {
	Mail          MailConfig      `yaml:"mail"`
	Notifications NotifyConfig    `yaml:"notifications"`
	Storage       StorageConfig   `yaml:"storage"`
	Scoring       ScoringConfig   `yaml:"scoring"`
	Filters       FilterConfig    `yaml:"filters"`
	Scheduler     SchedulerConfig `yaml:"scheduler"`
	Logging       LoggingConfig   `yaml:"logging"`
}

// MailConfig describes the IMAP source mailbox.
type MailConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Folder       string `yaml:"folder"`
	LookbackDays int    `yaml:"lookbackDays"`
}

// NotifyConfig wires the SMTP alert channel for qualified leads.
type NotifyConfig struct {
	Enabled  bool   `yaml:"enabled"`
	SMTPHost string `yaml:"smtpHost"`
	SMTPPort int    `yaml:"smtpPort"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// StorageConfig locates the lead log, the dedup ledger, and the optional
// Postgres archive.
type StorageConfig struct {
	CSVPath     string `yaml:"csvPath"`
	LedgerPath  string `yaml:"ledgerPath"`
	DatabaseDSN string `yaml:"databaseDSN"`
}

// ScoringConfig carries the signal vocabularies and the qualification bar.
type ScoringConfig struct {
	Threshold  float64  `yaml:"threshold"`
	Keywords   []string `yaml:"keywords"`
	HotIntents []string `yaml:"hotIntents"`
	Cities     []string `yaml:"cities"`
}

// FilterConfig gates which subjects enter the pipeline at all.
type FilterConfig struct {
	SubjectContains []string `yaml:"subjectContains"`
}

// SchedulerConfig selects one-shot or recurring execution.
type SchedulerConfig struct {
	PollInterval string `yaml:"pollInterval"`
}

// Interval resolves the poll interval; zero means run once and exit.
func (s SchedulerConfig) Interval() time.Duration {
	if s.PollInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(s.PollInterval)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// LoggingConfig controls console log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load resolves configuration in layers: compiled defaults, then the YAML
// file named by LEAD_SCANNER_CONFIG, then env overrides for secrets. A config
// path that is set but unreadable or unparsable is a fatal error.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(imapUsernameEnv); v != "" {
		c.Mail.Username = v
	}

	if v := os.Getenv(imapPasswordEnv); v != "" {
		c.Mail.Password = v
	}

	if v := os.Getenv(smtpPasswordEnv); v != "" {
		c.Notifications.Password = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Storage.DatabaseDSN = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Mail.Host != "" {
		base.Mail.Host = override.Mail.Host
	}
	if override.Mail.Port != 0 {
		base.Mail.Port = override.Mail.Port
	}
	if override.Mail.Username != "" {
		base.Mail.Username = override.Mail.Username
	}
	if override.Mail.Password != "" {
		base.Mail.Password = override.Mail.Password
	}
	if override.Mail.Folder != "" {
		base.Mail.Folder = override.Mail.Folder
	}
	if override.Mail.LookbackDays != 0 {
		base.Mail.LookbackDays = override.Mail.LookbackDays
	}

	if override.Notifications.Enabled {
		base.Notifications.Enabled = true
	}
	if override.Notifications.SMTPHost != "" {
		base.Notifications.SMTPHost = override.Notifications.SMTPHost
	}
	if override.Notifications.SMTPPort != 0 {
		base.Notifications.SMTPPort = override.Notifications.SMTPPort
	}
	if override.Notifications.Username != "" {
		base.Notifications.Username = override.Notifications.Username
	}
	if override.Notifications.Password != "" {
		base.Notifications.Password = override.Notifications.Password
	}
	if override.Notifications.From != "" {
		base.Notifications.From = override.Notifications.From
	}
	if override.Notifications.To != "" {
		base.Notifications.To = override.Notifications.To
	}

	if override.Storage.CSVPath != "" {
		base.Storage.CSVPath = override.Storage.CSVPath
	}
	if override.Storage.LedgerPath != "" {
		base.Storage.LedgerPath = override.Storage.LedgerPath
	}
	if override.Storage.DatabaseDSN != "" {
		base.Storage.DatabaseDSN = override.Storage.DatabaseDSN
	}

	if override.Scoring.Threshold != 0 {
		base.Scoring.Threshold = override.Scoring.Threshold
	}
	if len(override.Scoring.Keywords) > 0 {
		base.Scoring.Keywords = override.Scoring.Keywords
	}
	if len(override.Scoring.HotIntents) > 0 {
		base.Scoring.HotIntents = override.Scoring.HotIntents
	}
	if len(override.Scoring.Cities) > 0 {
		base.Scoring.Cities = override.Scoring.Cities
	}

	if len(override.Filters.SubjectContains) > 0 {
		base.Filters.SubjectContains = override.Filters.SubjectContains
	}

	if override.Scheduler.PollInterval != "" {
		base.Scheduler.PollInterval = override.Scheduler.PollInterval
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Mail: MailConfig{
			Host:         "imap.gmail.com",
			Port:         993,
			Folder:       "INBOX",
			LookbackDays: 3,
		},
		Notifications: NotifyConfig{
			Enabled:  false,
			SMTPHost: "smtp.gmail.com",
			SMTPPort: 587,
		},
		Storage: StorageConfig{
			CSVPath:    "data/leads.csv",
			LedgerPath: "data/processed.yaml",
		},
		Scoring: ScoringConfig{
			Threshold:  0.65,
			Keywords:   []string{"ceramic coating", "detail", "detailing", "interior", "wash", "wax"},
			HotIntents: []string{"today", "tomorrow", "asap", "this week", "right now"},
			Cities:     []string{"Dallas", "Plano", "Frisco", "Arlington", "Irving", "Garland", "McKinney", "Fort Worth"},
		},
		Filters: FilterConfig{
			SubjectContains: []string{"inquiry", "interested", "new message", "offerup", "marketplace"},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
