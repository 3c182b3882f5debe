// Package config loads the YAML configuration for the DTR server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/hawks/dtr-engine/dtr"
)

// Config is the full application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Roster     RosterConfig     `yaml:"roster"`
	Attendance AttendanceConfig `yaml:"attendance"`
	Reminder   ReminderConfig   `yaml:"reminder"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// MessagesFile points at the response-flavor messages JSON. Optional;
	// missing file means no flavor lines.
	MessagesFile string `yaml:"messages_file"`
}

// StoreConfig holds event-log persistence settings.
type StoreConfig struct {
	// Path is the SQLite database file. ":memory:" for in-memory.
	Path string `yaml:"path"`
}

// RosterConfig selects where the user directory lives.
type RosterConfig struct {
	// Backend is "file" (users/admins JSON files) or "sqlite" (the event
	// log database's users/admins tables).
	Backend    string `yaml:"backend"`
	UsersFile  string `yaml:"users_file"`
	AdminsFile string `yaml:"admins_file"`
}

// AttendanceConfig holds the attendance policy.
type AttendanceConfig struct {
	// Timezone is the single IANA zone everything is interpreted in.
	Timezone string `yaml:"timezone"`
	// LateCutoff ("10:00") and MorningPersonCutoff ("7:44") are HH:MM.
	LateCutoff          string `yaml:"late_cutoff"`
	MorningPersonCutoff string `yaml:"morning_person_cutoff"`
	RequiredHours       int    `yaml:"required_hours"`

	Location *time.Location `yaml:"-"`
	Rules    dtr.Rules      `yaml:"-"`
}

// ReminderConfig tunes the clock-out reminder pass.
type ReminderConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Interval    time.Duration `yaml:"-"`
	Lead        time.Duration `yaml:"-"`
	IntervalRaw string        `yaml:"interval"`
	LeadRaw     string        `yaml:"lead"`
}

// Default returns the configuration matching the original deployment.
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{Addr: ":8080", MessagesFile: "messages.json"},
		Store:  StoreConfig{Path: "dtr.db"},
		Roster: RosterConfig{Backend: "file", UsersFile: "users.json", AdminsFile: "admins.json"},
		Attendance: AttendanceConfig{
			Timezone:            dtr.DefaultTimezone,
			LateCutoff:          "10:00",
			MorningPersonCutoff: "7:44",
			RequiredHours:       8,
		},
		Reminder: ReminderConfig{Enabled: true, IntervalRaw: "1m", LeadRaw: "5m"},
	}
	if err := cfg.validateAndNormalize(); err != nil {
		panic(err) // defaults are static and always valid
	}
	return cfg
}

// Load reads the configuration from path. Unset fields fall back to the
// defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("config: server.addr must be set")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("config: store.path must be set")
	}

	switch c.Roster.Backend {
	case "file":
		if c.Roster.UsersFile == "" || c.Roster.AdminsFile == "" {
			return fmt.Errorf("config: roster.users_file and roster.admins_file must be set for the file backend")
		}
	case "sqlite":
	default:
		return fmt.Errorf("config: roster.backend must be \"file\" or \"sqlite\", got %q", c.Roster.Backend)
	}

	a := &c.Attendance
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return fmt.Errorf("config: attendance.timezone: %w", err)
	}
	a.Location = loc

	late, err := parseCutoff(a.LateCutoff)
	if err != nil {
		return fmt.Errorf("config: attendance.late_cutoff: %w", err)
	}
	morning, err := parseCutoff(a.MorningPersonCutoff)
	if err != nil {
		return fmt.Errorf("config: attendance.morning_person_cutoff: %w", err)
	}
	if a.RequiredHours <= 0 || a.RequiredHours > 24 {
		return fmt.Errorf("config: attendance.required_hours must be in 1..24, got %d", a.RequiredHours)
	}
	a.Rules = dtr.Rules{
		MorningPersonCutoff: morning,
		LateCutoff:          late,
		RequiredHours:       decimal.NewFromInt(int64(a.RequiredHours)),
	}

	r := &c.Reminder
	if r.Interval, err = parseDurationDefault(r.IntervalRaw, time.Minute); err != nil {
		return fmt.Errorf("config: reminder.interval: %w", err)
	}
	if r.Lead, err = parseDurationDefault(r.LeadRaw, 5*time.Minute); err != nil {
		return fmt.Errorf("config: reminder.lead: %w", err)
	}
	return nil
}

// parseCutoff parses "HH:MM" (leading zero optional).
func parseCutoff(s string) (dtr.Cutoff, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return dtr.Cutoff{}, fmt.Errorf("want HH:MM, got %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return dtr.Cutoff{}, fmt.Errorf("bad hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return dtr.Cutoff{}, fmt.Errorf("bad minute in %q", s)
	}
	return dtr.Cutoff{Hour: hour, Minute: minute}, nil
}

func parseDurationDefault(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %v", d)
	}
	return d, nil
}
