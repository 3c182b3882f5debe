package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawks/dtr-engine/dtr"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "file", cfg.Roster.Backend)
	assert.Equal(t, dtr.DefaultTimezone, cfg.Attendance.Timezone)
	assert.Equal(t, dtr.Cutoff{Hour: 10, Minute: 0}, cfg.Attendance.Rules.LateCutoff)
	assert.Equal(t, dtr.Cutoff{Hour: 7, Minute: 44}, cfg.Attendance.Rules.MorningPersonCutoff)
	assert.Equal(t, "8", cfg.Attendance.Rules.RequiredHours.String())
	assert.Equal(t, time.Minute, cfg.Reminder.Interval)
	assert.Equal(t, 5*time.Minute, cfg.Reminder.Lead)
	require.NotNil(t, cfg.Attendance.Location)
	assert.Equal(t, "Asia/Manila", cfg.Attendance.Location.String())
}

func TestLoad_OverridesAndFallbacks(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
store:
  path: "/var/lib/dtr/dtr.db"
roster:
  backend: sqlite
attendance:
  timezone: UTC
  late_cutoff: "9:30"
  required_hours: 7
reminder:
  interval: 30s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Roster.Backend)
	assert.Equal(t, dtr.Cutoff{Hour: 9, Minute: 30}, cfg.Attendance.Rules.LateCutoff)
	assert.Equal(t, "7", cfg.Attendance.Rules.RequiredHours.String())
	assert.Equal(t, 30*time.Second, cfg.Reminder.Interval)

	// Unset fields keep their defaults.
	assert.Equal(t, dtr.Cutoff{Hour: 7, Minute: 44}, cfg.Attendance.Rules.MorningPersonCutoff)
	assert.Equal(t, 5*time.Minute, cfg.Reminder.Lead)
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad backend", "roster:\n  backend: ldap\n"},
		{"bad cutoff shape", "attendance:\n  late_cutoff: \"1000\"\n"},
		{"bad cutoff minute", "attendance:\n  late_cutoff: \"10:75\"\n"},
		{"bad timezone", "attendance:\n  timezone: Mars/Olympus\n"},
		{"zero required hours", "attendance:\n  required_hours: 0\n"},
		{"negative interval", "reminder:\n  interval: -1m\n"},
		{"not yaml", "server: [::\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, c.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
