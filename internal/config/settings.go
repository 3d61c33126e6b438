package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Setting keys.
const (
	KeyInboxListName    = "inbox_list_name"
	KeyDailyListPrefix  = "daily_list_prefix"
	KeyDateFormat       = "daily_list_date_format"
	KeyTimezone         = "timezone"
	KeyExecutionTimeout = "execution_timeout_seconds"
	KeyLockWait         = "lock_wait_seconds"
	KeyAutoMoveDue      = "auto_move_due_tasks"
	KeyTrackRollovers   = "track_rollovers"
	KeyDigestDay        = "digest_day"
	KeyDigestEnabled    = "digest_enabled"
	KeyNotifyEmail      = "notify_email"
	KeyRunLogBackend    = "run_log.backend"
	KeySpreadsheetID    = "run_log.spreadsheet_id"
	KeySheetName        = "run_log.sheet_name"
	KeyPostgresDSN      = "run_log.postgres_dsn"
	KeyRetryMaxElapsed  = "retry.max_elapsed_seconds"
)

// Run log backends.
const (
	RunLogSheets   = "sheets"
	RunLogPostgres = "postgres"
	RunLogNone     = "none"
)

// EnvPrefix prefixes environment overrides, e.g. GTASKROLL_INBOX_LIST_NAME.
const EnvPrefix = "GTASKROLL"

// Settings is a flat key/value store with typed getters and documented defaults.
type Settings struct {
	v *viper.Viper
}

// LoadSettings reads settings from path (a missing file is not an error)
// layered over environment overrides and defaults.
func LoadSettings(path string) (*Settings, error) {
	v := newViper()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return &Settings{v: v}, nil
}

// NewSettings returns settings holding only defaults plus the given overrides.
func NewSettings(overrides map[string]any) *Settings {
	v := newViper()
	for k, val := range overrides {
		v.Set(k, val)
	}
	return &Settings{v: v}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyInboxListName, "Inbox")
	v.SetDefault(KeyDailyListPrefix, "[Daily]")
	v.SetDefault(KeyDateFormat, "January 2, 2006")
	v.SetDefault(KeyTimezone, "")
	v.SetDefault(KeyExecutionTimeout, 270)
	v.SetDefault(KeyLockWait, 30)
	v.SetDefault(KeyAutoMoveDue, true)
	v.SetDefault(KeyTrackRollovers, true)
	v.SetDefault(KeyDigestDay, "Monday")
	v.SetDefault(KeyDigestEnabled, true)
	v.SetDefault(KeyNotifyEmail, "")
	v.SetDefault(KeyRunLogBackend, RunLogSheets)
	v.SetDefault(KeySpreadsheetID, "")
	v.SetDefault(KeySheetName, "Runs")
	v.SetDefault(KeyPostgresDSN, "")
	v.SetDefault(KeyRetryMaxElapsed, 30)
	return v
}

// Get returns the raw string value for key.
func (s *Settings) Get(key string) string { return s.v.GetString(key) }

// InboxName is the exact title of the catch-all inbox list.
func (s *Settings) InboxName() string { return s.v.GetString(KeyInboxListName) }

// DailyPrefix is the title prefix shared by all daily lists.
func (s *Settings) DailyPrefix() string { return s.v.GetString(KeyDailyListPrefix) }

// DateFormat is the Go layout appended to the prefix to name a daily list.
func (s *Settings) DateFormat() string { return s.v.GetString(KeyDateFormat) }

// Location returns the configured time zone, or the host's when unset.
func (s *Settings) Location() (*time.Location, error) {
	name := strings.TrimSpace(s.v.GetString(KeyTimezone))
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", KeyTimezone, name, err)
	}
	return loc, nil
}

// ExecutionTimeout is the soft wall-clock budget of a run.
func (s *Settings) ExecutionTimeout() time.Duration {
	return time.Duration(s.v.GetInt(KeyExecutionTimeout)) * time.Second
}

// LockWait bounds how long a run waits for the single-instance lock.
func (s *Settings) LockWait() time.Duration {
	return time.Duration(s.v.GetInt(KeyLockWait)) * time.Second
}

func (s *Settings) AutoMoveDueTasks() bool { return s.v.GetBool(KeyAutoMoveDue) }
func (s *Settings) TrackRollovers() bool   { return s.v.GetBool(KeyTrackRollovers) }
func (s *Settings) DigestEnabled() bool    { return s.v.GetBool(KeyDigestEnabled) }
func (s *Settings) NotifyEmail() string    { return s.v.GetString(KeyNotifyEmail) }
func (s *Settings) SpreadsheetID() string  { return s.v.GetString(KeySpreadsheetID) }
func (s *Settings) SheetName() string      { return s.v.GetString(KeySheetName) }
func (s *Settings) PostgresDSN() string    { return s.v.GetString(KeyPostgresDSN) }

// RunLogBackend is one of RunLogSheets, RunLogPostgres or RunLogNone.
func (s *Settings) RunLogBackend() string {
	return strings.ToLower(strings.TrimSpace(s.v.GetString(KeyRunLogBackend)))
}

// RetryMaxElapsed caps the total time spent retrying one backend call.
func (s *Settings) RetryMaxElapsed() time.Duration {
	return time.Duration(s.v.GetInt(KeyRetryMaxElapsed)) * time.Second
}

// DigestDay is the weekday on which the weekly digest is sent.
func (s *Settings) DigestDay() (time.Weekday, error) {
	return ParseWeekday(s.v.GetString(KeyDigestDay))
}

// ParseWeekday accepts full or three-letter English weekday names, case-insensitive.
func ParseWeekday(name string) (time.Weekday, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if n == full || n == full[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid weekday: %q", name)
}
