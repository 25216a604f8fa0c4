// Package config resolves the settings shared by every command.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/goblinsan/gh-milestone-tracker/pkg/source"
	"github.com/spf13/viper"
)

// Keys understood by FromViper. Each is also a flag and an environment
// variable (EnvPrefix_KEY with dashes as underscores).
const (
	KeyToken         = "token"
	KeyOwner         = "owner"
	KeyRepo          = "repo"
	KeyBranch        = "branch"
	KeyHistoryBranch = "history-branch"
	KeyDataPath      = "data-path"
	KeyCacheTTL      = "cache-ttl"
	KeyChangelogTTL  = "changelog-ttl"
	KeyRedisAddr     = "redis-addr"
	KeyLocalRepo     = "local-repo"
	KeyLogLevel      = "log-level"
	KeyLogFormat     = "log-format"
	KeyWeekStart     = "week-start"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "GH_MILESTONE_TRACKER"

// Config holds resolved settings.
type Config struct {
	Token        string
	Repository   source.Repository
	CacheTTL     time.Duration
	ChangelogTTL time.Duration
	RedisAddr    string
	LocalRepo    string
	LogLevel     string
	LogFormat    string
	WeekStart    time.Weekday
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyOwner, source.DefaultRepository.Owner)
	v.SetDefault(KeyRepo, source.DefaultRepository.Name)
	v.SetDefault(KeyBranch, source.DefaultRepository.Branch)
	v.SetDefault(KeyHistoryBranch, source.DefaultRepository.HistoryBranch)
	v.SetDefault(KeyDataPath, source.DefaultRepository.DataPath)
	v.SetDefault(KeyCacheTTL, 5*time.Minute)
	v.SetDefault(KeyChangelogTTL, 10*time.Minute)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyWeekStart, "sunday")
}

// FromViper reads and validates the settings held by v.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Token: v.GetString(KeyToken),
		Repository: source.Repository{
			Owner:         v.GetString(KeyOwner),
			Name:          v.GetString(KeyRepo),
			Branch:        v.GetString(KeyBranch),
			HistoryBranch: v.GetString(KeyHistoryBranch),
			DataPath:      v.GetString(KeyDataPath),
		},
		CacheTTL:     v.GetDuration(KeyCacheTTL),
		ChangelogTTL: v.GetDuration(KeyChangelogTTL),
		RedisAddr:    v.GetString(KeyRedisAddr),
		LocalRepo:    v.GetString(KeyLocalRepo),
		LogLevel:     v.GetString(KeyLogLevel),
		LogFormat:    v.GetString(KeyLogFormat),
	}

	if cfg.Repository.Owner == "" || cfg.Repository.Name == "" {
		return Config{}, fmt.Errorf("both %s and %s must be set", KeyOwner, KeyRepo)
	}
	if cfg.Repository.DataPath == "" {
		return Config{}, fmt.Errorf("%s must not be empty", KeyDataPath)
	}
	if cfg.CacheTTL <= 0 || cfg.ChangelogTTL <= 0 {
		return Config{}, fmt.Errorf("%s and %s must be positive durations", KeyCacheTTL, KeyChangelogTTL)
	}
	switch cfg.LogFormat {
	case "json", "console":
	default:
		return Config{}, fmt.Errorf("unsupported %s %q (use json or console)", KeyLogFormat, cfg.LogFormat)
	}

	day, err := ParseWeekday(v.GetString(KeyWeekStart))
	if err != nil {
		return Config{}, err
	}
	cfg.WeekStart = day
	return cfg, nil
}

// ParseWeekday accepts an English day name, case-insensitively.
func ParseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid %s %q", KeyWeekStart, s)
}
