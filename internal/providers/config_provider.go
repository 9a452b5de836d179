package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"timeclock/internal/structures"

	"github.com/spf13/viper"
)

// devSecret is only applied in debug builds. Production startup fails
// when the secret is empty.
const devSecret = "timeclock-dev-secret"

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "TIMECLOCK_LOG_LEVEL")
	viper.BindEnv("session.secret", "TIMECLOCK_SESSION_SECRET")
	viper.BindEnv("session.validityWindow", "TIMECLOCK_SESSION_WINDOW")
	viper.BindEnv("persistence.saveInterval", "TIMECLOCK_SAVE_INTERVAL")
	viper.BindEnv("persistence.dir", "TIMECLOCK_DATA_DIR")
	viper.BindEnv("cache.enabled", "TIMECLOCK_CACHE_ENABLED")
	viper.BindEnv("cache.size", "TIMECLOCK_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	conf.Debug = flags.DebugMode
	if conf.Session.Secret == "" && conf.Debug {
		conf.Session.Secret = devSecret
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "TimeClockDaemon"
	conf.Path = flags.ConfigPath

	return &conf, nil
}
