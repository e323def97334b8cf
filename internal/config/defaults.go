package config

const (
	defaultConfigPath           = "~/.config/prunarr/config.toml"
	defaultRequestsFile         = "data/movies_to_delete.csv"
	defaultResultsDir           = "results"
	defaultLogDir               = "~/.local/share/prunarr/logs"
	defaultStateDir             = "~/.local/share/prunarr"
	defaultRadarrURL            = "http://localhost:7878"
	defaultRadarrRequestTimeout = 30
	defaultRadarrRequestsPerSec = 5
	defaultNotifyTimeout        = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 60
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			RequestsFile: defaultRequestsFile,
			ResultsDir:   defaultResultsDir,
			LogDir:       defaultLogDir,
			StateDir:     defaultStateDir,
		},
		Radarr: Radarr{
			URL:               defaultRadarrURL,
			RequestTimeout:    defaultRadarrRequestTimeout,
			RequestsPerSecond: defaultRadarrRequestsPerSec,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			RunCompleted:   true,
			Errors:         true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		History: History{
			Enabled: true,
		},
	}
}
