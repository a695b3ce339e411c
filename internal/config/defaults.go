package config

const (
	defaultDataDir                = "~/.local/share/onboard"
	defaultLogDir                 = "~/.local/share/onboard/logs"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultInProgressDamping      = 0.7
	defaultSkipCredit             = 0.5
	defaultPersistTimeoutSeconds  = 5
	defaultAutosaveTimeoutSeconds = 2
	defaultNotifyRequestTimeout   = 10
	defaultSkipThreshold          = 5
	defaultActivationTimeout      = 15
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Scoring: Scoring{
			InProgressDamping: defaultInProgressDamping,
			SkipCredit:        defaultSkipCredit,
		},
		Engine: Engine{
			PersistTimeoutSeconds:  defaultPersistTimeoutSeconds,
			AutosaveTimeoutSeconds: defaultAutosaveTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Completion:     true,
			Errors:         true,
			SkipThreshold:  defaultSkipThreshold,
		},
		Activation: Activation{
			TimeoutSeconds: defaultActivationTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
