package config

const (
	defaultTimeWindowMinutes     = 1440
	defaultHistoryFile           = "~/.local/share/loopguard/history.db"
	defaultLogFile               = "~/.local/share/loopguard/loopguard.log"
	defaultMaxLogSizeMB          = 10
	defaultMaxLogBackups         = 3
	defaultLogLevel              = "ALL"
	defaultLogFormat             = "console"
	defaultLockTimeoutSeconds    = 5
	defaultGatewayTimeoutSeconds = 10
	defaultNotifierName          = "gotify"
	defaultNotifierPriority      = 5
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		TimeWindowMinutes:     defaultTimeWindowMinutes,
		HistoryFile:           defaultHistoryFile,
		LockTimeoutSeconds:    defaultLockTimeoutSeconds,
		LogFile:               defaultLogFile,
		MaxLogSizeMB:          defaultMaxLogSizeMB,
		MaxLogBackups:         defaultMaxLogBackups,
		LogLevel:              defaultLogLevel,
		LogFormat:             defaultLogFormat,
		VerifySSL:             true,
		UseDuplicateKey:       true,
		GatewayTimeoutSeconds: defaultGatewayTimeoutSeconds,
		Notifier: Notifier{
			Name:     defaultNotifierName,
			Priority: defaultNotifierPriority,
		},
	}
}
