package config

const (
	defaultConfigPath    = "~/.config/totem-disc/config.toml"
	defaultDevice        = "/dev/sr0"
	defaultReadyPolls    = 60
	defaultReadyInterval = 1000
	defaultBackend       = BackendAuto
	defaultDBusTimeout   = 5
	defaultLabelTimeout  = 5
	defaultDataDir       = "~/.local/share/totem-disc"
	defaultLogDir        = "~/.local/share/totem-disc/logs"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Volume monitor backends.
const (
	BackendAuto    = "auto"
	BackendUDisks2 = "udisks2"
	BackendProcfs  = "procfs"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Drive: Drive{
			Device:        defaultDevice,
			ReadyPolls:    defaultReadyPolls,
			ReadyInterval: defaultReadyInterval,
		},
		Monitor: Monitor{
			Backend:      defaultBackend,
			DBusTimeout:  defaultDBusTimeout,
			LabelTimeout: defaultLabelTimeout,
		},
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Watch: Watch{
			RecordHistory:   true,
			ClassifyOnStart: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
