package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDrive(); err != nil {
		return err
	}
	if err := c.validateMonitor(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDrive() error {
	if c.Drive.Device == "" {
		return errors.New("drive.device must be set (or export TOTEM_DISC_DEVICE)")
	}
	if !strings.HasPrefix(c.Drive.Device, "/") {
		return fmt.Errorf("drive.device must be an absolute path, got %q", c.Drive.Device)
	}
	if c.Drive.ReadyPolls < 0 {
		return errors.New("drive.ready_polls must be positive")
	}
	if c.Drive.ReadyInterval < 0 {
		return errors.New("drive.ready_interval_ms must be positive")
	}
	return nil
}

func (c *Config) validateMonitor() error {
	switch c.Monitor.Backend {
	case BackendAuto, BackendUDisks2, BackendProcfs:
	default:
		return fmt.Errorf("monitor.backend: unsupported value %q (want %s, %s or %s)",
			c.Monitor.Backend, BackendAuto, BackendUDisks2, BackendProcfs)
	}
	if c.Monitor.DBusTimeout < 0 {
		return errors.New("monitor.dbus_timeout must be positive")
	}
	if c.Monitor.LabelTimeout < 0 {
		return errors.New("monitor.label_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
