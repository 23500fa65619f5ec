package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeDrive()
	c.normalizeMonitor()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeDrive() {
	if value, ok := os.LookupEnv("TOTEM_DISC_DEVICE"); ok && strings.TrimSpace(value) != "" {
		c.Drive.Device = value
	}
	c.Drive.Device = strings.TrimSpace(c.Drive.Device)
	if c.Drive.ReadyPolls == 0 {
		c.Drive.ReadyPolls = defaultReadyPolls
	}
	if c.Drive.ReadyInterval == 0 {
		c.Drive.ReadyInterval = defaultReadyInterval
	}
}

func (c *Config) normalizeMonitor() {
	c.Monitor.Backend = strings.ToLower(strings.TrimSpace(c.Monitor.Backend))
	if c.Monitor.Backend == "" {
		c.Monitor.Backend = defaultBackend
	}
	if c.Monitor.DBusTimeout == 0 {
		c.Monitor.DBusTimeout = defaultDBusTimeout
	}
	if c.Monitor.LabelTimeout == 0 {
		c.Monitor.LabelTimeout = defaultLabelTimeout
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
