package config

import (
	"fmt"
	"strings"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Transport kinds.
const (
	TransportSPI = "spi"
	TransportSim = "sim"
)

const envPrefix = "ADRV_"

type ServerConf struct {
	Host      string `koanf:"host"`
	Port      string `koanf:"port"`
	BodyLimit int    `koanf:"body_limit"`
}

type AuthConf struct {
	PasswordHash string `koanf:"password_hash"`
}

type LogConf struct {
	Level string `koanf:"level"`
}

type TransportConf struct {
	Kind      string `koanf:"kind"`
	SPIDevice string `koanf:"spi_device"`
	SPISpeed  uint32 `koanf:"spi_speed"`
	Retries   uint64 `koanf:"retries"`
}

type GpioConf struct {
	Chip     string `koanf:"chip"`
	ResetPin int    `koanf:"reset_pin"`
}

type DeviceConf struct {
	Profile string `koanf:"profile"`
}

type PresetsConf struct {
	Path string `koanf:"path"`
}

// Config is the service configuration.
type Config struct {
	Server    ServerConf    `koanf:"server"`
	Auth      AuthConf      `koanf:"auth"`
	Log       LogConf       `koanf:"log"`
	Transport TransportConf `koanf:"transport"`
	Gpio      GpioConf      `koanf:"gpio"`
	Device    DeviceConf    `koanf:"device"`
	Presets   PresetsConf   `koanf:"presets"`
	Plugins   []string      `koanf:"plugins"`
}

// Default returns the configuration used for keys missing from every source.
func Default() *Config {
	return &Config{
		Server: ServerConf{
			Host:      "127.0.0.1",
			Port:      "8080",
			BodyLimit: 4 * 1024 * 1024,
		},
		Log:       LogConf{Level: "info"},
		Transport: TransportConf{Kind: TransportSim, SPISpeed: 10000000, Retries: 3},
		Gpio:      GpioConf{ResetPin: -1},
		Presets:   PresetsConf{Path: "presets.yaml"},
	}
}

// defaultPlugins applies when no source lists plugins. It is not part of
// Default because decoding merges into an existing slice.
var defaultPlugins = []string{"transceiver", "presets"}

// Load reads path (skipped when empty) and then ADRV_ environment overrides.
// Nested keys are separated by a double underscore: ADRV_TRANSPORT__SPI_DEVICE
// sets transport.spi_device.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(".", env.Opt{Prefix: envPrefix, TransformFunc: envKey}), nil); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if len(cfg.Plugins) == 0 {
		cfg.Plugins = append([]string(nil), defaultPlugins...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envKey(k, v string) (string, any) {
	key := strings.ToLower(strings.TrimPrefix(k, envPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	if key == "plugins" {
		return key, strings.Fields(strings.ReplaceAll(v, ",", " "))
	}
	return key, v
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	switch c.Transport.Kind {
	case TransportSim:
	case TransportSPI:
		if c.Transport.SPIDevice == "" {
			return fmt.Errorf("transport.spi_device is required for the spi transport")
		}
		if c.Transport.SPISpeed == 0 {
			return fmt.Errorf("transport.spi_speed must be positive")
		}
	default:
		return fmt.Errorf("unknown transport %q, use %s or %s", c.Transport.Kind, TransportSPI, TransportSim)
	}
	if c.Gpio.Chip != "" && c.Gpio.ResetPin < 0 {
		return fmt.Errorf("gpio.reset_pin is required when gpio.chip is set")
	}
	return nil
}

// Address returns the listen address of the HTTP server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + c.Server.Port
}
