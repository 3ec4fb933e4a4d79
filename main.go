package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	charmlog "github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/google/uuid"
	"github.com/linht/adrv-manager/adrv903x"
	"github.com/linht/adrv-manager/config"
	"github.com/linht/adrv-manager/plugins"
	"golang.org/x/crypto/bcrypt"
)

// Configuration constants
const (
	// Server timeouts
	ServerReadTimeout  = 30 * time.Second
	ServerWriteTimeout = 30 * time.Second

	// Session management (24-hour expiry)
	SessionDuration = 24 * time.Hour
)

var cli struct {
	Config  string `help:"Path to the YAML config file" default:"config.yaml" type:"path"`
	Verbose bool   `help:"Enable debug logging"`

	Serve struct {
	} `cmd:"" default:"1" help:"Start the HTTP service"`
	Apply struct {
		Preset string `help:"Preset file to apply" required:"" type:"existingfile"`
		Name   string `help:"Preset to apply; defaults to the first one in the file"`
	} `cmd:"" help:"Apply a data format preset to the device and exit"`
	Mode struct {
		Channel string `help:"Channel to query, e.g. rx0 or orx1" required:""`
	} `cmd:"" help:"Print the active data format mode of a channel"`
	HashPassword struct {
		Password string `arg:"" help:"Password to hash for auth.password_hash"`
	} `cmd:"" help:"Print a bcrypt hash for the config file"`
}

// Session represents a simple authenticated session for local use
type Session struct {
	Token     string
	ExpiresAt time.Time
}

var (
	cfg            *config.Config
	currentSession *Session
	sessionMu      sync.RWMutex
)

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("adrv-manager"),
		kong.Description("ADRV903x receive data formatter service"),
	)

	if ctx.Command() == "hash-password <password>" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cli.HashPassword.Password), bcrypt.DefaultCost)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(string(hash))
		return
	}

	// Load configuration
	var err error
	cfg, err = config.Load(configPath(cli.Config))
	if err != nil {
		setupLogging("info", cli.Verbose)
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg.Log.Level, cli.Verbose)
	slog.Info("Configuration loaded", "transport", cfg.Transport.Kind)

	dev, err := buildTransceiver(cfg)
	if err != nil {
		slog.Error("Failed to set up transceiver", "error", err)
		os.Exit(1)
	}
	defer dev.Close()

	switch ctx.Command() {
	case "apply":
		err = runApply(dev, cli.Apply.Preset, cli.Apply.Name)
	case "mode":
		err = runMode(dev, cli.Mode.Channel)
	default:
		err = serve(dev)
	}
	if err != nil {
		slog.Error("Command failed", "command", ctx.Command(), "error", err)
		os.Exit(1)
	}
}

// configPath drops the default path when the file does not exist so the
// service can run from defaults and environment alone
func configPath(path string) string {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return ""
	}
	return path
}

// setupLogging routes slog through a charmbracelet/log handler
func setupLogging(level string, verbose bool) {
	lvl, err := charmlog.ParseLevel(level)
	if err != nil {
		lvl = charmlog.InfoLevel
	}
	if verbose {
		lvl = charmlog.DebugLevel
	}
	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	slog.SetDefault(slog.New(handler))
}

// buildTransceiver opens the configured transport and loads the device profile
func buildTransceiver(cfg *config.Config) (*plugins.Transceiver, error) {
	profile, err := config.LoadProfile(cfg.Device.Profile)
	if err != nil {
		return nil, err
	}
	state, err := profile.State()
	if err != nil {
		return nil, err
	}
	order, err := profile.ByteOrder()
	if err != nil {
		return nil, err
	}

	opts := []plugins.TransceiverOption{
		plugins.WithTransport(cfg.Transport.Kind),
		plugins.WithGainTableByteOrder(order),
		plugins.WithMetrics(plugins.NewMetrics()),
		plugins.WithTrace(plugins.NewTraceHub()),
		plugins.WithTransceiverLogger(slog.Default().With("component", "adrv903x")),
	}

	var open plugins.Opener
	switch cfg.Transport.Kind {
	case config.TransportSPI:
		if err := plugins.ValidateSPIDevice(cfg.Transport.SPIDevice); err != nil {
			return nil, err
		}
		open = plugins.SPIOpener(cfg.Transport.SPIDevice, cfg.Transport.SPISpeed, cfg.Transport.Retries)
		slog.Info("SPI transport configured",
			"spi_device", cfg.Transport.SPIDevice,
			"spi_speed", cfg.Transport.SPISpeed,
			"retries", cfg.Transport.Retries)
	default:
		regs := adrv903x.NewRegisterFile()
		open = plugins.SimOpener(regs)
		opts = append(opts, plugins.WithResetHook(func() error {
			regs.Reset()
			return nil
		}))
		slog.Info("Simulated transport configured")
	}

	if cfg.Gpio.Chip != "" {
		chip, pin := cfg.Gpio.Chip, cfg.Gpio.ResetPin
		opts = append(opts, plugins.WithResetHook(func() error {
			return plugins.PulseReset(chip, pin)
		}))
		slog.Info("Reset line configured", "gpio_chip", chip, "reset_pin", pin)
	}

	return plugins.NewTransceiver(open, state, opts...)
}

func runApply(dev *plugins.Transceiver, path, name string) error {
	presets, err := config.LoadPresets(path)
	if err != nil {
		return err
	}
	if len(presets) == 0 {
		return fmt.Errorf("no presets in %s", path)
	}

	preset := &presets[0]
	if name != "" {
		var ok bool
		if preset, ok = config.FindPreset(presets, name); !ok {
			return fmt.Errorf("preset %q not found in %s", name, path)
		}
	}

	if err := plugins.ApplyPreset(dev, preset); err != nil {
		return err
	}
	slog.Info("Preset applied", "name", preset.Name, "entries", len(preset.Formats))
	return nil
}

func runMode(dev *plugins.Transceiver, channel string) error {
	ch, err := adrv903x.ParseChannel(channel)
	if err != nil {
		return err
	}
	return dev.Run("GetMode", func(d *adrv903x.Device) error {
		mode, err := d.GetMode(ch)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", ch, mode)
		return nil
	})
}

func serve(dev *plugins.Transceiver) error {
	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  ServerReadTimeout,
		WriteTimeout: ServerWriteTimeout,
		AppName:      "ADRV903x Manager",
		BodyLimit:    cfg.Server.BodyLimit,
	})

	// Add logger middleware
	app.Use(fiberLogger.New(fiberLogger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// Login/logout endpoints (no auth required for login)
	app.Post("/login", handleLogin)
	app.Post("/logout", handleLogout)

	// Auth middleware for all other API routes
	app.Use("/api", authMiddleware)

	// Initialize and register plugins
	loaded, err := initPlugins(app, dev)
	if err != nil {
		return fmt.Errorf("failed to initialize plugins: %w", err)
	}

	addr := cfg.Address()

	// Setup graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		slog.Info("Shutting down server...")
		if err := app.ShutdownWithContext(context.Background()); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
	}()

	slog.Info("Starting ADRV903x Manager", "address", addr)
	err = app.Listen(addr)

	for _, p := range loaded {
		if serr := p.Shutdown(); serr != nil {
			slog.Error("Plugin shutdown error", "name", p.Name(), "error", serr)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to start server on %s: %w", addr, err)
	}
	return nil
}

func handleLogin(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}

	// Check password
	if err := bcrypt.CompareHashAndPassword([]byte(cfg.Auth.PasswordHash), []byte(req.Password)); err != nil {
		slog.Warn("Failed login attempt", "ip", c.IP())
		return c.Status(401).JSON(fiber.Map{"error": "Invalid password"})
	}

	slog.Info("Successful login", "ip", c.IP())

	// Generate new session (replaces any existing session for local-only use)
	session := &Session{
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(SessionDuration),
	}
	sessionMu.Lock()
	currentSession = session
	sessionMu.Unlock()

	return c.JSON(fiber.Map{
		"success": true,
		"token":   session.Token,
		"expires": session.ExpiresAt.Unix(),
	})
}

func handleLogout(c *fiber.Ctx) error {
	sessionMu.Lock()
	currentSession = nil
	sessionMu.Unlock()
	slog.Info("User logged out", "ip", c.IP())
	return c.JSON(fiber.Map{"success": true})
}

func authMiddleware(c *fiber.Ctx) error {
	// Check for token in header first, fallback to query parameter (for WebSocket)
	token := c.Get("X-Auth-Token")
	if token == "" {
		token = c.Query("token")
	}

	if !validateToken(token) {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}
	return c.Next()
}

func validateToken(token string) bool {
	if token == "" {
		return false
	}

	sessionMu.RLock()
	defer sessionMu.RUnlock()

	if currentSession == nil {
		return false
	}

	// Check token match and expiration
	if currentSession.Token != token {
		return false
	}

	if time.Now().After(currentSession.ExpiresAt) {
		return false
	}

	return true
}

func initPlugins(app *fiber.App, dev *plugins.Transceiver) ([]plugins.Plugin, error) {
	var loaded []plugins.Plugin
	for _, name := range cfg.Plugins {
		factory, exists := plugins.Get(name)
		if !exists {
			slog.Warn("Unknown plugin", "name", name, "available", plugins.Names())
			continue
		}

		// Get plugin-specific config
		var pluginConfig interface{} = dev
		switch name {
		case "presets":
			pluginConfig = plugins.PresetConfig{
				Transceiver: dev,
				Path:        cfg.Presets.Path,
			}
		}

		plugin, err := factory(pluginConfig)
		if err != nil {
			return loaded, err
		}

		plugin.RegisterRoutes(app)
		loaded = append(loaded, plugin)
		slog.Info("Plugin loaded", "name", plugin.Name())
	}
	return loaded, nil
}
