package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"ex-cordcache/internal/driver"
	"ex-cordcache/internal/kernel"
	"ex-cordcache/modules/guildcache"
	"ex-cordcache/pkg/cord"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"
)

const (
	envConfigFile             = "CORDCACHE_CONFIG_FILE"
	defaultConfigFilePath     = "config/cordcache.json"
	alternateConfigFilePath   = "bin/config/cordcache.json"
	defaultModuleHookTimeout  = 3 * time.Second
	defaultShutdownTimeout    = 10 * time.Second
	defaultLaneBuffer         = 1024
	defaultStallWarning       = 5 * time.Second
	defaultMessageLimit       = 10000
	defaultStatsSchedule      = "@every 5m"
)

type appConfig struct {
	logLevel slog.Level
	logFile  string

	moduleHookTimeout time.Duration
	shutdownTimeout   time.Duration
	laneBuffer        int
	stallWarning      time.Duration

	metricsAddress string

	messageLimit  int
	statsSchedule string

	drivers []driver.Definition
}

type fileConfig struct {
	LogLevel string            `json:"log_level"`
	LogFile  string            `json:"log_file"`
	Kernel   fileKernelConfig  `json:"kernel"`
	Metrics  fileMetricsConfig `json:"metrics"`
	Cache    fileCacheConfig   `json:"cache"`
	Drivers  []fileDriverEntry `json:"drivers"`
}

type fileKernelConfig struct {
	ModuleHookTimeout string `json:"module_hook_timeout"`
	ShutdownTimeout   string `json:"shutdown_timeout"`
	LaneBuffer        *int   `json:"lane_buffer"`
	StallWarning      string `json:"stall_warning"`
}

type fileMetricsConfig struct {
	ListenAddress string `json:"listen_address"`
}

type fileCacheConfig struct {
	MessageLimit  *int    `json:"message_limit"`
	StatsSchedule *string `json:"stats_schedule"`
}

type fileDriverEntry struct {
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Enabled *bool           `json:"enabled"`
	Config  json.RawMessage `json:"config"`
}

func run(args []string) error {
	var configFlag string
	flagSet := pflag.NewFlagSet("cordcache", pflag.ContinueOnError)
	flagSet.StringVarP(&configFlag, "config", "c", "", "path to the JSON config file (default: $"+envConfigFile+" or "+defaultConfigFilePath+")")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("parse flags: %w", err)
	}

	registry, err := driver.NewBuiltinRegistry()
	if err != nil {
		return fmt.Errorf("new builtin driver registry: %w", err)
	}

	cfg, err := loadConfig(configFlag, registry)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := buildLogger(cfg, os.Stdout)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer closeLog()

	metricsRegistry := prometheus.NewRegistry()
	metricsRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	runtimes, err := registry.BuildEnabled(context.Background(), cfg.drivers, logger)
	if err != nil {
		return fmt.Errorf("build drivers: %w", err)
	}

	modules, routes := buildCacheModules(cfg, metricsRegistry, runtimes)
	kernelRuntime := buildKernelRuntime(logger, cfg, metricsRegistry, routes)
	if err := kernelRuntime.RegisterService(cord.ServiceLogger, logger); err != nil {
		return fmt.Errorf("register logger service: %w", err)
	}
	if err := registerRuntimeDrivers(kernelRuntime, runtimes); err != nil {
		return err
	}
	if err := registerRuntimeModules(context.Background(), kernelRuntime, modules); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.metricsAddress != "" {
		server := newMetricsServer(cfg.metricsAddress, metricsRegistry, logger)
		serverErr := server.Start(ctx)
		defer func() {
			if err := <-serverErr; err != nil {
				logger.Error("metrics server stopped with error", "error", err)
			}
		}()
	}

	if err := kernelRuntime.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		stop()
		return fmt.Errorf("run kernel: %w", err)
	}
	stop()

	return nil
}

func loadConfig(configFlag string, registry *driver.Registry) (appConfig, error) {
	cfg := defaultAppConfig()
	configFile, err := resolveConfigFilePath(configFlag)
	if err != nil {
		return appConfig{}, err
	}

	if err := applyConfigFile(&cfg, configFile); err != nil {
		return appConfig{}, err
	}
	if err := validateAppConfig(&cfg, registry); err != nil {
		return appConfig{}, fmt.Errorf("validate config file %s: %w", configFile, err)
	}

	return cfg, nil
}

func resolveConfigFilePath(configFlag string) (string, error) {
	if configFile := strings.TrimSpace(configFlag); configFile != "" {
		return configFile, nil
	}
	if configFile := strings.TrimSpace(os.Getenv(envConfigFile)); configFile != "" {
		return configFile, nil
	}

	candidates := []string{defaultConfigFilePath, alternateConfigFilePath}
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return "", fmt.Errorf("config file %s is a directory", candidate)
			}
			return candidate, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stat config file %s: %w", candidate, err)
		}
	}

	return "", fmt.Errorf(
		"config file not found; create %s or %s, pass --config, or set %s",
		defaultConfigFilePath,
		alternateConfigFilePath,
		envConfigFile,
	)
}

func defaultAppConfig() appConfig {
	return appConfig{
		logLevel: slog.LevelInfo,

		moduleHookTimeout: defaultModuleHookTimeout,
		shutdownTimeout:   defaultShutdownTimeout,
		laneBuffer:        defaultLaneBuffer,
		stallWarning:      defaultStallWarning,

		messageLimit:  defaultMessageLimit,
		statsSchedule: defaultStatsSchedule,

		drivers: make([]driver.Definition, 0),
	}
}

func applyConfigFile(cfg *appConfig, path string) error {
	if cfg == nil {
		return fmt.Errorf("apply config file: nil config")
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var parsed fileConfig
	if err := json.Unmarshal(jsonc.ToJSON(data), &parsed); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if rawLevel := strings.TrimSpace(parsed.LogLevel); rawLevel != "" {
		level, err := parseLogLevel(rawLevel)
		if err != nil {
			return fmt.Errorf("parse log_level: %w", err)
		}
		cfg.logLevel = level
	}
	cfg.logFile = strings.TrimSpace(parsed.LogFile)

	if rawTimeout := strings.TrimSpace(parsed.Kernel.ModuleHookTimeout); rawTimeout != "" {
		timeout, err := parsePositiveDuration(rawTimeout)
		if err != nil {
			return fmt.Errorf("parse kernel.module_hook_timeout: %w", err)
		}
		cfg.moduleHookTimeout = timeout
	}
	if rawTimeout := strings.TrimSpace(parsed.Kernel.ShutdownTimeout); rawTimeout != "" {
		timeout, err := parsePositiveDuration(rawTimeout)
		if err != nil {
			return fmt.Errorf("parse kernel.shutdown_timeout: %w", err)
		}
		cfg.shutdownTimeout = timeout
	}
	if parsed.Kernel.LaneBuffer != nil {
		if *parsed.Kernel.LaneBuffer <= 0 {
			return fmt.Errorf("parse kernel.lane_buffer: must be > 0")
		}
		cfg.laneBuffer = *parsed.Kernel.LaneBuffer
	}
	if rawWarning := strings.TrimSpace(parsed.Kernel.StallWarning); rawWarning != "" {
		warning, err := time.ParseDuration(rawWarning)
		if err != nil {
			return fmt.Errorf("parse kernel.stall_warning: %w", err)
		}
		if warning < 0 {
			return fmt.Errorf("parse kernel.stall_warning: must be >= 0")
		}
		cfg.stallWarning = warning
	}

	cfg.metricsAddress = strings.TrimSpace(parsed.Metrics.ListenAddress)

	if parsed.Cache.MessageLimit != nil {
		if *parsed.Cache.MessageLimit <= 0 {
			return fmt.Errorf("parse cache.message_limit: must be > 0")
		}
		cfg.messageLimit = *parsed.Cache.MessageLimit
	}
	if parsed.Cache.StatsSchedule != nil {
		cfg.statsSchedule = strings.TrimSpace(*parsed.Cache.StatsSchedule)
	}

	cfg.drivers = make([]driver.Definition, 0, len(parsed.Drivers))
	for index, entry := range parsed.Drivers {
		if len(entry.Config) == 0 {
			return fmt.Errorf("parse drivers[%d].config: required", index)
		}
		var driverConfig map[string]any
		if err := json.Unmarshal(entry.Config, &driverConfig); err != nil {
			return fmt.Errorf("parse drivers[%d].config: %w", index, err)
		}

		enabled := true
		if entry.Enabled != nil {
			enabled = *entry.Enabled
		}
		cfg.drivers = append(cfg.drivers, driver.Definition{
			Name:    strings.TrimSpace(entry.Name),
			Type:    strings.TrimSpace(entry.Type),
			Enabled: enabled,
			Config:  driverConfig,
		})
	}

	return nil
}

func parsePositiveDuration(raw string) (time.Duration, error) {
	duration, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if duration <= 0 {
		return 0, fmt.Errorf("must be > 0")
	}

	return duration, nil
}

func validateAppConfig(cfg *appConfig, registry *driver.Registry) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if registry == nil {
		return fmt.Errorf("nil driver registry")
	}

	seen := make(map[string]struct{}, len(cfg.drivers))
	enabled := 0
	for _, definition := range cfg.drivers {
		if definition.Name == "" {
			return fmt.Errorf("drivers[].name is required")
		}
		if definition.Type == "" {
			return fmt.Errorf("drivers[%s].type is required", definition.Name)
		}
		if _, exists := seen[definition.Name]; exists {
			return fmt.Errorf("drivers[%s]: duplicate name", definition.Name)
		}
		seen[definition.Name] = struct{}{}
		if !definition.Enabled {
			continue
		}
		if _, err := registry.PlatformForType(definition.Type); err != nil {
			return fmt.Errorf("drivers[%s].type: %w", definition.Name, err)
		}
		enabled++
	}
	if enabled == 0 {
		return fmt.Errorf("at least one enabled driver is required")
	}

	return nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unsupported level %q", raw)
	}
}

// buildLogger writes JSON records to stdout and, when log_file is set, text
// records to that file.
func buildLogger(cfg appConfig, stdout io.Writer) (*slog.Logger, func(), error) {
	options := &slog.HandlerOptions{Level: cfg.logLevel}
	if cfg.logFile == "" {
		return slog.New(slog.NewJSONHandler(stdout, options)), func() {}, nil
	}

	file, err := os.OpenFile(cfg.logFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", cfg.logFile, err)
	}
	logger := slog.New(slogmulti.Fanout(
		slog.NewJSONHandler(stdout, options),
		slog.NewTextHandler(file, options),
	))

	return logger, func() { _ = file.Close() }, nil
}

// buildCacheModules builds one guild cache per driver runtime and the kernel
// route that binds each cache to its driver's source.
func buildCacheModules(
	cfg appConfig,
	registerer prometheus.Registerer,
	runtimes []driver.Runtime,
) ([]*guildcache.Module, map[string]kernel.ModuleRoute) {
	modules := make([]*guildcache.Module, 0, len(runtimes))
	routes := make(map[string]kernel.ModuleRoute, len(runtimes))
	for _, runtime := range runtimes {
		module := guildcache.New(
			guildcache.WithSource(runtime.Source.ID),
			guildcache.WithMessageLimit(cfg.messageLimit),
			guildcache.WithStatsSchedule(cfg.statsSchedule),
			guildcache.WithRegisterer(registerer),
		)
		modules = append(modules, module)
		routes[module.Name()] = kernel.ModuleRoute{
			Sources: []cord.EventSource{runtime.Source},
		}
	}

	return modules, routes
}

func buildKernelRuntime(
	logger *slog.Logger,
	cfg appConfig,
	registerer prometheus.Registerer,
	routes map[string]kernel.ModuleRoute,
) *kernel.Kernel {
	return kernel.New(
		kernel.WithLogger(logger),
		kernel.WithModuleHookTimeout(cfg.moduleHookTimeout),
		kernel.WithShutdownTimeout(cfg.shutdownTimeout),
		kernel.WithLaneBuffer(cfg.laneBuffer),
		kernel.WithStallWarning(cfg.stallWarning),
		kernel.WithMetricsRegisterer(registerer),
		kernel.WithModuleRouting(nil, routes),
	)
}

func registerRuntimeModules(ctx context.Context, kernelRuntime *kernel.Kernel, modules []*guildcache.Module) error {
	for _, module := range modules {
		if err := kernelRuntime.RegisterModule(ctx, module); err != nil {
			return fmt.Errorf("register module %s: %w", module.Name(), err)
		}
	}

	return nil
}

func registerRuntimeDrivers(kernelRuntime *kernel.Kernel, runtimes []driver.Runtime) error {
	for _, runtime := range runtimes {
		if err := kernelRuntime.RegisterDriver(runtime.Driver); err != nil {
			return fmt.Errorf("register driver %s: %w", runtime.Driver.Name(), err)
		}
	}

	return nil
}
