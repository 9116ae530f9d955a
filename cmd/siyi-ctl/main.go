// Command siyi-ctl is an interactive console for SIYI gimbal cameras.
//
// Usage:
//
//	siyi-ctl [flags]
//
// Flags:
//
//	-config string    Configuration file path
//	-addr string      Camera address (host:port)
//	-log-level string Log level: debug, info, warn, error (default "info")
//	-capture string   Write a binary protocol capture to this file
//	-interactive      Enable the interactive command console
//
// Examples:
//
//	# Connect to the factory address and open the console
//	siyi-ctl -interactive
//
//	# Capture all protocol traffic while debugging
//	siyi-ctl -addr 192.168.144.25:37260 -capture gimbal.slog -interactive
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Bmoradi93/siyi-sdk/pkg/client"
	"github.com/Bmoradi93/siyi-sdk/pkg/config"
	"github.com/Bmoradi93/siyi-sdk/pkg/log"
	"github.com/Bmoradi93/siyi-sdk/pkg/profile"
	"github.com/Bmoradi93/siyi-sdk/pkg/version"
	"github.com/Bmoradi93/siyi-sdk/pkg/wire"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Configuration file path")
		addr        = flag.String("addr", "", "Camera address (host:port)")
		logLevel    = flag.String("log-level", "", "Log level: debug, info, warn, error")
		captureFile = flag.String("capture", "", "Write a binary protocol capture to this file")
		interactive = flag.Bool("interactive", false, "Enable the interactive command console")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *captureFile != "" {
		cfg.Logging.CaptureFile = *captureFile
	}

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("siyi-ctl", zap.String("sdk_version", version.SDK))

	clientCfg := client.FromConfig(cfg)
	clientCfg.Logger = logger
	clientCfg.AutoReconnect = true
	if *addr != "" {
		clientCfg.DeviceAddr = *addr
	}

	// The console drives queries itself; background polling just
	// makes the log noisy there.
	if *interactive {
		clientCfg.AttitudeInterval = 0
		clientCfg.InfoInterval = 0
	}

	if cfg.Logging.CaptureFile != "" {
		capture, err := log.NewFileLogger(cfg.Logging.CaptureFile)
		if err != nil {
			logger.Fatal("failed to open capture file", zap.Error(err))
		}
		defer capture.Close()
		clientCfg.Capture = capture
		logger.Info("protocol capture enabled", zap.String("file", cfg.Logging.CaptureFile))
	}

	if cfg.ProfileFile != "" {
		profiles, err := profile.LoadOverrides(cfg.ProfileFile)
		if err != nil {
			logger.Fatal("failed to load camera profiles", zap.Error(err))
		}
		clientCfg.Profiles = profiles
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := client.New(clientCfg)
	if err := c.Connect(ctx); err != nil {
		logger.Fatal("failed to connect", zap.String("addr", clientCfg.DeviceAddr), zap.Error(err))
	}
	defer c.Close()

	logger.Info("connected",
		zap.String("addr", clientCfg.DeviceAddr),
		zap.String("profile", c.Profile().Name),
	)

	if snap := c.State(); snap.Hardware.Model != wire.ModelUnknown {
		logger.Info("camera identified",
			zap.Stringer("model", snap.Hardware.Model),
			zap.String("firmware", snap.Firmware.Gimbal),
		)
	}

	if *interactive {
		console, err := newConsole(c)
		if err != nil {
			logger.Fatal("failed to start console", zap.Error(err))
		}
		go console.run(ctx, cancel)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal", zap.Stringer("signal", sig))
	case <-ctx.Done():
	}

	logger.Info("shutting down")
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
