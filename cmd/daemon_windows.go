//go:build windows

package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/urfave/cli"
	daemonpkg "github.com/vaulth/vhindex/internal/daemon"
	"github.com/vaulth/vhindex/internal/service"
	"github.com/vaulth/vhindex/pkg/logger"
	"golang.org/x/sys/windows/svc"
)

// Indirections over the Windows service APIs, overridden in tests.
var (
	isWindowsServiceFunc = svc.IsWindowsService
	svcRunFunc           = svc.Run
)

// checkWindowsService checks if we're running as a Windows service.
// If running as service, it initializes and runs the service properly.
// Returns true if running as service, false if running interactively.
func checkWindowsService(ctx *cli.Context) (bool, error) {
	isService, err := isWindowsServiceFunc()
	if err != nil {
		return false, fmt.Errorf("failed to determine if running as service: %w", err)
	}

	if !isService {
		return false, nil
	}

	var eventLogger service.EventLogger
	eventLogger, err = service.NewWindowsEventLogger(daemonpkg.DefaultServiceName)
	if err != nil {
		eventLogger = service.NewConsoleEventLogger(log.Default())
		_ = eventLogger.Warning(fmt.Sprintf("Failed to create Windows Event Logger, using console: %v", err))
	}
	defer eventLogger.Close()

	_ = eventLogger.Info("Initializing vhindex service...")

	opts := daemonConfigOptions(ctx)

	components, err := initDaemonComponents(logger.NewStandardLogger(log.Default()), DBPath(), opts)
	if err != nil {
		_ = eventLogger.Error(fmt.Sprintf("Failed to initialize daemon components: %v", err))
		return true, err
	}

	runner := &serviceRunner{
		components:  components,
		eventLogger: eventLogger,
	}

	handler := service.NewWindowsHandlerWithLogger(runner, eventLogger)

	err = svcRunFunc(daemonpkg.DefaultServiceName, handler)
	if err != nil {
		_ = eventLogger.Error(fmt.Sprintf("Service failed: %v", err))
		return true, fmt.Errorf("failed to run service: %w", err)
	}

	return true, nil
}

// serviceRunner implements service.RunnerInterface by driving the same
// DaemonComponents used by the interactive daemon command.
type serviceRunner struct {
	components  *DaemonComponents
	eventLogger service.EventLogger
	running     bool
}

func (r *serviceRunner) Start(ctx context.Context) error {
	r.running = true
	defer func() { r.running = false }()

	_ = r.eventLogger.Info("Starting index pipeline...")
	go func() {
		if err := r.components.Handle.Run(); err != nil {
			_ = r.eventLogger.Error(fmt.Sprintf("index pipeline stopped: %v", err))
		}
	}()

	_ = r.eventLogger.Info("Starting RPC server...")
	errCh := make(chan error, 1)
	go func() {
		errCh <- r.components.Server.Start()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		if err != nil {
			_ = r.eventLogger.Error(fmt.Sprintf("Server error: %v", err))
		}
		return err
	}
}

func (r *serviceRunner) Shutdown() error {
	_ = r.eventLogger.Info("Shutting down daemon...")
	r.components.Close()
	return nil
}

func (r *serviceRunner) IsRunning() bool {
	return r.running
}
