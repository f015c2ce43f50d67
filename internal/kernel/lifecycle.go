package kernel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ex-cordcache/pkg/cord"

	"golang.org/x/sync/errgroup"
)

// Run starts modules and drivers and blocks until ctx ends or a driver
// fails. Everything is shut down before Run returns. A driver failure is
// returned; cancellation of ctx is not an error.
func (k *Kernel) Run(ctx context.Context) error {
	if !k.running.TryLock() {
		return fmt.Errorf("kernel run: already running")
	}
	defer k.running.Unlock()

	modules, drivers := k.snapshot()
	if err := k.startModules(ctx, modules); err != nil {
		return err
	}
	k.cfg.logger.InfoContext(ctx, "kernel running",
		"modules", len(modules),
		"drivers", len(drivers),
		"services", k.services.Names(),
	)

	runErr := k.runDrivers(ctx, drivers)
	shutdownErr := k.shutdown(ctx, modules, drivers)

	return errors.Join(runErr, shutdownErr)
}

func (k *Kernel) startModules(ctx context.Context, modules []*moduleRecord) error {
	for _, record := range modules {
		hookCtx, cancel := context.WithTimeout(ctx, k.cfg.moduleHookTimeout)
		err := runSafely("module "+record.name+" OnStart", func() error {
			return record.module.OnStart(hookCtx)
		})
		cancel()
		if err != nil {
			return fmt.Errorf("start module %s: %w", record.name, err)
		}
	}

	return nil
}

// runDrivers starts every driver and waits until ctx ends, all drivers return
// or one fails. The first failure stops the others. Drivers that ignore
// cancellation are abandoned after the shutdown timeout.
func (k *Kernel) runDrivers(ctx context.Context, drivers []cord.Driver) error {
	group, groupCtx := errgroup.WithContext(ctx)
	sink := k.newDriverEventSink()
	for _, driver := range drivers {
		group.Go(func() error {
			err := runSafely("driver "+driver.Name()+" Start", func() error {
				return driver.Start(groupCtx, sink)
			})
			if err == nil || isContextCancellation(err) {
				return nil
			}

			return fmt.Errorf("run driver %s: %w", driver.Name(), err)
		})
	}

	finished := make(chan error, 1)
	go func() {
		finished <- group.Wait()
	}()

	select {
	case err := <-finished:
		return err
	case <-groupCtx.Done():
	}

	// groupCtx also ends when Wait returns, so finished may already be ready.
	timer := time.NewTimer(k.cfg.shutdownTimeout)
	defer timer.Stop()
	select {
	case err := <-finished:
		return err
	case <-timer.C:
		k.cfg.logger.WarnContext(ctx, "drivers did not stop in time", "timeout", k.cfg.shutdownTimeout)
		return nil
	}
}

// shutdown stops drivers in reverse order, then modules in reverse order, then
// the bus. It runs on a fresh deadline so cleanup survives cancellation of ctx.
func (k *Kernel) shutdown(ctx context.Context, modules []*moduleRecord, drivers []cord.Driver) error {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), k.cfg.shutdownTimeout)
	defer cancel()

	var errs []error
	for idx := len(drivers) - 1; idx >= 0; idx-- {
		driver := drivers[idx]
		if err := runSafely("driver "+driver.Name()+" Shutdown", func() error {
			return driver.Shutdown(shutdownCtx)
		}); err != nil {
			errs = append(errs, fmt.Errorf("shutdown driver %s: %w", driver.Name(), err))
		}
	}
	for idx := len(modules) - 1; idx >= 0; idx-- {
		if err := k.stopModule(shutdownCtx, modules[idx]); err != nil {
			errs = append(errs, err)
		}
	}
	if err := k.bus.Close(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("kernel shutdown: %w", err)
	}

	return nil
}

// stopModule closes the module's subscriptions before OnShutdown so no handler
// runs against a module that is tearing down.
func (k *Kernel) stopModule(ctx context.Context, record *moduleRecord) error {
	subErr := record.closeSubscriptions(ctx)
	if subErr != nil {
		subErr = fmt.Errorf("shutdown module %s subscriptions: %w", record.name, subErr)
	}

	hookCtx, cancel := context.WithTimeout(ctx, k.cfg.moduleHookTimeout)
	defer cancel()
	hookErr := runSafely("module "+record.name+" OnShutdown", func() error {
		return record.module.OnShutdown(hookCtx)
	})
	if hookErr != nil {
		hookErr = fmt.Errorf("shutdown module %s: %w", record.name, hookErr)
	}

	return errors.Join(subErr, hookErr)
}

func isContextCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
