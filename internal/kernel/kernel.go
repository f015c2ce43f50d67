package kernel

import (
	"context"
	"fmt"
	"sync"

	"ex-cordcache/pkg/cord"
)

// Kernel owns the event bus and service registry, and runs cache modules
// against the events its drivers publish.
type Kernel struct {
	cfg config

	bus      *EventBus
	services *ServiceRegistry
	metrics  *busMetrics

	mu      sync.RWMutex
	modules []*moduleRecord
	drivers []cord.Driver

	running sync.Mutex
}

// New builds a kernel from options.
func New(options ...Option) *Kernel {
	cfg := defaultConfig()
	for _, option := range options {
		option(&cfg)
	}

	metrics, err := newBusMetrics(cfg.registerer)
	if err != nil {
		cfg.onAsyncError(context.Background(), "kernel metrics", err)
	}

	return &Kernel{
		cfg:      cfg,
		bus:      NewEventBus(cfg.laneBuffer, cfg.stallWarning, cfg.logger, cfg.onAsyncError).withMetrics(metrics),
		services: NewServiceRegistry(),
		metrics:  metrics,
	}
}

// EventBus returns the bus drivers publish to.
func (k *Kernel) EventBus() cord.EventBus {
	return k.bus
}

// Services returns the kernel service registry.
func (k *Kernel) Services() cord.ServiceRegistry {
	return k.services
}

// RegisterService adds a named singleton visible to every module.
func (k *Kernel) RegisterService(name string, service any) error {
	if err := k.services.Register(name, service); err != nil {
		return fmt.Errorf("register service %s: %w", name, err)
	}

	return nil
}

// RegisterModule adds module, runs its OnRegister hook and subscribes its
// declared handlers. On failure everything the module registered is undone.
func (k *Kernel) RegisterModule(ctx context.Context, module cord.Module) error {
	if module == nil {
		return fmt.Errorf("register module: nil module")
	}
	name := module.Name()
	if name == "" {
		return fmt.Errorf("register module: empty module name")
	}
	spec := module.Spec()
	if err := validateModuleSpec(spec); err != nil {
		return fmt.Errorf("register module %s: %w", name, err)
	}

	record := &moduleRecord{name: name, module: module}
	if err := k.addModule(record); err != nil {
		return fmt.Errorf("register module %s: %w", name, err)
	}

	hookCtx, cancel := context.WithTimeout(ctx, k.cfg.moduleHookTimeout)
	defer cancel()

	err := k.onRegister(hookCtx, record)
	if err == nil {
		err = k.subscribeHandlers(hookCtx, record, spec.Handlers)
	}
	if err != nil {
		k.undoModule(ctx, record)
		return fmt.Errorf("register module %s: %w", name, err)
	}

	return nil
}

// RegisterDriver adds a driver. Drivers start in registration order.
func (k *Kernel) RegisterDriver(driver cord.Driver) error {
	if driver == nil {
		return fmt.Errorf("register driver: nil driver")
	}
	name := driver.Name()
	if name == "" {
		return fmt.Errorf("register driver: empty name")
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	for _, existing := range k.drivers {
		if existing.Name() == name {
			return fmt.Errorf("register driver %s: %w", name, cord.ErrDriverAlreadyRegistered)
		}
	}
	k.drivers = append(k.drivers, driver)

	return nil
}

func (k *Kernel) addModule(record *moduleRecord) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, existing := range k.modules {
		if existing.name == record.name {
			return cord.ErrModuleAlreadyRegistered
		}
	}
	k.modules = append(k.modules, record)

	return nil
}

func (k *Kernel) onRegister(ctx context.Context, record *moduleRecord) error {
	registrar, ok := record.module.(cord.ModuleRegistrar)
	if !ok {
		return nil
	}

	return runSafely("module "+record.name+" OnRegister", func() error {
		return registrar.OnRegister(ctx, &moduleRuntime{services: k.services, record: record})
	})
}

// subscribeHandlers binds every declared handler to the bus. A route
// configured for the module replaces the handler's own source filter.
func (k *Kernel) subscribeHandlers(ctx context.Context, record *moduleRecord, handlers []cord.ModuleHandler) error {
	route, routed := k.cfg.routing.routeFor(record.name)
	for idx, declared := range handlers {
		interest := declared.Capability.Interest
		if routed && len(route.Sources) > 0 {
			interest.Sources = append([]cord.EventSource(nil), route.Sources...)
		}
		spec := declared.Subscription
		if spec.Name == "" {
			spec.Name = fmt.Sprintf("%s-handler-%d", record.name, idx+1)
		}

		subscription, err := k.bus.Subscribe(ctx, interest, spec, declared.Handler)
		if err != nil {
			return fmt.Errorf("capability %s: %w", declared.Capability.Name, err)
		}
		record.addSubscription(subscription)
	}

	return nil
}

// undoModule forgets a module whose registration failed, closing its
// subscriptions and dropping the services it registered.
func (k *Kernel) undoModule(ctx context.Context, record *moduleRecord) {
	undoCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), k.cfg.moduleHookTimeout)
	defer cancel()

	if err := record.closeSubscriptions(undoCtx); err != nil {
		k.cfg.onAsyncError(undoCtx, "module "+record.name+" rollback", err)
	}
	for _, service := range record.takeServices() {
		k.services.unregister(service)
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	for idx, existing := range k.modules {
		if existing == record {
			k.modules = append(k.modules[:idx:idx], k.modules[idx+1:]...)
			break
		}
	}
}

// snapshot copies the registered modules and drivers in registration order.
func (k *Kernel) snapshot() ([]*moduleRecord, []cord.Driver) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	return append([]*moduleRecord(nil), k.modules...), append([]cord.Driver(nil), k.drivers...)
}

func validateModuleSpec(spec cord.ModuleSpec) error {
	capabilities := make(map[string]struct{}, len(spec.Handlers))
	subscriptions := make(map[string]struct{}, len(spec.Handlers))

	for idx, handler := range spec.Handlers {
		name := handler.Capability.Name
		switch {
		case name == "":
			return fmt.Errorf("module handler %d: empty capability name", idx)
		case handler.Handler == nil:
			return fmt.Errorf("module handler %s: nil handler", name)
		}
		if _, duplicate := capabilities[name]; duplicate {
			return fmt.Errorf("module handler %d: duplicate capability name %s", idx, name)
		}
		capabilities[name] = struct{}{}

		if subName := handler.Subscription.Name; subName != "" {
			if _, duplicate := subscriptions[subName]; duplicate {
				return fmt.Errorf("module handler %s: duplicate subscription name %s", name, subName)
			}
			subscriptions[subName] = struct{}{}
		}
	}

	return nil
}
