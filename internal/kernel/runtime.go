package kernel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ex-cordcache/pkg/cord"
)

// moduleRecord tracks what a module acquired so shutdown and failed
// registration can release it.
type moduleRecord struct {
	name   string
	module cord.Module

	mu            sync.Mutex
	subscriptions []cord.Subscription
	services      []string
}

func (m *moduleRecord) addSubscription(subscription cord.Subscription) {
	m.mu.Lock()
	m.subscriptions = append(m.subscriptions, subscription)
	m.mu.Unlock()
}

func (m *moduleRecord) addService(name string) {
	m.mu.Lock()
	m.services = append(m.services, name)
	m.mu.Unlock()
}

func (m *moduleRecord) takeServices() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	services := m.services
	m.services = nil

	return services
}

// closeSubscriptions closes and forgets every subscription. Calling it again
// is a no-op.
func (m *moduleRecord) closeSubscriptions(ctx context.Context) error {
	m.mu.Lock()
	subscriptions := m.subscriptions
	m.subscriptions = nil
	m.mu.Unlock()

	var errs []error
	for _, subscription := range subscriptions {
		if err := subscription.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close subscription %s: %w", subscription.Name(), err))
		}
	}

	return errors.Join(errs...)
}

// moduleRuntime is what OnRegister sees.
type moduleRuntime struct {
	services *ServiceRegistry
	record   *moduleRecord
}

// Services returns a registry view that attributes registrations to the
// module, so they are dropped if the module fails to register.
func (r *moduleRuntime) Services() cord.ServiceRegistry {
	return moduleServices{registry: r.services, record: r.record}
}

type moduleServices struct {
	registry *ServiceRegistry
	record   *moduleRecord
}

func (s moduleServices) Register(name string, service any) error {
	if err := s.registry.Register(name, service); err != nil {
		return fmt.Errorf("module %s: %w", s.record.name, err)
	}
	s.record.addService(name)

	return nil
}

func (s moduleServices) Resolve(name string) (any, error) {
	service, err := s.registry.Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", s.record.name, err)
	}

	return service, nil
}
