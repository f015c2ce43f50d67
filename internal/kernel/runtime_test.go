package kernel

import (
	"context"
	"errors"
	"testing"

	"ex-cordcache/pkg/cord"
)

// TestRegisterModuleRollsBackServices verifies services registered in
// OnRegister are removed when registration fails, and the name can be reused.
func TestRegisterModuleRollsBackServices(t *testing.T) {
	t.Parallel()

	serviceName := cord.GuildCacheServiceName("main")
	noop := func(context.Context, *cord.Event) error { return nil }
	tests := []struct {
		name       string
		spec       cord.ModuleSpec
		onRegister func(context.Context, cord.ModuleRuntime) error
	}{
		{
			name: "OnRegister fails after registering",
			onRegister: func(_ context.Context, runtime cord.ModuleRuntime) error {
				if err := runtime.Services().Register(serviceName, struct{}{}); err != nil {
					return err
				}
				return errors.New("cache warmup failed")
			},
		},
		{
			name: "handler subscription rejected",
			spec: cord.ModuleSpec{
				Handlers: []cord.ModuleHandler{
					{
						Capability:   cord.Capability{Name: "guilds"},
						Subscription: cord.SubscriptionSpec{Name: "writer", Buffer: -1},
						Handler:      noop,
					},
				},
			},
			onRegister: func(_ context.Context, runtime cord.ModuleRuntime) error {
				return runtime.Services().Register(serviceName, struct{}{})
			},
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			kernelRuntime := New()
			t.Cleanup(func() {
				_ = kernelRuntime.EventBus().Close(context.Background())
			})

			module := &stubModule{name: "rollback", spec: testCase.spec, onRegister: testCase.onRegister}
			if err := kernelRuntime.RegisterModule(context.Background(), module); err == nil {
				t.Fatal("expected registration failure")
			}

			_, err := kernelRuntime.Services().Resolve(serviceName)
			if !errors.Is(err, cord.ErrServiceNotFound) {
				t.Fatalf("resolve after rollback error = %v, want %v", err, cord.ErrServiceNotFound)
			}
			if names := kernelRuntime.services.Names(); len(names) != 0 {
				t.Fatalf("services after rollback = %v, want none", names)
			}

			retry := &stubModule{name: "rollback"}
			if err := kernelRuntime.RegisterModule(context.Background(), retry); err != nil {
				t.Fatalf("re-register after rollback failed: %v", err)
			}
		})
	}
}

// TestModuleServicesAttributesErrors verifies module scoped errors and tracking.
func TestModuleServicesAttributesErrors(t *testing.T) {
	t.Parallel()

	services := moduleServices{
		registry: NewServiceRegistry(),
		record:   &moduleRecord{name: "guildcache"},
	}

	if err := services.Register("svc", 1); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	err := services.Register("svc", 2)
	if !errors.Is(err, cord.ErrServiceAlreadyRegistered) {
		t.Fatalf("duplicate register error = %v, want %v", err, cord.ErrServiceAlreadyRegistered)
	}
	if _, err := services.Resolve("missing"); !errors.Is(err, cord.ErrServiceNotFound) {
		t.Fatalf("resolve error = %v, want %v", err, cord.ErrServiceNotFound)
	}
	if tracked := services.record.takeServices(); len(tracked) != 1 || tracked[0] != "svc" {
		t.Fatalf("tracked services = %v, want [svc]", tracked)
	}
}
