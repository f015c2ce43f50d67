package cord

import "context"

// EventHandler processes a single event.
type EventHandler func(ctx context.Context, event *Event) error

// EventSink accepts events for dispatching into the kernel.
type EventSink interface {
	// Publish submits an event to downstream subscribers.
	Publish(ctx context.Context, event *Event) error
}

// ModuleRuntime provides kernel facilities to modules during registration.
type ModuleRuntime interface {
	// Services exposes the service registry for dependency lookup. Services a
	// module registers here are removed again if its registration fails.
	Services() ServiceRegistry
}

// ModuleHandler binds one declared capability to a subscription and handler.
type ModuleHandler struct {
	// Capability declares what the handler consumes.
	Capability Capability
	// Subscription names the handler's subscription and sizes its lanes.
	Subscription SubscriptionSpec
	// Handler is invoked for every event matching Capability.Interest.
	Handler EventHandler
}

// ModuleSpec is the declarative description of a module.
type ModuleSpec struct {
	// Handlers are subscribed by the kernel during registration.
	Handlers []ModuleHandler
}

// Module is a lifecycle-aware plugin contract.
//
// A handler sees each source's events in order, but lanes of different
// sources run concurrently, so module state must be safe for concurrent use.
type Module interface {
	// Name returns a stable module identifier.
	Name() string
	// Spec returns declarative handlers and capabilities.
	Spec() ModuleSpec
	// OnStart is called when the kernel begins runtime execution.
	OnStart(ctx context.Context) error
	// OnShutdown is called during orderly shutdown.
	OnShutdown(ctx context.Context) error
}

// ModuleRegistrar is implemented by modules that need registration-time setup.
type ModuleRegistrar interface {
	// OnRegister is called once when the module is registered, before handlers
	// declared in Spec are subscribed.
	OnRegister(ctx context.Context, runtime ModuleRuntime) error
}

// Driver adapts an external gateway into events.
//
// Drivers own transport and session concerns and must publish only cord.Event.
type Driver interface {
	// Name returns a stable driver identifier.
	Name() string
	// Start starts consuming external dispatches and publishing events.
	// It should return only after context cancellation or fatal error.
	Start(ctx context.Context, sink EventSink) error
	// Shutdown stops external resources that are not tied to Start context alone.
	Shutdown(ctx context.Context) error
}
