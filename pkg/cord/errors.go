package cord

import "errors"

var (
	// ErrInvalidEvent indicates that an event does not satisfy envelope invariants.
	ErrInvalidEvent = errors.New("cord: invalid event")
	// ErrUnsupportedPayload indicates a payload type that no cache handler accepts.
	ErrUnsupportedPayload = errors.New("cord: unsupported payload")
	// ErrInvalidSubscription indicates that a subscription configuration is invalid.
	ErrInvalidSubscription = errors.New("cord: invalid subscription")
	// ErrSubscriptionClosed indicates that a subscription is no longer active.
	ErrSubscriptionClosed = errors.New("cord: subscription closed")
	// ErrPublishStalled indicates a driver gave up waiting for subscribers to
	// accept an event. The event is lost, so the driver must stop.
	ErrPublishStalled = errors.New("cord: publish stalled")
	// ErrServiceAlreadyRegistered indicates duplicate service registration.
	ErrServiceAlreadyRegistered = errors.New("cord: service already registered")
	// ErrServiceNotFound indicates a service lookup miss.
	ErrServiceNotFound = errors.New("cord: service not found")
	// ErrModuleAlreadyRegistered indicates duplicate module registration.
	ErrModuleAlreadyRegistered = errors.New("cord: module already registered")
	// ErrDriverAlreadyRegistered indicates duplicate driver registration.
	ErrDriverAlreadyRegistered = errors.New("cord: driver already registered")
)
