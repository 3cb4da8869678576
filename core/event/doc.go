// Package event provides the in-process event bus for session notifications.
//
// Payloads are plain values. Their name comes from an EventName method when
// the type has one, otherwise from the Go type name:
//
//	type LoginEvent struct{ Profile profile.Profile }
//	func (LoginEvent) EventName() string { return "login" }
//
// Subscribers register typed handlers:
//
//	bus := event.NewBus(event.WithLogger(log))
//	unsubscribe := bus.Subscribe(event.NewHandlerFunc(func(ctx context.Context, e LoginEvent) error {
//	    return nil
//	}))
//	defer unsubscribe()
//
//	bus.Publish(ctx, LoginEvent{})
//
// Delivery is synchronous and fire-and-forget. Handler errors and panics are
// logged through the bus logger and counted out of the Publish return value.
// A handler registered under Wildcard receives every event.
package event
