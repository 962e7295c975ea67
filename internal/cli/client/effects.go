package client

import "context"

// Severity of a user-facing notification
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Effect is a side effect requested by the response classifier. The client
// never performs navigation or session teardown itself; an EffectHandler owned
// by the view layer does.
type Effect interface {
	effect()
}

// ClearSession drops the in-memory session and the persisted token and user
type ClearSession struct{}

// RedirectTo asks the view layer to navigate to Route
type RedirectTo struct {
	Route string
}

// Notify surfaces a message to the user
type Notify struct {
	Message  string
	Severity Severity
}

func (ClearSession) effect() {}
func (RedirectTo) effect()   {}
func (Notify) effect()       {}

// EffectHandler executes effects in order
type EffectHandler interface {
	Apply(ctx context.Context, effects []Effect)
}

// EffectHandlerFunc adapts a function to EffectHandler
type EffectHandlerFunc func(ctx context.Context, effects []Effect)

func (f EffectHandlerFunc) Apply(ctx context.Context, effects []Effect) {
	f(ctx, effects)
}

type discardEffects struct{}

func (discardEffects) Apply(context.Context, []Effect) {}
