package error_notificator

import "context"

// Noop is used when no admin chat is configured.
type Noop struct{}

func (Noop) Notify(context.Context, error, string) error { return nil }
