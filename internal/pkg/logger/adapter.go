package logger

import "cat20_wallet/internal/app/port"

// slogAdapter implements port.Logger on top of the package-level logger.
type slogAdapter struct {
	args []any
}

// NewSlogAdapter creates a port.Logger backed by the global logger.
func NewSlogAdapter() port.Logger {
	return &slogAdapter{}
}

// NewComponentAdapter creates a port.Logger that tags every record with a component name.
func NewComponentAdapter(component string) port.Logger {
	return &slogAdapter{args: []any{"component", component}}
}

func (a *slogAdapter) with(args []any) []any {
	if len(a.args) == 0 {
		return args
	}
	return append(append(make([]any, 0, len(a.args)+len(args)), a.args...), args...)
}

func (a *slogAdapter) Info(msg string, args ...any) {
	Info(msg, a.with(args)...)
}

func (a *slogAdapter) Debug(msg string, args ...any) {
	Debug(msg, a.with(args)...)
}

func (a *slogAdapter) Warn(msg string, args ...any) {
	Warn(msg, a.with(args)...)
}

func (a *slogAdapter) Error(msg string, args ...any) {
	Error(msg, a.with(args)...)
}
