package dedupe

const defaultLimit = 50_000

// Option applies a configuration option to the Window.
type Option func(*Window)

// WithLimit bounds the number of remembered keys; limit <= 0 means unbounded.
func WithLimit(limit int) Option {
	return func(w *Window) {
		w.limit = limit
	}
}
