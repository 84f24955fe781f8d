package out

// Metrics records use case outcomes.
type Metrics interface {
	// RenderObserved counts one rendered command in the given mode.
	RenderObserved(mode string)

	// ConfigOperation counts one configuration operation (create, update,
	// delete, duplicate, import) with its result (ok, invalid, conflict,
	// not_found, error).
	ConfigOperation(op, result string)

	// LoginAttempt counts one login with its result.
	LoginAttempt(result string)
}
