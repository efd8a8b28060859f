package rate

import "fmt"

// ConfigError is a fatal construction-time configuration problem:
// a missing required option, an unresolvable trace path, or a strategy
// type with no registered factory. It is never retried; the round
// cannot start for the affected worker.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// NotImplementedError is returned when a contract method is invoked on
// a controller that does not override it. It indicates a registration
// defect, not a runtime condition.
type NotImplementedError struct {
	Op string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("%s is not implemented for this rate controller", e.Op)
}
