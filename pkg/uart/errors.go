package uart

import (
	"errors"
	"fmt"
)

var (
	// ErrQueueFull signals a TXDATA push into a full transmit queue. The
	// register interface turns it into status flags rather than a bus fault.
	ErrQueueFull = errors.New("uart: tx queue full")

	// ErrBadAddress is a bus fault for unmapped or misaligned offsets.
	ErrBadAddress = errors.New("uart: bad register address")

	// ErrConfiguration matches every *ConfigurationError via errors.Is.
	ErrConfiguration = errors.New("uart: configuration error")
)

// ConfigurationError reports a rejected reconfiguration. The previous
// configuration stays in effect.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("uart: configuration error: %s: %s", e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrConfiguration) match any configuration error.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func configError(field, reason string, err error) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason, Err: err}
}
