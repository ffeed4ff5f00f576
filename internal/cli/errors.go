package cli

import (
	"errors"
	"fmt"
)

var ErrUsage = errors.New("cli usage error")

type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}

// exitError carries the process exit code assigned to a command's
// specific failure mode (init 1/2, dev 3/4, build 3), distinct from the
// usageError/ErrUsage path cobra's flag parsing already produces.
type exitError struct {
	code int
	msg  string
}

func exitErrorf(code int, format string, args ...any) error {
	return exitError{code: code, msg: fmt.Sprintf(format, args...)}
}

func (e exitError) Error() string { return e.msg }

// ExitCode maps a CLI error to the process exit code main.go should use.
// Usage errors (bad flags, validation failures) exit 2; an exitError
// carries its own command-specific code; anything else is an unexpected
// failure and exits 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if errors.Is(err, ErrUsage) {
		return 2
	}
	return 1
}
