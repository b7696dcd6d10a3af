package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/openapi2sdk/internal/sdkerr"
)

var ErrUsage = errors.New("cli usage error")

// ErrRequestFailed marks an execute run whose request came back as a failure.
// The failure itself has already been printed.
var ErrRequestFailed = errors.New("api request failed")

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

// FormatError renders err for the terminal. Structured errors list every
// detail they carry on its own line.
func FormatError(err error) string {
	var se *sdkerr.Error
	if !errors.As(err, &se) {
		return err.Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", se.Code, se.Message)
	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "\n%s: %s", label, value)
		}
	}
	line("Field", se.Field)
	line("Location", se.Location)
	line("Pointer", se.Pointer)
	if se.Status != 0 {
		line("Status", fmt.Sprint(se.Status))
	}
	line("Body", strings.TrimSpace(se.Body))
	if se.Timeout {
		line("Hint", "the request timed out; check the URL or try again")
	}
	return b.String()
}
