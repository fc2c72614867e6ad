package logging

import (
	"fmt"
	"os"
)

// Debugf prints debug information to stderr when TL_DEBUG is set.
func Debugf(format string, args ...interface{}) {
	if os.Getenv("TL_DEBUG") != "" {
		fmt.Fprintf(os.Stderr, "DEBUG: "+format, args...)
	}
}
