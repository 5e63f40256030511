package shared

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// NewLogger returns a stderr logger at the named level.
func NewLogger(level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	}), nil
}
