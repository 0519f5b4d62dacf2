package utils

import (
	"time"

	"github.com/fjacquet/meili_admin/internal/logging"
)

// Pause sleeps for the given duration string (e.g. "1s", "500ms"). It is
// used between dump status polls. A malformed duration panics through the
// logging layer since it indicates a programming or configuration error.
func Pause(interval string) {
	duration, err := time.ParseDuration(interval)
	if err != nil {
		logging.LogPanic(err)
	}

	time.Sleep(duration)
}
