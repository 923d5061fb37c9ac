//go:build !linux

package xedge

import (
	"github.com/roadrunner-server/errors"
)

type SystemClock struct{}

func (SystemClock) Set(Timespec) error {
	return errors.E(errors.Op("system_clock_set"), errors.Str("setting the system clock is supported on linux only"))
}
