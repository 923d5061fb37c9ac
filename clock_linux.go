//go:build linux

package xedge

import (
	"github.com/roadrunner-server/errors"
	"golang.org/x/sys/unix"
)

// SystemClock commits the time to CLOCK_REALTIME, requires CAP_SYS_TIME.
type SystemClock struct{}

func (SystemClock) Set(ts Timespec) error {
	const op = errors.Op("system_clock_set")
	uts := unix.NsecToTimespec(ts.Sec*1e9 + ts.Nsec)

	err := unix.ClockSettime(unix.CLOCK_REALTIME, &uts)
	if err != nil {
		return errors.E(op, err)
	}

	return nil
}
