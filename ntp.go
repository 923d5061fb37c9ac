package xedge

import (
	"context"
	stderr "errors"
	"net"
	"os"
	"time"

	"github.com/beevik/ntp"
	"github.com/roadrunner-server/errors"
)

const (
	// failure codes reported for a failed attempt, errno style
	codeTimeout int = -110
	codeIO      int = -5
)

// SNTPTime is the result of a successful query, seconds since the Unix epoch.
type SNTPTime struct {
	Seconds  int64
	Fraction uint32
}

// SyncError is a failed time query with its numeric failure code.
type SyncError struct {
	Code int
	Err  error
}

func (e *SyncError) Error() string {
	if e.Err == nil {
		return "time sync failed"
	}
	return e.Err.Error()
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// failureCode extracts the numeric code of a failed attempt.
func failureCode(err error) int {
	var se *SyncError
	if stderr.As(err, &se) {
		return se.Code
	}
	return codeIO
}

// NTPSource queries an SNTP server with beevik/ntp.
type NTPSource struct{}

func (NTPSource) Query(ctx context.Context, host string, timeout time.Duration) (SNTPTime, error) {
	const op = errors.Op("ntp_query")

	if dl, ok := ctx.Deadline(); ok && time.Until(dl) < timeout {
		timeout = time.Until(dl)
	}

	resp, err := ntp.QueryWithOptions(host, ntp.QueryOptions{Timeout: timeout})
	if err != nil {
		return SNTPTime{}, &SyncError{Code: codeOf(err), Err: errors.E(op, err)}
	}

	err = resp.Validate()
	if err != nil {
		return SNTPTime{}, &SyncError{Code: codeIO, Err: errors.E(op, err)}
	}

	now := time.Now().Add(resp.ClockOffset)

	return SNTPTime{
		Seconds:  now.Unix(),
		Fraction: uint32((uint64(now.Nanosecond()) << 32) / 1e9), //nolint:gosec
	}, nil
}

func codeOf(err error) int {
	var ne net.Error
	if stderr.As(err, &ne) && ne.Timeout() {
		return codeTimeout
	}
	if stderr.Is(err, os.ErrDeadlineExceeded) {
		return codeTimeout
	}
	return codeIO
}
