package deleter

import (
	"fmt"
	"syscall"
)

// Negative errno codes reported through deletion callbacks
const (
	// ErrStale displaces a waiter that has been superseded by a newer one
	ErrStale = -int(syscall.ESTALE)
	// ErrCanceled is reported to a waiter detached by CancelWaiter
	ErrCanceled = -int(syscall.ECANCELED)
	// ErrBlacklisted means the client's credentials were revoked by the
	// cluster; the cluster reuses ESHUTDOWN for this
	ErrBlacklisted = -int(syscall.ESHUTDOWN)
)

// Strerror renders an errno in cpp_strerror's "(N) text" shape, with Go's
// errno text, e.g. "(2) no such file or directory"
func Strerror(errno int) string {
	if errno < 0 {
		errno = -errno
	}
	return fmt.Sprintf("(%d) %s", errno, syscall.Errno(errno).Error())
}
