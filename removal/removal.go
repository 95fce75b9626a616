package removal

import (
	"strings"
	"syscall"

	"github.com/journeymidnight/radosmirror/ceph"
	"github.com/journeymidnight/radosmirror/deleter"
	"github.com/journeymidnight/radosmirror/helper"
	"github.com/journeymidnight/radosmirror/work"
)

// Object names of one mirrored image replica in the local pool
const (
	mirrorImagePrefix   = "rbd_mirror_image."   // body holds the local image id
	mirrorPrimaryPrefix = "rbd_mirror_primary." // present iff the upstream primary is known
	imageHeaderPrefix   = "rbd_header."
	imageDataPrefix     = "rbd_data."

	maxImageIDLength = 256
)

const (
	errNoEnt = -int(syscall.ENOENT)
	errBusy  = -int(syscall.EBUSY)
	errIO    = -int(syscall.EIO)
)

// Request removes the local replica of one mirrored image and classifies
// any failure for the deletion scheduler
type Request struct {
	localIoCtx     ceph.IoCtx
	globalImageID  string
	ignoreOrphaned bool
	result         *deleter.ErrorResult
	wq             *work.Pool
	finish         func(r int)

	localImageID string
}

func NewRequest(localIoCtx ceph.IoCtx, globalImageID string,
	ignoreOrphaned bool, result *deleter.ErrorResult, wq *work.Pool,
	finish func(r int)) *Request {

	return &Request{
		localIoCtx:     localIoCtx,
		globalImageID:  globalImageID,
		ignoreOrphaned: ignoreOrphaned,
		result:         result,
		wq:             wq,
		finish:         finish,
	}
}

// Send runs the removal on the work pool and fires finish exactly once
func (req *Request) Send() {
	req.wq.Queue(func(int) {
		req.run()
	}, 0)
}

// Remove adapts the request to the scheduler's pipeline contract
func Remove(localIoCtx ceph.IoCtx, globalImageID string, ignoreOrphaned bool,
	result *deleter.ErrorResult, wq *work.Pool, finish func(r int)) {
	NewRequest(localIoCtx, globalImageID, ignoreOrphaned, result, wq, finish).Send()
}

func (req *Request) run() {
	logger := helper.Logger.NewWithTag(req.localIoCtx.PoolName() + "/" + req.globalImageID)

	r := req.resolveLocalImage()
	if r == errNoEnt {
		// no local replica, the deletion already happened
		logger.Debug("image is not mirrored locally")
		req.finish(0)
		return
	}
	if r < 0 {
		req.fail(r)
		return
	}

	orphaned, r := req.checkPrimary()
	if r < 0 {
		req.fail(r)
		return
	}
	if orphaned && !req.ignoreOrphaned {
		logger.Warn("no primary found for image, not removing")
		*req.result = deleter.ErrorResultComplete
		req.finish(errNoEnt)
		return
	}

	if r = req.removeImage(); r < 0 {
		req.fail(r)
		return
	}

	logger.Info("removed local image", req.localImageID)
	req.finish(0)
}

// resolveLocalImage maps the global image id to the local image id
func (req *Request) resolveLocalImage() int {
	body, err := req.localIoCtx.ReadObject(
		mirrorImagePrefix+req.globalImageID, maxImageIDLength)
	if err != nil {
		return radosErrno(err)
	}
	req.localImageID = strings.TrimSpace(string(body))
	if req.localImageID == "" {
		return errIO
	}
	return 0
}

func (req *Request) checkPrimary() (orphaned bool, r int) {
	_, err := req.localIoCtx.ReadObject(
		mirrorPrimaryPrefix+req.globalImageID, maxImageIDLength)
	if err != nil {
		if errno := radosErrno(err); errno == errNoEnt {
			return true, 0
		} else {
			return false, errno
		}
	}
	return false, 0
}

func (req *Request) removeImage() int {
	// data first so a crashed removal never leaves orphaned data behind
	// a missing header
	err := req.localIoCtx.RemoveStripedObject(imageDataPrefix + req.localImageID)
	if err != nil && radosErrno(err) != errNoEnt {
		return radosErrno(err)
	}

	err = req.localIoCtx.RemoveObject(imageHeaderPrefix + req.localImageID)
	if err != nil && radosErrno(err) != errNoEnt {
		return radosErrno(err)
	}

	err = req.localIoCtx.RemoveObject(mirrorImagePrefix + req.globalImageID)
	if err != nil && radosErrno(err) != errNoEnt {
		return radosErrno(err)
	}
	return 0
}

func (req *Request) fail(r int) {
	if r == errBusy {
		// image is open somewhere, worth retrying right away
		*req.result = deleter.ErrorResultRetryImmediately
	} else {
		*req.result = deleter.ErrorResultRetry
	}
	req.finish(r)
}

func radosErrno(err error) int {
	if errno := ceph.ErrnoFromError(err); errno != 0 {
		return errno
	}
	return errIO
}
