package deleter

import (
	"fmt"
	"time"

	"github.com/journeymidnight/radosmirror/ceph"
)

// DeleteInfo describes one pending, active or failed deletion request.
// All fields except the remove pipeline interaction are guarded by the
// deleter's delete lock
type DeleteInfo struct {
	localPoolID   int64
	globalImageID string
	localIoCtx    ceph.IoCtx
	// treat a replica whose primary cannot be found as deletable;
	// once set, never cleared
	ignoreOrphaned bool

	// completion callback, wrapped to re-dispatch through the work pool;
	// single-shot until re-installed
	onDelete func(r int)
	// also fire the callback with the failure code whenever this entry
	// moves to the failed queue
	notifyOnFailedRetry bool

	errorCode int       // last failure, valid while in the failed queue
	retries   int       // times requeued from the failed queue
	failedAt  time.Time // when the entry last entered the failed queue
}

func newDeleteInfo(localPoolID int64, globalImageID string,
	localIoCtx ceph.IoCtx, ignoreOrphaned bool) *DeleteInfo {
	return &DeleteInfo{
		localPoolID:    localPoolID,
		globalImageID:  globalImageID,
		localIoCtx:     localIoCtx,
		ignoreOrphaned: ignoreOrphaned,
	}
}

func (di *DeleteInfo) match(localPoolID int64, globalImageID string) bool {
	return di.localPoolID == localPoolID && di.globalImageID == globalImageID
}

// notify fires the completion callback, if installed, and clears it
func (di *DeleteInfo) notify(r int) {
	if di.onDelete != nil {
		cb := di.onDelete
		di.onDelete = nil
		cb(r)
	}
}

func (di *DeleteInfo) String() string {
	return fmt.Sprintf("[local_pool_id=%d, global_image_id=%s]",
		di.localPoolID, di.globalImageID)
}

// StatusImage summarizes one queued deletion
type StatusImage struct {
	LocalPoolID   int64  `json:"local_pool_id"`
	GlobalImageID string `json:"global_image_id"`
}

// StatusFailedImage additionally carries failure information
type StatusFailedImage struct {
	StatusImage
	ErrorCode string `json:"error_code"`
	Retries   int    `json:"retries"`
}

// Status is the two-queue snapshot returned by the admin status command
type Status struct {
	DeleteImagesQueue  []StatusImage       `json:"delete_images_queue"`
	FailedDeletesQueue []StatusFailedImage `json:"failed_deletes_queue"`
}

func (di *DeleteInfo) statusImage() StatusImage {
	return StatusImage{
		LocalPoolID:   di.localPoolID,
		GlobalImageID: di.globalImageID,
	}
}

func (di *DeleteInfo) statusFailedImage() StatusFailedImage {
	return StatusFailedImage{
		StatusImage: di.statusImage(),
		ErrorCode:   Strerror(di.errorCode),
		Retries:     di.retries,
	}
}
