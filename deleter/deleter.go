package deleter

import (
	"bytes"
	"container/list"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/journeymidnight/radosmirror/admin"
	"github.com/journeymidnight/radosmirror/ceph"
	"github.com/journeymidnight/radosmirror/helper"
	"github.com/journeymidnight/radosmirror/timer"
	"github.com/journeymidnight/radosmirror/work"
)

// ErrorResult classifies a failed removal
type ErrorResult int

const (
	// ErrorResultComplete reports the failure to the waiter and drops
	// the request
	ErrorResultComplete ErrorResult = iota
	// ErrorResultRetryImmediately requeues the request at the front of
	// the pending queue
	ErrorResultRetryImmediately
	// ErrorResultRetry parks the request in the failed queue until the
	// retry timer fires
	ErrorResultRetry
)

// RemoveFunc drives the physical removal of one image replica. It must set
// *result to classify a non-zero outcome and arrange for finish to be called
// exactly once with the result code; the work happens on wq, never on the
// caller's goroutine
type RemoveFunc func(localIoCtx ceph.IoCtx, globalImageID string,
	ignoreOrphaned bool, result *ErrorResult, wq *work.Pool, finish func(r int))

const StatusCommand = "rbd mirror deletion status"

// ImageDeleter serializes deletion of local replicas of mirrored images
// through a single worker, retrying transient failures on a timer
type ImageDeleter struct {
	workQueue   *work.Pool
	failedTimer *timer.SafeTimer
	removeFunc  RemoveFunc

	running int32 // atomic; cleared by Close

	mu             sync.Mutex // the delete lock
	cond           *sync.Cond
	deleteQueue    *list.List // of *DeleteInfo, newest at the front
	failedQueue    *list.List // of *DeleteInfo, newest at the front
	activeDelete   *DeleteInfo
	failedInterval float64 // seconds

	asokRegistered bool
	workerDone     chan struct{}
}

func NewImageDeleter(workQueue *work.Pool, failedTimer *timer.SafeTimer,
	removeFunc RemoveFunc) *ImageDeleter {

	d := &ImageDeleter{
		workQueue:   workQueue,
		failedTimer: failedTimer,
		removeFunc:  removeFunc,
		deleteQueue: list.New(),
		failedQueue: list.New(),
		workerDone:  make(chan struct{}),
	}
	d.cond = sync.NewCond(&d.mu)

	interval := helper.CONFIG.DeleteRetryInterval
	if interval <= 0 {
		interval = helper.DEFAULT_DELETE_RETRY_INTERVAL
	}
	d.SetFailedTimerInterval(interval)

	err := admin.Register(StatusCommand, "get status for image deleter",
		statusHook{d})
	if err != nil {
		helper.Logger.Warn("image deleter admin command:", err)
	} else {
		d.asokRegistered = true
	}

	atomic.StoreInt32(&d.running, 1)
	go d.run()
	return d
}

// Close stops the worker after its in-flight removal, if any, completes.
// Pending and failed entries are dropped without firing their callbacks
func (d *ImageDeleter) Close() {
	atomic.StoreInt32(&d.running, 0)
	d.mu.Lock()
	d.cond.Signal()
	d.mu.Unlock()
	<-d.workerDone

	if d.asokRegistered {
		admin.Unregister(StatusCommand)
	}
}

func (d *ImageDeleter) run() {
	defer close(d.workerDone)
	for atomic.LoadInt32(&d.running) == 1 {
		d.mu.Lock()
		for d.deleteQueue.Len() == 0 {
			helper.Logger.Debug("waiting for delete requests")
			d.cond.Wait()

			if atomic.LoadInt32(&d.running) == 0 {
				d.mu.Unlock()
				return
			}
		}

		e := d.deleteQueue.Back()
		d.deleteQueue.Remove(e)
		d.activeDelete = e.Value.(*DeleteInfo)
		d.mu.Unlock()

		moveToNext := d.processImageDelete()
		if !moveToNext {
			if atomic.LoadInt32(&d.running) == 0 {
				return
			}

			d.mu.Lock()
			// the only entry is the one just requeued for immediate
			// retry; wait for another scheduling event instead of
			// spinning on the same failure
			if d.deleteQueue.Len() == 1 {
				d.cond.Wait()
			}
			d.mu.Unlock()
		}
	}
}

// Schedule queues deletion of the local replica of globalImageID. Scheduling
// an image that is already queued only raises its ignoreOrphaned flag
func (d *ImageDeleter) Schedule(localIoCtx ceph.IoCtx, globalImageID string,
	ignoreOrphaned bool) {

	d.mu.Lock()
	defer d.mu.Unlock()

	localPoolID := localIoCtx.PoolID()
	if di := d.findDeleteInfo(localPoolID, globalImageID); di != nil {
		helper.Logger.Debug("image", globalImageID,
			"was already scheduled for deletion")
		if ignoreOrphaned {
			di.ignoreOrphaned = true
		}
		return
	}

	d.deleteQueue.PushFront(
		newDeleteInfo(localPoolID, globalImageID, localIoCtx, ignoreOrphaned))
	d.cond.Signal()
}

// WaitForScheduledDeletion installs ctx as the completion callback for the
// matching request. The callback always runs on the work pool. An already
// installed callback is displaced with ErrStale; if no matching request
// exists the callback completes immediately with 0
func (d *ImageDeleter) WaitForScheduledDeletion(localPoolID int64,
	globalImageID string, ctx func(r int), notifyOnFailedRetry bool) {

	wrapped := func(r int) {
		d.workQueue.Queue(ctx, r)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	di := d.findDeleteInfo(localPoolID, globalImageID)
	if di == nil {
		// image not scheduled for deletion
		wrapped(0)
		return
	}

	helper.Logger.Debug("local_pool_id=", localPoolID,
		", global_image_id=", globalImageID)

	if di.onDelete != nil {
		di.onDelete(ErrStale)
	}
	di.onDelete = wrapped
	di.notifyOnFailedRetry = notifyOnFailedRetry
}

// CancelWaiter detaches the installed callback, completing it with
// ErrCanceled. The request itself stays queued
func (d *ImageDeleter) CancelWaiter(localPoolID int64, globalImageID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	di := d.findDeleteInfo(localPoolID, globalImageID)
	if di == nil {
		return
	}
	di.notify(ErrCanceled)
}

func (d *ImageDeleter) processImageDelete() bool {
	d.mu.Lock()
	active := d.activeDelete
	localIoCtx := active.localIoCtx
	globalImageID := active.globalImageID
	ignoreOrphaned := active.ignoreOrphaned
	d.mu.Unlock()

	logger := helper.Logger.NewWithTag(active.String())
	logger.Info("start processing delete request")

	var errorResult ErrorResult
	removeCtx := make(chan int, 1)
	d.removeFunc(localIoCtx, globalImageID, ignoreOrphaned, &errorResult,
		d.workQueue, func(r int) {
			removeCtx <- r
		})

	r := <-removeCtx
	if r < 0 {
		if errorResult == ErrorResultComplete {
			d.completeActiveDelete(r)
			return true
		} else if errorResult == ErrorResultRetryImmediately {
			d.mu.Lock()
			d.activeDelete.notify(r)
			d.deleteQueue.PushFront(d.activeDelete)
			d.activeDelete = nil
			d.mu.Unlock()
			return false
		}

		d.enqueueFailedDelete(r)
		return true
	}

	d.completeActiveDelete(0)
	return true
}

func (d *ImageDeleter) completeActiveDelete(r int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.activeDelete.notify(r)
	d.activeDelete = nil
}

func (d *ImageDeleter) enqueueFailedDelete(errorCode int) {
	if errorCode == ErrBlacklisted {
		helper.Logger.Error("blacklisted while deleting local image")
		d.completeActiveDelete(errorCode)
		return
	}

	d.mu.Lock()
	if d.activeDelete.notifyOnFailedRetry {
		d.activeDelete.notify(errorCode)
	}
	d.activeDelete.errorCode = errorCode
	d.activeDelete.failedAt = time.Now()
	wasEmpty := d.failedQueue.Len() == 0
	d.failedQueue.PushFront(d.activeDelete)
	d.activeDelete = nil
	interval := d.failedInterval
	d.mu.Unlock()

	if wasEmpty {
		// one timer drains the whole failed queue; later failures are
		// absorbed into the same retry wave
		d.failedTimer.Lock.Lock()
		d.failedTimer.AddEventAfter(interval, d.retryFailedDeletions)
		d.failedTimer.Lock.Unlock()
	}
}

func (d *ImageDeleter) retryFailedDeletions() {
	d.mu.Lock()
	defer d.mu.Unlock()

	empty := d.failedQueue.Len() == 0
	for d.failedQueue.Len() > 0 {
		e := d.failedQueue.Back()
		d.failedQueue.Remove(e)
		di := e.Value.(*DeleteInfo)
		di.retries++
		d.deleteQueue.PushBack(di)
	}
	if !empty {
		d.cond.Signal()
	}
}

// findDeleteInfo locates the request for (localPoolID, globalImageID) across
// the active slot and both queues. Caller must hold the delete lock
func (d *ImageDeleter) findDeleteInfo(localPoolID int64,
	globalImageID string) *DeleteInfo {

	if d.activeDelete != nil &&
		d.activeDelete.match(localPoolID, globalImageID) {
		return d.activeDelete
	}

	for e := d.deleteQueue.Front(); e != nil; e = e.Next() {
		if di := e.Value.(*DeleteInfo); di.match(localPoolID, globalImageID) {
			return di
		}
	}

	for e := d.failedQueue.Front(); e != nil; e = e.Next() {
		if di := e.Value.(*DeleteInfo); di.match(localPoolID, globalImageID) {
			return di
		}
	}

	return nil
}

// Status snapshots both queues
func (d *ImageDeleter) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	status := Status{
		DeleteImagesQueue:  []StatusImage{},
		FailedDeletesQueue: []StatusFailedImage{},
	}
	for e := d.deleteQueue.Front(); e != nil; e = e.Next() {
		status.DeleteImagesQueue = append(status.DeleteImagesQueue,
			e.Value.(*DeleteInfo).statusImage())
	}
	for e := d.failedQueue.Front(); e != nil; e = e.Next() {
		status.FailedDeletesQueue = append(status.FailedDeletesQueue,
			e.Value.(*DeleteInfo).statusFailedImage())
	}
	return status
}

// PrintStatus appends the queue status to out, structured when format is
// "json", as a plain list otherwise
func (d *ImageDeleter) PrintStatus(format string, out *bytes.Buffer) bool {
	if format == "json" {
		status := d.Status()
		encoded, err := json.Marshal(status)
		if err != nil {
			helper.Logger.Error("encode deletion status:", err)
			return false
		}
		out.Write(encoded)
		return true
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for e := d.deleteQueue.Front(); e != nil; e = e.Next() {
		fmt.Fprintln(out, e.Value.(*DeleteInfo))
	}
	for e := d.failedQueue.Front(); e != nil; e = e.Next() {
		di := e.Value.(*DeleteInfo)
		fmt.Fprintf(out, "%s error_code=%s, retries=%d, failed %s\n",
			di, Strerror(di.errorCode), di.retries, humanize.Time(di.failedAt))
	}
	return true
}

// GetDeleteQueueItems returns the global image ids waiting in the
// pending queue
func (d *ImageDeleter) GetDeleteQueueItems() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var items []string
	for e := d.deleteQueue.Front(); e != nil; e = e.Next() {
		items = append(items, e.Value.(*DeleteInfo).globalImageID)
	}
	return items
}

// FailedItem is one entry of the failed queue snapshot
type FailedItem struct {
	GlobalImageID string
	ErrorCode     int
}

func (d *ImageDeleter) GetFailedQueueItems() []FailedItem {
	d.mu.Lock()
	defer d.mu.Unlock()

	var items []FailedItem
	for e := d.failedQueue.Front(); e != nil; e = e.Next() {
		di := e.Value.(*DeleteInfo)
		items = append(items, FailedItem{
			GlobalImageID: di.globalImageID,
			ErrorCode:     di.errorCode,
		})
	}
	return items
}

func (d *ImageDeleter) SetFailedTimerInterval(interval float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failedInterval = interval
}

type statusHook struct {
	deleter *ImageDeleter
}

func (h statusHook) Call(format string, out *bytes.Buffer) bool {
	return h.deleter.PrintStatus(format, out)
}
