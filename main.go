package main

import (
	"io/ioutil"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/journeymidnight/radosmirror/ceph"
	"github.com/journeymidnight/radosmirror/deleter"
	"github.com/journeymidnight/radosmirror/helper"
	"github.com/journeymidnight/radosmirror/log"
	"github.com/journeymidnight/radosmirror/removal"
	"github.com/journeymidnight/radosmirror/timer"
	"github.com/journeymidnight/radosmirror/work"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	helper.SetupConfig()

	helper.Logger = log.NewFileLogger(helper.CONFIG.LogPath,
		log.ParseLevel(helper.CONFIG.LogLevel))
	defer helper.Logger.Close()
	helper.Logger.Info("radosmirror start, instance id:",
		helper.CONFIG.InstanceId)

	if helper.CONFIG.PidFile != "" {
		err := ioutil.WriteFile(helper.CONFIG.PidFile,
			[]byte(strconv.Itoa(os.Getpid())), 0644)
		helper.PanicOnError(err, "write pid file")
	}

	if helper.CONFIG.EnablePProf {
		go func() {
			err := http.ListenAndServe(helper.CONFIG.BindPProfAddress, nil)
			helper.Logger.Error("pprof server:", err)
		}()
	}

	cluster, err := ceph.NewCluster(helper.CONFIG.CephConfigFile,
		helper.CONFIG.RadosMonTimeout, helper.CONFIG.RadosOsdTimeout)
	helper.PanicOnError(err, "connect to local cluster")
	helper.Logger.Info("local cluster", cluster.Name, "is ready")
	if percent, err := cluster.UsedSpacePercent(); err == nil {
		helper.Logger.Info("local cluster used space:", percent, "%")
	}

	workQueue := work.NewPool(helper.CONFIG.WorkPoolSize)
	failedTimer := timer.NewSafeTimer()
	imageDeleter := deleter.NewImageDeleter(workQueue, failedTimer,
		removal.Remove)

	prometheus.MustRegister(NewMetrics("radosmirror", imageDeleter))

	adminServer := startAdminServer(&adminServerConfig{
		Address: helper.CONFIG.BindAdminAddress,
	})

	signalQueue := make(chan os.Signal)
	signal.Notify(signalQueue, syscall.SIGINT, syscall.SIGTERM,
		syscall.SIGQUIT, syscall.SIGHUP)
	for {
		s := <-signalQueue
		switch s {
		case syscall.SIGHUP:
			// reload config file and reopen logs
			helper.SetupConfig()
			helper.Logger.ReopenLogFile()
			imageDeleter.SetFailedTimerInterval(
				helper.CONFIG.DeleteRetryInterval)
		default:
			helper.Logger.Info("got signal:", s, ", shutting down...")
			// order matters: stop admitting admin requests, then join
			// the worker before tearing down what it borrows
			stopAdminServer(adminServer)
			imageDeleter.Close()
			failedTimer.Shutdown()
			workQueue.Close()
			cluster.Shutdown()
			return
		}
	}
}
