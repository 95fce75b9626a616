package main

import (
	"strconv"

	"github.com/journeymidnight/radosmirror/deleter"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	metrics map[string]*prometheus.Desc
	deleter *deleter.ImageDeleter
}

func newGlobalMetric(namespace string, metricName string, docString string, labels []string) *prometheus.Desc {
	return prometheus.NewDesc(namespace+"_"+metricName, docString, labels, nil)
}

func NewMetrics(namespace string, d *deleter.ImageDeleter) *Metrics {
	return &Metrics{
		deleter: d,
		metrics: map[string]*prometheus.Desc{
			"pending_deletions_metric": newGlobalMetric(namespace, "pending_deletions_metric",
				"Number of image deletions waiting in the pending queue", nil),
			"failed_deletions_metric": newGlobalMetric(namespace, "failed_deletions_metric",
				"Number of image deletions waiting for the retry timer, by errno", []string{"error_code"}),
		},
	}
}

func (c *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- m
	}
}

func (c *Metrics) Collect(ch chan<- prometheus.Metric) {
	pending := c.deleter.GetDeleteQueueItems()
	ch <- prometheus.MustNewConstMetric(c.metrics["pending_deletions_metric"],
		prometheus.GaugeValue, float64(len(pending)))

	byErrno := make(map[int]int)
	for _, item := range c.deleter.GetFailedQueueItems() {
		byErrno[item.ErrorCode]++
	}
	for errno, count := range byErrno {
		ch <- prometheus.MustNewConstMetric(c.metrics["failed_deletions_metric"],
			prometheus.GaugeValue, float64(count), strconv.Itoa(-errno))
	}
}
