package xedge

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "xedge"
)

// SyncInformer reports the time sync counters.
type SyncInformer interface {
	Attempts() uint64
	Failures() uint64
	Synced() bool
}

type statsExporter struct {
	eng  Engine
	sync SyncInformer

	jobsOkDesc       *prometheus.Desc
	jobsErrDesc      *prometheus.Desc
	queueSizeDesc    *prometheus.Desc
	syncAttemptsDesc *prometheus.Desc
	syncFailuresDesc *prometheus.Desc
	timeSyncedDesc   *prometheus.Desc
}

func (p *Plugin) MetricsCollector() []prometheus.Collector {
	return []prometheus.Collector{p.metrics}
}

func newStatsExporter(eng Engine, sync SyncInformer) *statsExporter {
	return &statsExporter{
		eng:  eng,
		sync: sync,

		jobsOkDesc:       prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "jobs_ok"), "Number of successfully processed engine jobs", nil, nil),
		jobsErrDesc:      prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "jobs_err"), "Number of engine jobs finished with an error", nil, nil),
		queueSizeDesc:    prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "queue_size"), "Jobs waiting for the dispatch loop", nil, nil),
		syncAttemptsDesc: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "sync_attempts"), "Number of time sync queries", nil, nil),
		syncFailuresDesc: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "sync_failures"), "Number of failed time sync queries", nil, nil),
		timeSyncedDesc:   prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "time_synced"), "1 when the clock was synchronized", nil, nil),
	}
}

func (se *statsExporter) Describe(d chan<- *prometheus.Desc) {
	d <- se.jobsOkDesc
	d <- se.jobsErrDesc
	d <- se.queueSizeDesc
	d <- se.syncAttemptsDesc
	d <- se.syncFailuresDesc
	d <- se.timeSyncedDesc
}

func (se *statsExporter) Collect(ch chan<- prometheus.Metric) {
	st := se.eng.Stats()

	var synced float64
	if se.sync.Synced() {
		synced = 1
	}

	ch <- prometheus.MustNewConstMetric(se.jobsOkDesc, prometheus.GaugeValue, float64(st.JobsOk))
	ch <- prometheus.MustNewConstMetric(se.jobsErrDesc, prometheus.GaugeValue, float64(st.JobsErr))
	ch <- prometheus.MustNewConstMetric(se.queueSizeDesc, prometheus.GaugeValue, float64(st.Queued))
	ch <- prometheus.MustNewConstMetric(se.syncAttemptsDesc, prometheus.GaugeValue, float64(se.sync.Attempts()))
	ch <- prometheus.MustNewConstMetric(se.syncFailuresDesc, prometheus.GaugeValue, float64(se.sync.Failures()))
	ch <- prometheus.MustNewConstMetric(se.timeSyncedDesc, prometheus.GaugeValue, synced)
}
