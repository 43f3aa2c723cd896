package main

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/miretskiy/mlqsim/simulator"
)

var (
	// Prometheus metrics (gauges reflect the most recently updated simulation)
	promMetrics = struct {
		clock           prometheus.Gauge
		cpuUtil         prometheus.Gauge
		queued          prometheus.Gauge
		pending         prometheus.Gauge
		completed       prometheus.Gauge
		contextSwitches prometheus.Gauge
		promotions      prometheus.Gauge
		demotions       prometheus.Gauge
		preemptions     prometheus.Gauge
		avgWaiting      prometheus.Gauge
		avgTurnaround   prometheus.Gauge
		throughput      prometheus.Gauge
		queueDepth      *prometheus.GaugeVec
	}{
		clock: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scheduler_clock_ticks",
			Help: "Current simulation time",
		}),
		cpuUtil: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scheduler_cpu_utilization_percent",
			Help: "Busy ticks as a percentage of elapsed ticks",
		}),
		queued: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scheduler_queued_processes",
			Help: "Processes waiting in the ready queues",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scheduler_pending_processes",
			Help: "Processes that have not arrived yet",
		}),
		completed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scheduler_completed_processes",
			Help: "Processes that have completed",
		}),
		contextSwitches: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scheduler_context_switches",
			Help: "Dispatches that changed the running process",
		}),
		promotions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scheduler_aging_promotions",
			Help: "Priority promotions applied by aging",
		}),
		demotions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scheduler_decay_demotions",
			Help: "Priority demotions applied by decay",
		}),
		preemptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scheduler_preemptions",
			Help: "Slices interrupted by a higher priority arrival",
		}),
		avgWaiting: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scheduler_avg_waiting_ticks",
			Help: "Average waiting time of completed processes",
		}),
		avgTurnaround: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scheduler_avg_turnaround_ticks",
			Help: "Average turnaround time of completed processes",
		}),
		throughput: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scheduler_throughput",
			Help: "Completed processes per tick",
		}),
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "scheduler_queue_depth",
			Help: "Ready processes per priority level",
		}, []string{"priority"}),
	}

	simulationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_simulations_total",
		Help: "Workloads submitted to the simulate endpoint, by result",
	}, []string{"result"})

	registerOnce sync.Once
)

func initPrometheusMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			promMetrics.clock,
			promMetrics.cpuUtil,
			promMetrics.queued,
			promMetrics.pending,
			promMetrics.completed,
			promMetrics.contextSwitches,
			promMetrics.promotions,
			promMetrics.demotions,
			promMetrics.preemptions,
			promMetrics.avgWaiting,
			promMetrics.avgTurnaround,
			promMetrics.throughput,
			promMetrics.queueDepth,
			simulationsTotal,
		)
	})
}

func updatePrometheusMetrics(metrics *simulator.Metrics) {
	if metrics == nil {
		return
	}
	promMetrics.clock.Set(float64(metrics.Timestamp))
	promMetrics.cpuUtil.Set(metrics.CPUUtilizationPercent)
	promMetrics.queued.Set(float64(metrics.QueuedCount))
	promMetrics.pending.Set(float64(metrics.PendingCount))
	promMetrics.completed.Set(float64(metrics.CompletedCount))
	promMetrics.contextSwitches.Set(float64(metrics.ContextSwitches))
	promMetrics.promotions.Set(float64(metrics.Promotions))
	promMetrics.demotions.Set(float64(metrics.Demotions))
	promMetrics.preemptions.Set(float64(metrics.Preemptions))
	promMetrics.avgWaiting.Set(metrics.AvgWaiting)
	promMetrics.avgTurnaround.Set(metrics.AvgTurnaround)
	promMetrics.throughput.Set(metrics.Throughput)

	// Drained levels disappear instead of lingering at their last depth
	promMetrics.queueDepth.Reset()
	for level, depth := range metrics.PerLevelQueueDepth {
		promMetrics.queueDepth.WithLabelValues(strconv.Itoa(level)).Set(float64(depth))
	}
}
