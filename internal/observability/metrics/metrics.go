package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "zevleg_"

// Result label values.
const (
	ResultSuccess    = "success"
	ResultError      = "error"
	ResultInfeasible = "infeasible"
)

var (
	registerOnce sync.Once
	registry     = prometheus.NewRegistry()

	profileGenerateLatency prometheus.Histogram
	profileEnergy          *prometheus.GaugeVec

	communityBill *prometheus.GaugeVec

	allocationTotal   *prometheus.CounterVec
	allocationLatency *prometheus.HistogramVec

	loserShare  *prometheus.GaugeVec
	maxIncrease *prometheus.GaugeVec

	scenarioFailures *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
)

// Init registers the run metrics. It is safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		profileGenerateLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "profile_generate_latency_seconds",
				Help:    "Synthetic profile generation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		)
		profileEnergy = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "profile_energy_kwh",
				Help: "Annual energy per profile column in kWh",
			},
			[]string{"column"},
		)

		communityBill = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "community_bill",
				Help: "Community utility bill per scenario",
			},
			[]string{"scenario"},
		)

		allocationTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "allocation_total",
				Help: "Total allocation runs by rule and result",
			},
			[]string{"rule", "result"},
		)
		allocationLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "allocation_latency_seconds",
				Help:    "Allocation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"rule", "result"},
		)

		loserShare = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "loser_share",
				Help: "Fraction of participants paying more than their outside option",
			},
			[]string{"scenario", "rule"},
		)
		maxIncrease = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "max_bill_increase",
				Help: "Largest bill increase over the outside option",
			},
			[]string{"scenario", "rule"},
		)

		scenarioFailures = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "scenario_failures_total",
				Help: "Total scenario failures by reason",
			},
			[]string{"reason"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		registry.MustRegister(
			profileGenerateLatency,
			profileEnergy,
			communityBill,
			allocationTotal,
			allocationLatency,
			loserShare,
			maxIncrease,
			scenarioFailures,
			exportTotal,
			exportLatency,
		)
	})
}

// Gatherer exposes the run registry.
func Gatherer() prometheus.Gatherer { return registry }

// WriteTextfile writes all run metrics in text exposition format, suitable
// for the node exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, registry)
}

// ObserveProfileGenerate records profile generation latency.
func ObserveProfileGenerate(duration time.Duration) {
	if profileGenerateLatency != nil {
		profileGenerateLatency.Observe(duration.Seconds())
	}
}

// SetProfileEnergy records the annual energy of one profile column.
func SetProfileEnergy(column string, kwh float64) {
	if profileEnergy != nil {
		profileEnergy.WithLabelValues(column).Set(kwh)
	}
}

// SetCommunityBill records the community bill of a scenario.
func SetCommunityBill(scenario string, bill float64) {
	if communityBill != nil {
		communityBill.WithLabelValues(scenario).Set(bill)
	}
}

// ObserveAllocation records allocation latency and result.
func ObserveAllocation(rule, result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if allocationTotal != nil {
		allocationTotal.WithLabelValues(rule, result).Inc()
	}
	if allocationLatency != nil {
		allocationLatency.WithLabelValues(rule, result).Observe(duration.Seconds())
	}
}

// SetFairness records the fairness indicators of a scenario/rule run.
func SetFairness(scenario, rule string, share, increase float64) {
	if loserShare != nil {
		loserShare.WithLabelValues(scenario, rule).Set(share)
	}
	if maxIncrease != nil {
		maxIncrease.WithLabelValues(scenario, rule).Set(increase)
	}
}

// IncScenarioFailure increments the failure counter.
func IncScenarioFailure(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if scenarioFailures != nil {
		scenarioFailures.WithLabelValues(reason).Inc()
	}
}

// ObserveExport records export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}
