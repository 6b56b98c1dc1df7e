package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CostMetrics tracks estimated spend and budget state.
//
// Metrics:
//   - placesgate_cost_usd_total: Estimated spend since process start
//   - placesgate_budget_alerts_total: Alerts raised by threshold
//   - placesgate_budget_usage_usd: Spend in the current billing cycle
//   - placesgate_budget_used_percent: Percentage of the monthly budget used
//   - placesgate_budget_projected_usd: Projected spend for the month
//   - placesgate_usage_records: Call records held by the usage tracker
type CostMetrics struct {
	costTotal   prometheus.Counter
	alertsTotal *prometheus.CounterVec
	usage       prometheus.Gauge
	usedPercent prometheus.Gauge
	projected   prometheus.Gauge
	records     prometheus.Gauge
}

// NewCostMetrics creates and registers cost metrics.
func NewCostMetrics(namespace string, registry *prometheus.Registry) *CostMetrics {
	cm := &CostMetrics{
		costTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cost_usd_total",
				Help:      "Total estimated upstream cost in USD",
			},
		),
		alertsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "budget_alerts_total",
				Help:      "Total number of budget threshold alerts",
			},
			[]string{"threshold"},
		),
		usage: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "budget_usage_usd",
				Help:      "Spend in the current billing cycle in USD",
			},
		),
		usedPercent: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "budget_used_percent",
				Help:      "Percentage of the monthly budget used",
			},
		),
		projected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "budget_projected_usd",
				Help:      "Projected spend for the current month in USD",
			},
		),
		records: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "usage_records",
				Help:      "Number of call records held in memory",
			},
		),
	}

	registry.MustRegister(
		cm.costTotal,
		cm.alertsTotal,
		cm.usage,
		cm.usedPercent,
		cm.projected,
		cm.records,
	)
	return cm
}

// AddCost adds to the spend counter.
func (cm *CostMetrics) AddCost(usd float64) {
	cm.costTotal.Add(usd)
}

// RecordAlert counts an alert for threshold.
func (cm *CostMetrics) RecordAlert(threshold string) {
	cm.alertsTotal.WithLabelValues(threshold).Inc()
}

// SetBudget updates the budget gauges.
func (cm *CostMetrics) SetBudget(usage, percentUsed, projected float64) {
	cm.usage.Set(usage)
	cm.usedPercent.Set(percentUsed)
	cm.projected.Set(projected)
}

// SetRecords updates the record gauge.
func (cm *CostMetrics) SetRecords(n int) {
	cm.records.Set(float64(n))
}
