package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type CreditMetrics struct {
	EligibilityDecisions *prometheus.CounterVec
	LoansBooked          prometheus.Counter
	PrincipalBooked      prometheus.Counter
	CustomersRegistered  prometheus.Counter
}

type PortfolioMetrics struct {
	Customers       prometheus.Gauge
	Loans           prometheus.Gauge
	OutstandingDebt prometheus.Gauge
	LastRefresh     prometheus.Gauge
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "credit_approval_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Credit = CreditMetrics{
		EligibilityDecisions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_approval_eligibility_decisions_total",
				Help: "Eligibility evaluations by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		LoansBooked: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_approval_loans_booked_total",
				Help: "Total number of loans booked.",
			},
		),
		PrincipalBooked: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_approval_principal_booked_total",
				Help: "Sum of principal of all booked loans.",
			},
		),
		CustomersRegistered: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_approval_customers_registered_total",
				Help: "Total number of customers registered.",
			},
		),
	}

	Portfolio = PortfolioMetrics{
		Customers: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "credit_approval_portfolio_customers",
			Help: "Number of customers at the last portfolio snapshot.",
		}),
		Loans: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "credit_approval_portfolio_loans",
			Help: "Number of loans at the last portfolio snapshot.",
		}),
		OutstandingDebt: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "credit_approval_portfolio_outstanding_debt",
			Help: "Sum of current_debt across customers at the last portfolio snapshot.",
		}),
		LastRefresh: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "credit_approval_portfolio_last_refresh_timestamp_seconds",
			Help: "Unix time of the last successful portfolio snapshot.",
		}),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordEligibilityDecision(operation string, approved bool) {
	outcome := "rejected"
	if approved {
		outcome = "approved"
	}
	Credit.EligibilityDecisions.WithLabelValues(operation, outcome).Inc()
}

func RecordLoanBooked(principal float64) {
	Credit.LoansBooked.Inc()
	Credit.PrincipalBooked.Add(principal)
}

func RecordCustomerRegistered() {
	Credit.CustomersRegistered.Inc()
}

func RecordPortfolioSnapshot(customers, loans int64, outstandingDebt float64, at time.Time) {
	Portfolio.Customers.Set(float64(customers))
	Portfolio.Loans.Set(float64(loans))
	Portfolio.OutstandingDebt.Set(outstandingDebt)
	Portfolio.LastRefresh.Set(float64(at.Unix()))
}
