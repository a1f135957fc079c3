package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Счётчики жизненного цикла объявления. Регистрируются в дефолтном
// реестре, наружу отдаются через /metrics служебного HTTP.
var (
	SubmissionsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ads_submissions_saved_total",
		Help: "Ads inserted with status pending.",
	})

	Decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ads_moderation_decisions_total",
		Help: "Moderation decisions by outcome.",
	}, []string{"outcome"})

	BroadcastDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ads_broadcast_deliveries_total",
		Help: "Per-recipient fan-out results.",
	}, []string{"result"})
)
