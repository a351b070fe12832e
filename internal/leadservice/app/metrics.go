package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	webhookEventsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leadline",
			Name:      "webhook_events_total",
			Help:      "Total inbound telephony webhook events handled.",
		},
		[]string{"event", "outcome"}, // event: voice, voicemail, transcription, sms; outcome: ok, error, no_match
	)

	leadsCreatedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leadline",
			Name:      "leads_created_total",
			Help:      "Total leads created, by source.",
		},
		[]string{"source"}, // voicemail, sms
	)

	operatorAlertsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leadline",
			Name:      "operator_alerts_total",
			Help:      "Operator alert attempts, by result.",
		},
		[]string{"result"}, // sent, suppressed_dedup, send_failed, compose_skipped
	)

	autoTextsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leadline",
			Name:      "auto_texts_total",
			Help:      "Customer auto-text attempts, by result.",
		},
		[]string{"result"}, // sent, send_failed
	)
)
