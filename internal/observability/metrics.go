package observability

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/SmarabSJJ/ufo-seat-service/internal/seattoken"
)

var (
	TokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seatsvc_tokens_issued_total",
			Help: "Total number of seat tokens generated",
		},
	)

	TokenValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seatsvc_token_validation_failures_total",
			Help: "Total number of seat token validation failures",
		},
		[]string{"kind"},
	)

	HandshakeOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seatsvc_handshake_outcomes_total",
			Help: "Terminal outcomes of LinkedIn auth handshakes",
		},
		[]string{"result"},
	)
)

// RecordTokenValidationFailure classifies a codec validation error and bumps
// the failure counter for its kind. Every path that rejects a token on codec
// grounds goes through here so the metric covers gate and handshake alike.
func RecordTokenValidationFailure(err error) {
	kind := "other"
	switch {
	case errors.Is(err, seattoken.ErrMalformedToken):
		kind = "malformed"
	case errors.Is(err, seattoken.ErrTamperedToken):
		kind = "tampered"
	case errors.Is(err, seattoken.ErrCorruptPayload):
		kind = "corrupt"
	}
	TokenValidationFailures.WithLabelValues(kind).Inc()
}
