package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(channelsRegisteredTotal, channelsClaimedTotal, claimsExpiredTotal)
}

var (
	channelsRegisteredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "channels_registered_total",
			Help: "Channels registered from channel posts.",
		},
	)

	channelsClaimedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "channels_claimed_total",
			Help: "Channels successfully claimed by an owner.",
		},
	)

	claimsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "claims_expired_total",
			Help: "Claim windows closed by the expiry worker.",
		},
	)
)

func IncChannelRegistered() { channelsRegisteredTotal.Inc() }

func IncChannelClaimed() { channelsClaimedTotal.Inc() }

func AddClaimsExpired(n int64) { claimsExpiredTotal.Add(float64(n)) }
