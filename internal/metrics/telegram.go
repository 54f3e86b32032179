package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		updatesReceivedTotal,
		commandsHandledTotal,
		usagePromptsTotal,
		channelPostsForwardedTotal,
	)
}

var (
	updatesReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_updates_received_total",
			Help: "Incoming updates by type.",
		},
		[]string{"type"},
	)

	commandsHandledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_handled_total",
			Help: "Commands dispatched to a handler.",
		},
		[]string{"command"},
	)

	usagePromptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_usage_prompts_total",
			Help: "Commands answered with the usage prompt because no argument was given.",
		},
		[]string{"command"},
	)

	channelPostsForwardedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_channel_posts_forwarded_total",
			Help: "Channel posts forwarded to the destination group.",
		},
		[]string{"result"},
	)
)

func IncUpdate(updateType string) {
	updatesReceivedTotal.WithLabelValues(norm(updateType)).Inc()
}

func IncCommand(command string) {
	commandsHandledTotal.WithLabelValues(norm(command)).Inc()
}

func IncUsagePrompt(command string) {
	usagePromptsTotal.WithLabelValues(norm(command)).Inc()
}

func IncForward(success bool) {
	channelPostsForwardedTotal.WithLabelValues(result(success)).Inc()
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
