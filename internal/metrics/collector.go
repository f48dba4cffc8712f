package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vovakirdan/diagramhub/internal/core"
)

const namespace = "diagramhub"

// Collector records core activity as Prometheus metrics. It implements
// core.Observer.
type Collector struct {
	registry *prometheus.Registry

	roomsActive        prometheus.Gauge
	roomsCreated       prometheus.Counter
	roomsEvicted       prometheus.Counter
	participantsActive prometheus.Gauge
	commands           *prometheus.CounterVec
	events             *prometheus.CounterVec
	deliveries         *prometheus.CounterVec
	slowConsumers      prometheus.Counter
}

// New creates a collector backed by its own Prometheus registry, so several
// collectors can coexist in one process (tests in particular).
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		roomsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_active",
			Help:      "Number of rooms held in memory.",
		}),
		roomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_created_total",
			Help:      "Rooms created since start.",
		}),
		roomsEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_evicted_total",
			Help:      "Rooms evicted after staying empty.",
		}),
		participantsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "participants_active",
			Help:      "Participants currently joined to a room.",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Client commands handled, by kind and whether they were accepted.",
		}, []string{"command", "accepted"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Room events published, by kind.",
		}, []string{"event"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_deliveries_total",
			Help:      "Events queued to individual participants, by kind.",
		}, []string{"event"}),
		slowConsumers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slow_consumers_dropped_total",
			Help:      "Participants disconnected because their outbound queue overflowed.",
		}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.roomsActive,
		c.roomsCreated,
		c.roomsEvicted,
		c.participantsActive,
		c.commands,
		c.events,
		c.deliveries,
		c.slowConsumers,
	)
	return c
}

// Handler serves the metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) RoomCreated(string) {
	c.roomsActive.Inc()
	c.roomsCreated.Inc()
}

func (c *Collector) RoomEvicted(string) {
	c.roomsActive.Dec()
	c.roomsEvicted.Inc()
}

func (c *Collector) ParticipantJoined(string) {
	c.participantsActive.Inc()
}

func (c *Collector) ParticipantLeft(string) {
	c.participantsActive.Dec()
}

func (c *Collector) CommandHandled(kind core.CommandKind, accepted bool) {
	c.commands.WithLabelValues(kind.String(), strconv.FormatBool(accepted)).Inc()
}

func (c *Collector) EventPublished(kind core.EventKind, recipients int) {
	c.events.WithLabelValues(kind.String()).Inc()
	c.deliveries.WithLabelValues(kind.String()).Add(float64(recipients))
}

func (c *Collector) SubscriberDropped(string) {
	c.slowConsumers.Inc()
}

var _ core.Observer = (*Collector)(nil)
