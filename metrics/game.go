package metrics

import "github.com/prometheus/client_golang/prometheus"

// GameMetrics counts game activity. A nil *GameMetrics is valid and
// records nothing.
type GameMetrics struct {
	sessionsStarted prometheus.Counter
	matches         prometheus.Counter
	mismatches      prometheus.Counter
	boardsSolved    *prometheus.CounterVec
	activeSessions  prometheus.Gauge
	clients         prometheus.Gauge
}

func NewGameMetrics(namespace string, reg prometheus.Registerer) *GameMetrics {
	m := &GameMetrics{
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_started_total",
			Help:      "Boards generated.",
		}),
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_total",
			Help:      "Pairs moved to waste.",
		}),
		mismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mismatches_total",
			Help:      "Pairs rejected by the match rule.",
		}),
		boardsSolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boards_solved_total",
			Help:      "Boards cleared, by template.",
		}, []string{"template"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions holding a board.",
		}),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_clients",
			Help:      "Open websocket connections.",
		}),
	}
	reg.MustRegister(m.sessionsStarted, m.matches, m.mismatches, m.boardsSolved, m.activeSessions, m.clients)
	return m
}

func (m *GameMetrics) GameStarted() {
	if m != nil {
		m.sessionsStarted.Inc()
	}
}

func (m *GameMetrics) Matched() {
	if m != nil {
		m.matches.Inc()
	}
}

func (m *GameMetrics) Mismatched() {
	if m != nil {
		m.mismatches.Inc()
	}
}

func (m *GameMetrics) Solved(template string) {
	if m != nil {
		m.boardsSolved.WithLabelValues(template).Inc()
	}
}

func (m *GameMetrics) SetActiveSessions(n int) {
	if m != nil {
		m.activeSessions.Set(float64(n))
	}
}

func (m *GameMetrics) ClientConnected() {
	if m != nil {
		m.clients.Inc()
	}
}

func (m *GameMetrics) ClientDisconnected() {
	if m != nil {
		m.clients.Dec()
	}
}
