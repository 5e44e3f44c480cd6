// Package metrics exposes prometheus instrumentation for the bracket engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Recorder is safe to use as a nil pointer; every method is then a no-op.
type Recorder struct {
	generations      *prometheus.CounterVec
	nextRounds       *prometheus.CounterVec
	scoreSubmissions *prometheus.CounterVec
	matchCompletions prometheus.Counter
	duration         *prometheus.HistogramVec
}

func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bracket_generations_total",
			Help: "Round-1 bracket generation attempts by format and result.",
		}, []string{"format", "result"}),
		nextRounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "next_round_generations_total",
			Help: "Knockout next-round generation attempts by result.",
		}, []string{"result"}),
		scoreSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "score_submissions_total",
			Help: "Score submissions by result.",
		}, []string{"result"}),
		matchCompletions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "match_completions_total",
			Help: "Matches that transitioned to completed.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "engine_operation_duration_seconds",
			Help:    "Duration of bracket engine operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	reg.MustRegister(r.generations, r.nextRounds, r.scoreSubmissions, r.matchCompletions, r.duration)
	return r
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}

func (r *Recorder) ObserveGeneration(format string, started time.Time, err error) {
	if r == nil {
		return
	}
	r.generations.WithLabelValues(format, result(err)).Inc()
	r.duration.WithLabelValues("generate_bracket").Observe(time.Since(started).Seconds())
}

func (r *Recorder) ObserveNextRound(started time.Time, err error) {
	if r == nil {
		return
	}
	r.nextRounds.WithLabelValues(result(err)).Inc()
	r.duration.WithLabelValues("generate_next_round").Observe(time.Since(started).Seconds())
}

func (r *Recorder) ObserveScoreSubmission(started time.Time, err error) {
	if r == nil {
		return
	}
	r.scoreSubmissions.WithLabelValues(result(err)).Inc()
	r.duration.WithLabelValues("submit_score").Observe(time.Since(started).Seconds())
}

func (r *Recorder) IncMatchCompleted() {
	if r == nil {
		return
	}
	r.matchCompletions.Inc()
}
