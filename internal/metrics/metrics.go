package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/limaJavier/timegrid/pkg/model"
	"github.com/limaJavier/timegrid/pkg/timetabler"
)

// Recorder collects the fill-rate figures of generation runs on a private registry
type Recorder struct {
	registry    *prometheus.Registry
	placements  *prometheus.CounterVec
	courses     *prometheus.CounterVec
	shortfalls  *prometheus.CounterVec
	gaps        *prometheus.CounterVec
	conflicts   prometheus.Gauge
	violations  prometheus.Gauge
	runDuration prometheus.Histogram
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	placements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timegrid_placements_total",
		Help: "Component instances placed, by semester and component",
	}, []string{"semester", "component"})

	courses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timegrid_courses_total",
		Help: "Course results, by semester and scheduling status",
	}, []string{"semester", "status"})

	shortfalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timegrid_shortfall_instances_total",
		Help: "Component instances that could not be placed, by component",
	}, []string{"component"})

	gaps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timegrid_gaps_total",
		Help: "Courses left out of every session or never scheduled",
	}, []string{"semester"})

	conflicts := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timegrid_room_conflicts",
		Help: "Room conflicts reported by the last run",
	})

	violations := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timegrid_violations",
		Help: "Violations found when verifying the last run",
	})

	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timegrid_run_duration_seconds",
		Help:    "Duration of generation runs in seconds",
		Buckets: prometheus.DefBuckets,
	})

	registry.MustRegister(placements, courses, shortfalls, gaps, conflicts, violations, runDuration)

	return &Recorder{
		registry:    registry,
		placements:  placements,
		courses:     courses,
		shortfalls:  shortfalls,
		gaps:        gaps,
		conflicts:   conflicts,
		violations:  violations,
		runDuration: runDuration,
	}
}

func (recorder *Recorder) Registry() *prometheus.Registry {
	return recorder.registry
}

// ObserveRun records the outcome of one run
func (recorder *Recorder) ObserveRun(run timetabler.Run, violations int, duration time.Duration) {
	if recorder == nil {
		return
	}
	for _, result := range run.Results {
		semester := strconv.Itoa(result.Semester)
		recorder.courses.WithLabelValues(semester, result.Status.String()).Inc()
		recorder.placements.WithLabelValues(semester, model.Lecture.String()).Add(float64(result.Actual.Lectures))
		recorder.placements.WithLabelValues(semester, model.Tutorial.String()).Add(float64(result.Actual.Tutorials))
		recorder.placements.WithLabelValues(semester, model.Lab.String()).Add(float64(result.Actual.Labs))
	}
	for _, shortfall := range run.Shortfalls {
		recorder.shortfalls.WithLabelValues(shortfall.Component.String()).Add(float64(shortfall.Required - shortfall.Placed))
	}
	for _, gap := range run.Gaps {
		recorder.gaps.WithLabelValues(strconv.Itoa(gap.Semester)).Inc()
	}
	recorder.conflicts.Set(float64(len(run.Conflicts)))
	recorder.violations.Set(float64(violations))
	recorder.runDuration.Observe(duration.Seconds())
}

// WriteToTextfile dumps the registry in the text exposition format
func (recorder *Recorder) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, recorder.registry)
}
