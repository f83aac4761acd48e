package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resume event labels.
const (
	EventCreated    = "created"
	EventUpdated    = "updated"
	EventDeleted    = "deleted"
	EventDuplicated = "duplicated"
	EventView       = "view"
	EventDownload   = "download"
	EventShare      = "share"
)

var (
	resumeEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resumes",
			Name:      "events_total",
			Help:      "Resume lifecycle and engagement events.",
		},
		[]string{"event"},
	)

	publicAccessDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resumes",
			Name:      "public_access_denied_total",
			Help:      "Share link requests rejected, by reason.",
		},
		[]string{"reason"},
	)

	versionConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resumes",
			Name:      "version_conflicts_total",
			Help:      "Owner writes rejected because the stored version moved.",
		},
	)
)

// ObserveResumeEvent counts one resume event.
func ObserveResumeEvent(event string) {
	resumeEventsTotal.WithLabelValues(event).Inc()
}

// ObservePublicAccessDenied counts a rejected share link request.
func ObservePublicAccessDenied(reason string) {
	publicAccessDeniedTotal.WithLabelValues(reason).Inc()
}

// ObserveVersionConflict counts a lost optimistic-concurrency race.
func ObserveVersionConflict() {
	versionConflictsTotal.Inc()
}
