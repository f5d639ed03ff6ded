// Package notify decides who is told about a completed analysis and with
// what urgency. It is a policy table, not a delivery mechanism: actual
// delivery happens behind the Notifier boundary.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Abhi-200412/AuraMed-sub000/internal/metrics"
	"github.com/Abhi-200412/AuraMed-sub000/pkg/models"
)

// Intent is the ephemeral notification decision for one completed job.
// The two facets are computed independently: a medium-severity anomaly
// notifies the subject but not the reviewer.
type Intent struct {
	NotifyReviewer bool
	NotifySubject  bool
}

// Decide computes the notification intent from a scan result. Pure function;
// the reviewer threshold is fixed at high severity.
func Decide(result *models.ScanResult) Intent {
	if result == nil {
		return Intent{}
	}
	return Intent{
		NotifyReviewer: result.Severity == models.SeverityHigh,
		NotifySubject:  result.AnomalyDetected,
	}
}

// CaseSummary is the payload handed to the delivery boundary.
type CaseSummary struct {
	JobID       string
	SubjectName string
	Severity    string
	Findings    string
}

// Notifier is the fire-and-forget delivery boundary. Email, push, or in-app
// delivery lives behind this interface.
type Notifier interface {
	Notify(ctx context.Context, recipientRole, message string, summary CaseSummary)
}

// Router turns an Intent into notification dispatches.
type Router struct {
	notifier Notifier
}

func NewRouter(n Notifier) *Router {
	return &Router{notifier: n}
}

// Dispatch emits one notification per set intent facet. Message tone differs
// by severity: high-severity cases are phrased as already escalated, the rest
// as routine review.
func (r *Router) Dispatch(ctx context.Context, intent Intent, summary CaseSummary) {
	if intent.NotifyReviewer {
		msg := fmt.Sprintf(
			"URGENT: high-severity anomaly for %s has been escalated to you for immediate review.",
			summary.SubjectName)
		r.notifier.Notify(ctx, models.RoleReviewer, msg, summary)
		metrics.NotificationsDispatched.WithLabelValues(models.RoleReviewer).Inc()
	}

	if intent.NotifySubject {
		var msg string
		if summary.Severity == models.SeverityHigh {
			msg = "Your scan results are ready. A specialist has already been alerted and will contact you shortly."
		} else {
			msg = "Your scan results are ready. A finding was noted; please review them with your doctor when convenient."
		}
		r.notifier.Notify(ctx, models.RoleSubject, msg, summary)
		metrics.NotificationsDispatched.WithLabelValues(models.RoleSubject).Inc()
	}
}

// LogNotifier writes notifications to the structured log. It stands in for
// the external delivery channel.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, recipientRole, message string, summary CaseSummary) {
	slog.Info("notification dispatched",
		"recipient", recipientRole,
		"job_id", summary.JobID,
		"severity", summary.Severity,
		"message", message,
	)
}

var _ Notifier = LogNotifier{}
