// Package offline is the deterministic responder at the bottom of the
// provider chain. It consults a small rule table keyed on role, anomaly
// presence, and utterance keywords, and can never fail.
package offline

import (
	"strings"

	"github.com/Abhi-200412/AuraMed-sub000/pkg/models"
)

// Responder selects a canned, context-appropriate reply.
type Responder struct{}

func NewResponder() *Responder {
	return &Responder{}
}

func (Responder) Respond(cc models.ConversationContext) string {
	lower := strings.ToLower(cc.Message)
	anomaly := cc.Result != nil && cc.Result.AnomalyDetected

	if cc.Role == models.RoleReviewer {
		switch {
		case strings.Contains(lower, "differential") || strings.Contains(lower, "diagnosis"):
			return "Based on imaging: 1. Neoplastic (Primary/Metastatic), 2. Infectious, 3. Vascular. Correlate clinically."
		case anomaly:
			return "Offline mode: the scan indicates potential anomalies. Please review the detailed report."
		default:
			return "Offline mode: no anomaly flagged on the current scan. Full report available for review."
		}
	}

	switch {
	case strings.Contains(lower, "worry") || strings.Contains(lower, "cancer"):
		return "I understand this is stressful. This is a screening result, not a final diagnosis. Please consult your doctor."
	case strings.Contains(lower, "hello") || strings.Contains(lower, "hi "):
		return "Hello! I'm your AI assistant. How can I help you today?"
	case anomaly:
		return "I'm currently offline, but I can see your scan results. Please show them to your doctor."
	default:
		return "I'm currently offline. Your latest scan shows no flagged findings; keep up your routine check-ups."
	}
}
