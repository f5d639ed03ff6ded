package chat

import (
	"fmt"
	"strings"

	"github.com/Abhi-200412/AuraMed-sub000/pkg/models"
)

const reviewerPersona = `ROLE: Expert Medical AI Consultant (Radiology Specialist).
TONE: Professional, Clinical, Precise, Concise.
OBJECTIVE: Assist the physician with differential diagnosis, treatment planning, and report review based on the provided scan analysis.
CONSTRAINTS:
- Use standard medical terminology.
- Cite specific findings from the context.
- Structure responses with clear headings.
- Do NOT invent findings not present in the context.
- If the scan is NORMAL, focus on reassurance and standard screening protocols.`

const subjectAnomalyPersona = `ROLE: Empathetic, Consoling Personal Health Assistant.
TONE: Gentle, Reassuring, Supportive.
OBJECTIVE: Provide emotional support while explaining the results. The patient may be scared.
CONSTRAINTS:
- Acknowledge their potential anxiety immediately.
- Use comforting language.
- Explain the findings gently but clearly.
- Emphasize that this is a screening, not a final diagnosis.
- Guide them firmly but compassionately to see a doctor.`

const subjectNormalPersona = `ROLE: Cheerful, Encouraging Personal Health Assistant.
TONE: Upbeat, Positive, Friendly.
OBJECTIVE: Celebrate the good news and encourage healthy habits.
CONSTRAINTS:
- Use positive reinforcement.
- Focus on wellness and prevention.
- Keep the conversation light and friendly.
- Still recommend routine check-ups as standard practice.`

// BuildSystemPrompt assembles the instruction block for one turn: a persona
// chosen purely from (role, anomaly detected) — four variants in total, the
// reviewer persona not varying by anomaly — plus a structured dump of the
// latest known analysis result.
func BuildSystemPrompt(role string, result *models.ScanResult) string {
	var b strings.Builder
	b.WriteString(persona(role, result))

	b.WriteString("\n\n--- CURRENT CASE CONTEXT ---")
	if result == nil {
		b.WriteString("\n(No scan data available. Answer general questions.)")
		return b.String()
	}

	if result.AnomalyDetected {
		b.WriteString("\nSTATUS: ANOMALY DETECTED")
	} else {
		b.WriteString("\nSTATUS: NORMAL SCAN")
	}
	if result.ConfidenceScore > 0 {
		fmt.Fprintf(&b, "\nCONFIDENCE: %.0f%%", result.ConfidenceScore)
	}
	if result.Severity != "" {
		fmt.Fprintf(&b, "\nSEVERITY: %s", strings.ToUpper(result.Severity))
	}
	if result.AnatomicalRegion != "" {
		fmt.Fprintf(&b, "\nREGION: %s", result.AnatomicalRegion)
	}
	if result.Findings != "" {
		fmt.Fprintf(&b, "\nKEY FINDINGS: %s", result.Findings)
	}
	if len(result.Recommendations) > 0 {
		fmt.Fprintf(&b, "\nRECOMMENDED ACTIONS: %s", strings.Join(result.Recommendations, "; "))
	}

	return b.String()
}

func persona(role string, result *models.ScanResult) string {
	if role == models.RoleReviewer {
		return reviewerPersona
	}
	if result != nil && result.AnomalyDetected {
		return subjectAnomalyPersona
	}
	return subjectNormalPersona
}

// Generation profiles per role: the reviewer gets a cooler, longer profile,
// the subject a warmer, shorter one. Values match the product's tuning.
func generationProfile(role string) (temperature float64, maxTokens int) {
	if role == models.RoleReviewer {
		return 0.6, 1000
	}
	return 0.9, 800
}

// windowHistory returns the most recent n turns, preserving order.
func windowHistory(history []models.ChatMessage, n int) []models.ChatMessage {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
