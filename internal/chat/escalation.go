package chat

import "strings"

// escalationKeywords are terms denoting acute emergencies. The set is fixed
// and small on purpose: the flag is advisory metadata, not a dispatch trigger.
var escalationKeywords = []string{
	"emergency",
	"chest pain",
	"unconscious",
	"bleeding",
	"suicide",
}

// DetectEscalation scans the raw user utterance for emergency language.
// It depends only on the utterance text, never on which provider answers it.
func DetectEscalation(text string) bool {
	lower := strings.ToLower(text)
	for _, k := range escalationKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
