// Package models contains shared data models used across the AuraMed codebase.
package models

// Conversation roles. A reviewer is the clinician reading scans; a subject is
// the person the scan belongs to.
const (
	RoleReviewer = "reviewer"
	RoleSubject  = "subject"
)

// Chat providers, in fallback order.
const (
	ProviderLocal   = "local"
	ProviderCloud   = "cloud"
	ProviderOffline = "offline"
)

// ChatMessage is a single role-tagged utterance in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ConversationContext is the full input for one conversational turn. It is
// passed explicitly on every call; there is no ambient session state.
type ConversationContext struct {
	Role    string        `json:"role"`
	Result  *ScanResult   `json:"result,omitempty"`
	History []ChatMessage `json:"history,omitempty"`
	Message string        `json:"message"`
}

// Answer is the outcome of resolving one conversational turn. Escalation is
// advisory metadata computed from the user's utterance, independent of which
// provider produced the text.
type Answer struct {
	Text       string `json:"text"`
	Escalation bool   `json:"escalation"`
	Provider   string `json:"provider"`
}
