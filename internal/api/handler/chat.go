package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Abhi-200412/AuraMed-sub000/internal/api/response"
	"github.com/Abhi-200412/AuraMed-sub000/pkg/models"
)

// Resolver defines the interface the chat handler depends on. Resolution
// never fails; degraded providers fall through to the offline floor.
type Resolver interface {
	Resolve(ctx context.Context, cc models.ConversationContext) models.Answer
}

// NewChatHandler returns an http.HandlerFunc for POST /api/v1/chat. A valid
// request always gets 200 with an answer, whatever the provider weather.
func NewChatHandler(resolver Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cc models.ConversationContext
		if err := json.NewDecoder(r.Body).Decode(&cc); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if cc.Role != models.RoleReviewer && cc.Role != models.RoleSubject {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"role must be \"reviewer\" or \"subject\"", nil)
			return
		}
		if cc.Message == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "message is required", nil)
			return
		}

		answer := resolver.Resolve(r.Context(), cc)
		response.JSON(w, answer)
	}
}
