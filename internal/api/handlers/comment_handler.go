package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/hoot-be/internal/services"
)

// CommentHandler handles HTTP requests for the comments of a hoot.
type CommentHandler struct {
	service services.CommentServiceProvider
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(service services.CommentServiceProvider) *CommentHandler {
	return &CommentHandler{service: service}
}

// CommentPayload is the body of comment create and edit requests.
type CommentPayload struct {
	Text string `json:"text"`
}

// Create adds a comment by the caller to the hoot.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}
	hootID := chi.URLParam(r, "hootId")
	var payload CommentPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	comment, err := h.service.AddComment(r.Context(), hootID, payload.Text, claims.User())
	if err != nil {
		writeServiceError(w, r, err, "Failed to add comment", map[string]string{"hoot_id": hootID, "user_id": claims.UserID})
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// Update replaces a comment's text.
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}
	hootID, commentID := chi.URLParam(r, "hootId"), chi.URLParam(r, "commentId")
	var payload CommentPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	if err := h.service.UpdateComment(r.Context(), hootID, commentID, payload.Text, claims.UserID); err != nil {
		writeServiceError(w, r, err, "Failed to update comment",
			map[string]string{"hoot_id": hootID, "comment_id": commentID, "user_id": claims.UserID})
		return
	}
	writeJSON(w, http.StatusOK, ackMessage)
}

// Delete removes a comment from its hoot.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}
	hootID, commentID := chi.URLParam(r, "hootId"), chi.URLParam(r, "commentId")

	if err := h.service.DeleteComment(r.Context(), hootID, commentID, claims.UserID); err != nil {
		writeServiceError(w, r, err, "Failed to delete comment",
			map[string]string{"hoot_id": hootID, "comment_id": commentID, "user_id": claims.UserID})
		return
	}
	writeJSON(w, http.StatusOK, ackMessage)
}
