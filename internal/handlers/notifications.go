package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ukydev/repair-desk/internal/apierror"
	"github.com/ukydev/repair-desk/internal/db"
	"github.com/ukydev/repair-desk/internal/middleware"
)

// NotificationHandler serves a user's durable notification records
type NotificationHandler struct {
	notifications db.NotificationCollection
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationCollection db.NotificationCollection) *NotificationHandler {
	return &NotificationHandler{notifications: notificationCollection}
}

// List handles GET /notifications, newest first
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		apierror.Write(w, apierror.Unauthorized("Authentication required"))
		return
	}

	notifications, err := h.notifications.FindNotificationsByUser(r.Context(), claims.UserID, false)
	if err != nil {
		apierror.Write(w, err)
		return
	}

	writeJSON(w, http.StatusOK, notifications)
}

// Unread handles GET /notifications/unread
func (h *NotificationHandler) Unread(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		apierror.Write(w, apierror.Unauthorized("Authentication required"))
		return
	}

	notifications, err := h.notifications.FindNotificationsByUser(r.Context(), claims.UserID, true)
	if err != nil {
		apierror.Write(w, err)
		return
	}

	writeJSON(w, http.StatusOK, notifications)
}

// MarkRead handles PUT /notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		apierror.Write(w, apierror.Unauthorized("Authentication required"))
		return
	}

	notification, err := h.notifications.MarkNotificationRead(r.Context(), mux.Vars(r)["id"], claims.UserID)
	if err != nil {
		apierror.Write(w, apierror.NotFound("Notification not found"))
		return
	}

	writeJSON(w, http.StatusOK, notification)
}

// Delete handles DELETE /notifications/{id}
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		apierror.Write(w, apierror.Unauthorized("Authentication required"))
		return
	}

	if err := h.notifications.DeleteNotification(r.Context(), mux.Vars(r)["id"], claims.UserID); err != nil {
		apierror.Write(w, apierror.NotFound("Notification not found"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification deleted successfully"})
}
