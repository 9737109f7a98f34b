package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/repair-desk/internal/middleware"
	"github.com/ukydev/repair-desk/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func notificationRouter(store *fakeStore, claims *models.Claims) *mux.Router {
	handler := NewNotificationHandler(store)
	router := mux.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	router.HandleFunc("/notifications", handler.List).Methods(http.MethodGet)
	router.HandleFunc("/notifications/unread", handler.Unread).Methods(http.MethodGet)
	router.HandleFunc("/notifications/{id}/read", handler.MarkRead).Methods(http.MethodPut)
	router.HandleFunc("/notifications/{id}", handler.Delete).Methods(http.MethodDelete)
	return router
}

func TestNotifications_OwnerScoped(t *testing.T) {
	store := newFakeStore()
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()

	mine, err := store.InsertNotification(context.Background(), models.Notification{
		UserID:  owner,
		Message: "You have been assigned job T1001",
		Type:    models.NotificationNewAssignment,
	})
	require.NoError(t, err)
	_, err = store.InsertNotification(context.Background(), models.Notification{
		UserID:  other,
		Message: "You have been assigned job T1002",
		Type:    models.NotificationNewAssignment,
	})
	require.NoError(t, err)

	router := notificationRouter(store, &models.Claims{UserID: owner.Hex(), Role: models.RoleTechnician})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []models.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, mine.ID, listed[0].ID)
}

func TestNotifications_UnreadThenMarkRead(t *testing.T) {
	store := newFakeStore()
	owner := primitive.NewObjectID()

	record, err := store.InsertNotification(context.Background(), models.Notification{
		UserID:  owner,
		Message: "You have been assigned job T1001",
		Type:    models.NotificationNewAssignment,
	})
	require.NoError(t, err)

	router := notificationRouter(store, &models.Claims{UserID: owner.Hex(), Role: models.RoleTechnician})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications/unread", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var unread []models.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &unread))
	require.Len(t, unread, 1)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/notifications/"+record.ID.Hex()+"/read", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var marked models.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &marked))
	assert.True(t, marked.IsRead)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications/unread", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	unread = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &unread))
	assert.Empty(t, unread)
}

func TestNotifications_DeleteForeignRecord(t *testing.T) {
	store := newFakeStore()
	owner := primitive.NewObjectID()

	record, err := store.InsertNotification(context.Background(), models.Notification{
		UserID:  owner,
		Message: "You have been assigned job T1001",
		Type:    models.NotificationNewAssignment,
	})
	require.NoError(t, err)

	// Someone else cannot delete the owner's record
	router := notificationRouter(store, &models.Claims{UserID: primitive.NewObjectID().Hex(), Role: models.RoleTechnician})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/notifications/"+record.ID.Hex(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// The owner can
	router = notificationRouter(store, &models.Claims{UserID: owner.Hex(), Role: models.RoleTechnician})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/notifications/"+record.ID.Hex(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	listed, err := store.FindNotificationsByUser(context.Background(), owner.Hex(), false)
	require.NoError(t, err)
	assert.Empty(t, listed)
}
