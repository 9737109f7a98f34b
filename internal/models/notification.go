package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType represents the category of a notification
type NotificationType string

const (
	NotificationNewAssignment             NotificationType = "New Assignment"
	NotificationPartsRequestUpdate        NotificationType = "Parts Request Update"
	NotificationSLABreach                 NotificationType = "SLA Breach"
	NotificationDeviceCollected           NotificationType = "Device Collected"
	NotificationWorkshopDiagnosisComplete NotificationType = "Workshop Diagnosis Complete"
	NotificationJobClosureApproval        NotificationType = "Job Closure Approval"
	NotificationFeedbackReceived          NotificationType = "Feedback Received"
	NotificationSystemAlert               NotificationType = "System Alert"
)

// Notification is a durable per-user notification record. Live delivery
// over the websocket channel is best-effort and independent of this record.
type Notification struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Message      string              `bson:"message" json:"message"`
	Type         NotificationType    `bson:"notification_type" json:"notification_type"`
	IsRead       bool                `bson:"is_read" json:"is_read"`
	ActionURL    string              `bson:"action_url,omitempty" json:"action_url,omitempty"`
	RelatedJobID *primitive.ObjectID `bson:"related_job_id,omitempty" json:"related_job_id,omitempty"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
}
