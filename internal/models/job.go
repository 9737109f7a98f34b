package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Priority represents the urgency of a repair job
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// IsValidPriority checks if a priority is valid
func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// Job represents one repair engagement tying a customer, a device and a
// technician together through the status lifecycle.
type Job struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	JobNumber        string              `bson:"job_number" json:"job_number"`
	CustomerID       primitive.ObjectID  `bson:"customer_id" json:"customer_id"`
	DeviceID         primitive.ObjectID  `bson:"device_id" json:"device_id"`
	Description      string              `bson:"description" json:"description"`
	Priority         Priority            `bson:"priority" json:"priority"`
	RequiredSkillSet []string            `bson:"required_skill_set" json:"required_skill_set"`
	Status           Status              `bson:"status" json:"status"`
	CreatedBy        primitive.ObjectID  `bson:"created_by" json:"created_by"`
	AssignedTo       *primitive.ObjectID `bson:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	ScheduledDate    *time.Time          `bson:"scheduled_date,omitempty" json:"scheduled_date,omitempty"`
	CompletedDate    *time.Time          `bson:"completed_date,omitempty" json:"completed_date,omitempty"`
	SLADeadline      *time.Time          `bson:"sla_deadline,omitempty" json:"sla_deadline,omitempty"`
	CreatedAt        time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time           `bson:"updated_at" json:"updated_at"`
}

// CreateJobRequest represents a job creation request
type CreateJobRequest struct {
	CustomerID       string     `json:"customer_id"`
	DeviceID         string     `json:"device_id"`
	Description      string     `json:"description"`
	Priority         Priority   `json:"priority"`
	RequiredSkillSet []string   `json:"required_skill_set"`
	ScheduledDate    *time.Time `json:"scheduled_date"`
	SLADeadline      *time.Time `json:"sla_deadline"`
}

// JobPatch is a partial job update. Nil fields are left untouched.
type JobPatch struct {
	Description      *string    `json:"description"`
	Priority         *Priority  `json:"priority"`
	RequiredSkillSet *[]string  `json:"required_skill_set"`
	Status           *Status    `json:"status"`
	AssignedTo       *string    `json:"assigned_to"`
	ScheduledDate    *time.Time `json:"scheduled_date"`
	CompletedDate    *time.Time `json:"completed_date"`
	SLADeadline      *time.Time `json:"sla_deadline"`
}

// IsStatusOnly reports whether the patch changes the status field and
// nothing else.
func (p JobPatch) IsStatusOnly() bool {
	return p.Status != nil &&
		p.Description == nil &&
		p.Priority == nil &&
		p.RequiredSkillSet == nil &&
		p.AssignedTo == nil &&
		p.ScheduledDate == nil &&
		p.CompletedDate == nil &&
		p.SLADeadline == nil
}

// IsEmpty reports whether the patch changes nothing.
func (p JobPatch) IsEmpty() bool {
	return p.Status == nil &&
		p.Description == nil &&
		p.Priority == nil &&
		p.RequiredSkillSet == nil &&
		p.AssignedTo == nil &&
		p.ScheduledDate == nil &&
		p.CompletedDate == nil &&
		p.SLADeadline == nil
}

// AssignJobRequest represents a technician assignment request
type AssignJobRequest struct {
	TechnicianID string `json:"technicianId"`
}
