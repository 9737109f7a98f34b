package jobs

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/repair-desk/internal/apierror"
	"github.com/ukydev/repair-desk/internal/db"
	"github.com/ukydev/repair-desk/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// jobNumberSeed is the counter value below the first issued job number, so
// the first job gets T1001.
const jobNumberSeed = 1000

// Notifier pushes a payload to a connected user, best-effort. It reports
// whether delivery was attempted, never an error.
type Notifier interface {
	NotifyUser(userID string, payload interface{}) bool
}

// AssignedJob is the assignment result enriched for immediate display
type AssignedJob struct {
	models.Job
	Technician *TechnicianInfo `json:"technician,omitempty"`
	Customer   *CustomerInfo   `json:"customer,omitempty"`
}

// TechnicianInfo is the minimal technician display projection
type TechnicianInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CustomerInfo is the minimal customer display projection
type CustomerInfo struct {
	Name string `json:"name"`
}

// Service owns the job lifecycle: creation with generated numbers, status
// transitions, the delete guard and technician assignment.
type Service struct {
	jobs          db.JobCollection
	users         db.UserCollection
	customers     db.CustomerCollection
	devices       db.DeviceCollection
	notifications db.NotificationCollection
	counters      db.CounterCollection
	notifier      Notifier
}

// NewService creates a new job service
func NewService(
	jobs db.JobCollection,
	users db.UserCollection,
	customers db.CustomerCollection,
	devices db.DeviceCollection,
	notifications db.NotificationCollection,
	counters db.CounterCollection,
	notifier Notifier,
) *Service {
	return &Service{
		jobs:          jobs,
		users:         users,
		customers:     customers,
		devices:       devices,
		notifications: notifications,
		counters:      counters,
		notifier:      notifier,
	}
}

// EnsureCounters seeds the job number sequence. Safe to call on every start.
func (s *Service) EnsureCounters(ctx context.Context) error {
	return s.counters.EnsureCounter(ctx, models.CounterJobNumber, jobNumberSeed)
}

// NextJobNumber issues the next job number from the shared atomic counter.
// Numbers may have gaps when a creation fails after numbering; uniqueness,
// not density, is the invariant.
func (s *Service) NextJobNumber(ctx context.Context) (string, error) {
	seq, err := s.counters.NextSequence(ctx, models.CounterJobNumber)
	if err != nil {
		return "", fmt.Errorf("failed to issue job number: %w", err)
	}
	return fmt.Sprintf("T%04d", seq), nil
}

// Create validates the customer and device references, numbers the job and
// persists it with status Pending Assignment.
func (s *Service) Create(ctx context.Context, req models.CreateJobRequest, createdBy string) (*models.Job, error) {
	if req.CustomerID == "" || req.DeviceID == "" || req.Description == "" {
		return nil, apierror.BadRequest("Customer, device and description are required")
	}

	creatorID, err := primitive.ObjectIDFromHex(createdBy)
	if err != nil {
		return nil, apierror.BadRequest("Invalid user")
	}

	customer, err := s.customers.FindCustomerByID(ctx, req.CustomerID)
	if err != nil || customer == nil {
		return nil, apierror.BadRequest("Customer not found")
	}
	device, err := s.devices.FindDeviceByID(ctx, req.DeviceID)
	if err != nil || device == nil {
		return nil, apierror.BadRequest("Device not found")
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.IsValidPriority(priority) {
		return nil, apierror.BadRequest(fmt.Sprintf("Invalid priority %s", priority))
	}

	jobNumber, err := s.NextJobNumber(ctx)
	if err != nil {
		return nil, err
	}

	skills := req.RequiredSkillSet
	if skills == nil {
		skills = []string{}
	}

	job := models.Job{
		JobNumber:        jobNumber,
		CustomerID:       customer.ID,
		DeviceID:         device.ID,
		Description:      req.Description,
		Priority:         priority,
		RequiredSkillSet: skills,
		Status:           models.StatusPendingAssignment,
		CreatedBy:        creatorID,
		ScheduledDate:    req.ScheduledDate,
		SLADeadline:      req.SLADeadline,
	}

	return s.jobs.InsertJob(ctx, job)
}

// Get returns a job by id
func (s *Service) Get(ctx context.Context, id string) (*models.Job, error) {
	job, err := s.jobs.FindJobByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("Job not found")
	}
	return job, nil
}

// ApplyUpdate merges a partial patch into a job, gating any status change
// through the transition table. A same-status change passes only when the
// patch touches other fields as well.
func (s *Service) ApplyUpdate(ctx context.Context, id string, patch models.JobPatch) (*models.Job, error) {
	job, err := s.jobs.FindJobByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("Job not found")
	}

	if patch.Status != nil {
		if !models.IsValidStatus(*patch.Status) {
			return nil, apierror.BadRequest(fmt.Sprintf("Invalid status %s", *patch.Status))
		}
		if !transitionAllowed(job.Status, *patch.Status, patch.IsStatusOnly()) {
			return nil, apierror.BadRequest(fmt.Sprintf(
				"Invalid status transition from %s to %s", job.Status, *patch.Status))
		}
	}
	if patch.Priority != nil && !models.IsValidPriority(*patch.Priority) {
		return nil, apierror.BadRequest(fmt.Sprintf("Invalid priority %s", *patch.Priority))
	}

	set, err := patchToSet(patch)
	if err != nil {
		return nil, err
	}
	set["updated_at"] = time.Now()

	if err := s.jobs.UpdateJob(ctx, id, set); err != nil {
		return nil, apierror.NotFound("Job not found")
	}

	return s.jobs.FindJobByID(ctx, id)
}

// Delete removes a job unless it is actively being worked
func (s *Service) Delete(ctx context.Context, id string) error {
	job, err := s.jobs.FindJobByID(ctx, id)
	if err != nil {
		return apierror.NotFound("Job not found")
	}

	if job.Status == models.StatusInProgress || job.Status == models.StatusAssigned {
		return apierror.BadRequest("Cannot delete job that is in progress. Please cancel or complete it first.")
	}

	if err := s.jobs.DeleteJob(ctx, id); err != nil {
		return apierror.NotFound("Job not found")
	}
	return nil
}

// Assign binds a technician to a job and forces the status to Assigned in
// one logical operation. Assignment is legal from several source states
// (Pending Assignment, On Hold, Reopened), so it deliberately bypasses the
// transition table and applies no precondition on the job's prior status.
func (s *Service) Assign(ctx context.Context, jobID, technicianID string) (*AssignedJob, error) {
	job, err := s.jobs.FindJobByID(ctx, jobID)
	if err != nil {
		return nil, apierror.NotFound("Job not found")
	}

	technician, err := s.users.FindUserByID(ctx, technicianID)
	if err != nil || technician == nil || technician.Role != models.RoleTechnician {
		return nil, apierror.BadRequest("Invalid technician")
	}

	set := bson.M{
		"assigned_to": technician.ID,
		"status":      models.StatusAssigned,
		"updated_at":  time.Now(),
	}
	if err := s.jobs.UpdateJob(ctx, jobID, set); err != nil {
		return nil, apierror.NotFound("Job not found")
	}

	updated, err := s.jobs.FindJobByID(ctx, jobID)
	if err != nil {
		return nil, apierror.NotFound("Job not found")
	}

	result := &AssignedJob{
		Job:        *updated,
		Technician: &TechnicianInfo{Name: technician.Name, Email: technician.Email},
	}
	if customer, err := s.customers.FindCustomerByID(ctx, updated.CustomerID.Hex()); err == nil {
		result.Customer = &CustomerInfo{Name: customer.Name}
	}

	s.notifyAssignment(ctx, updated, technician, job.Status)

	return result, nil
}

// notifyAssignment writes the durable notification record and pushes it
// over the live channel if the technician is connected. Push failure is
// not an error; the record is the delivery guarantee.
func (s *Service) notifyAssignment(ctx context.Context, job *models.Job, technician *models.User, previous models.Status) {
	message := fmt.Sprintf("You have been assigned job %s", job.JobNumber)
	record, err := s.notifications.InsertNotification(ctx, models.Notification{
		UserID:       technician.ID,
		Message:      message,
		Type:         models.NotificationNewAssignment,
		RelatedJobID: &job.ID,
	})
	if err != nil {
		log.WithError(err).WithField("job", job.JobNumber).Error("failed to persist assignment notification")
		return
	}

	attempted := false
	if s.notifier != nil {
		attempted = s.notifier.NotifyUser(technician.ID.Hex(), map[string]interface{}{
			"type": "NEW_ASSIGNMENT",
			"data": record,
		})
	}

	log.WithFields(log.Fields{
		"job":        job.JobNumber,
		"technician": technician.ID.Hex(),
		"from":       previous,
		"delivered":  attempted,
	}).Info("job assigned")
}

// transitionAllowed mirrors the update rule: a same-status change is legal
// only when other fields change too; everything else must be an edge in
// the transition table.
func transitionAllowed(current, next models.Status, statusOnly bool) bool {
	if current == next && !statusOnly {
		return true
	}
	return models.CanTransition(current, next)
}

// patchToSet converts non-nil patch fields into a $set document
func patchToSet(patch models.JobPatch) (bson.M, error) {
	set := bson.M{}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Priority != nil {
		set["priority"] = *patch.Priority
	}
	if patch.RequiredSkillSet != nil {
		set["required_skill_set"] = *patch.RequiredSkillSet
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.AssignedTo != nil {
		objectID, err := primitive.ObjectIDFromHex(*patch.AssignedTo)
		if err != nil {
			return nil, apierror.BadRequest("Invalid technician")
		}
		set["assigned_to"] = objectID
	}
	if patch.ScheduledDate != nil {
		set["scheduled_date"] = *patch.ScheduledDate
	}
	if patch.CompletedDate != nil {
		set["completed_date"] = *patch.CompletedDate
	}
	if patch.SLADeadline != nil {
		set["sla_deadline"] = *patch.SLADeadline
	}
	return set, nil
}
