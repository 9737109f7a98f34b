package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/ukydev/repair-desk/internal/apierror"
	"github.com/ukydev/repair-desk/internal/db"
	"github.com/ukydev/repair-desk/internal/jobs"
	"github.com/ukydev/repair-desk/internal/middleware"
	"github.com/ukydev/repair-desk/internal/models"
)

// JobHandler handles job lifecycle requests
type JobHandler struct {
	service   *jobs.Service
	jobs      db.JobCollection
	users     db.UserCollection
	customers db.CustomerCollection
	devices   db.DeviceCollection
}

// NewJobHandler creates a new job handler
func NewJobHandler(
	service *jobs.Service,
	jobCollection db.JobCollection,
	userCollection db.UserCollection,
	customerCollection db.CustomerCollection,
	deviceCollection db.DeviceCollection,
) *JobHandler {
	return &JobHandler{
		service:   service,
		jobs:      jobCollection,
		users:     userCollection,
		customers: customerCollection,
		devices:   deviceCollection,
	}
}

// customerSummary is the customer projection attached to listed jobs
type customerSummary struct {
	Name         string `json:"name"`
	ContactPhone string `json:"contact_phone,omitempty"`
	Email        string `json:"email,omitempty"`
}

// deviceSummary is the device projection attached to listed jobs
type deviceSummary struct {
	SerialNumber string `json:"serial_number"`
	DeviceType   string `json:"device_type"`
}

// userSummary is the user projection attached to listed jobs
type userSummary struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// jobView is a job with its references expanded for display
type jobView struct {
	models.Job
	Customer   *customerSummary `json:"customer,omitempty"`
	Device     *deviceSummary   `json:"device,omitempty"`
	Technician *userSummary     `json:"technician,omitempty"`
	Creator    *userSummary     `json:"creator,omitempty"`
}

// jobListResponse matches the paginated list shape the frontend expects
type jobListResponse struct {
	Jobs        []jobView `json:"jobs"`
	TotalPages  int64     `json:"totalPages"`
	CurrentPage int64     `json:"currentPage"`
}

// List handles GET /jobs with pagination, search and filtering. The
// status_ne exclusion takes precedence over status selection.
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := listOptionsFromQuery(q.Get("page"), q.Get("limit"), q.Get("sort"))

	filter := db.JobFilter{
		Search:     q.Get("search"),
		StatusNE:   models.Status(q.Get("status_ne")),
		Priority:   models.Priority(q.Get("priority")),
		CustomerID: q.Get("customer_id"),
		AssignedTo: q.Get("assigned_to"),
	}
	for _, s := range q["status"] {
		filter.Status = append(filter.Status, models.Status(s))
	}

	h.respondJobList(w, r, filter, opts)
}

// Get handles GET /jobs/{id} with all references expanded
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	job, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		apierror.Write(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.expand(r, *job))
}

// Create handles POST /jobs
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		apierror.Write(w, apierror.Unauthorized("Authentication required"))
		return
	}

	var req models.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.Write(w, apierror.BadRequest("Invalid JSON"))
		return
	}

	job, err := h.service.Create(r.Context(), req, claims.UserID)
	if err != nil {
		apierror.Write(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, job)
}

// Update handles PUT /jobs/{id}; status changes are gated by the
// transition table.
func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.JobPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		apierror.Write(w, apierror.BadRequest("Invalid JSON"))
		return
	}

	job, err := h.service.ApplyUpdate(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		apierror.Write(w, err)
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// Delete handles DELETE /jobs/{id}; actively worked jobs are protected
func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		apierror.Write(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Job deleted successfully"})
}

// Assign handles PUT /jobs/{id}/assign
func (h *JobHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req models.AssignJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.Write(w, apierror.BadRequest("Invalid JSON"))
		return
	}

	assigned, err := h.service.Assign(r.Context(), mux.Vars(r)["id"], req.TechnicianID)
	if err != nil {
		apierror.Write(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Job assigned successfully",
		"job":     assigned,
	})
}

// ByCustomer handles GET /jobs/customer/{customerId}
func (h *JobHandler) ByCustomer(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := listOptionsFromQuery(q.Get("page"), q.Get("limit"), "")

	filter := db.JobFilter{CustomerID: mux.Vars(r)["customerId"]}
	if s := q.Get("status"); s != "" {
		filter.Status = []models.Status{models.Status(s)}
	}

	h.respondJobList(w, r, filter, opts)
}

// ByStatus handles GET /jobs/status/{status}
func (h *JobHandler) ByStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := listOptionsFromQuery(q.Get("page"), q.Get("limit"), "")

	filter := db.JobFilter{Status: []models.Status{models.Status(mux.Vars(r)["status"])}}

	h.respondJobList(w, r, filter, opts)
}

func (h *JobHandler) respondJobList(w http.ResponseWriter, r *http.Request, filter db.JobFilter, opts db.ListOptions) {
	found, err := h.jobs.FindJobs(r.Context(), filter, opts)
	if err != nil {
		apierror.Write(w, err)
		return
	}
	count, err := h.jobs.CountJobs(r.Context(), filter)
	if err != nil {
		apierror.Write(w, err)
		return
	}

	views := make([]jobView, 0, len(found))
	for _, job := range found {
		views = append(views, h.expand(r, job))
	}

	writeJSON(w, http.StatusOK, jobListResponse{
		Jobs:        views,
		TotalPages:  int64(math.Ceil(float64(count) / float64(opts.Limit))),
		CurrentPage: opts.Page,
	})
}

// expand resolves a job's references to their minimal display projections.
// A reference that fails to resolve is simply omitted.
func (h *JobHandler) expand(r *http.Request, job models.Job) jobView {
	view := jobView{Job: job}

	if customer, err := h.customers.FindCustomerByID(r.Context(), job.CustomerID.Hex()); err == nil {
		view.Customer = &customerSummary{
			Name:         customer.Name,
			ContactPhone: customer.ContactPhone,
			Email:        customer.Email,
		}
	}
	if device, err := h.devices.FindDeviceByID(r.Context(), job.DeviceID.Hex()); err == nil {
		view.Device = &deviceSummary{
			SerialNumber: device.SerialNumber,
			DeviceType:   device.DeviceType,
		}
	}
	if job.AssignedTo != nil {
		if technician, err := h.users.FindUserByID(r.Context(), job.AssignedTo.Hex()); err == nil {
			view.Technician = &userSummary{Name: technician.Name, Email: technician.Email}
		}
	}
	if creator, err := h.users.FindUserByID(r.Context(), job.CreatedBy.Hex()); err == nil {
		view.Creator = &userSummary{Name: creator.Name}
	}

	return view
}

// listOptionsFromQuery parses pagination query parameters, defaulting to
// the first page of ten.
func listOptionsFromQuery(page, limit, sort string) db.ListOptions {
	opts := db.ListOptions{Page: 1, Limit: 10, Sort: sort}
	if n, err := strconv.ParseInt(page, 10, 64); err == nil && n > 0 {
		opts.Page = n
	}
	if n, err := strconv.ParseInt(limit, 10, 64); err == nil && n > 0 {
		opts.Limit = n
	}
	return opts
}
