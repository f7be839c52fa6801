package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/evencat/server/internal/api/middleware"
	"github.com/evencat/server/internal/api/problem"
	"github.com/evencat/server/internal/domain/events"
	"github.com/evencat/server/internal/domain/ids"
	"github.com/evencat/server/internal/uploads"
)

// EventsHandler serves the event catalog: CRUD, listing, and summary
// analytics.
type EventsHandler struct {
	Service *events.Service
	Uploads *uploads.Store
	Env     string

	validate *validator.Validate
}

func NewEventsHandler(service *events.Service, uploadsStore *uploads.Store, env string) *EventsHandler {
	return &EventsHandler{
		Service:  service,
		Uploads:  uploadsStore,
		Env:      env,
		validate: validator.New(),
	}
}

type listEventsResponse struct {
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
	Events []eventResponse `json:"events"`
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	query, err := events.ParseListQuery(r.URL.Query())
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	result, err := h.Service.List(r.Context(), query)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, listEventsResponse{
		Total:  result.Total,
		Page:   result.Page,
		Limit:  result.Limit,
		Events: toEventResponses(result.Items),
	})
}

func (h *EventsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	if claims == nil {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "No token provided", problem.ErrUnauthorized, h.Env)
		return
	}

	items, err := h.Service.ListByOwner(r.Context(), claims.Subject)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponses(items))
}

func (h *EventsHandler) All(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListAll(r.Context())
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponses(items))
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}

	event, err := h.Service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Event not found", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(*event))
}

type createEventRequest struct {
	Name        string `json:"name" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Location    string `json:"location" validate:"required"`
	Description string `json:"description" validate:"required"`
	Status      string `json:"status" validate:"required"`
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	if claims == nil {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "No token provided", problem.ErrUnauthorized, h.Env)
		return
	}

	req, imageURL, err := h.createRequest(r)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	date, err := parseEventDate(req.Date)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	event, err := h.Service.Create(r.Context(), events.CreateParams{
		Name:        req.Name,
		Date:        date,
		Location:    req.Location,
		Description: req.Description,
		Status:      events.Status(req.Status),
		OwnerID:     claims.Subject,
		ImageURL:    imageURL,
	})
	if err != nil {
		var qerr events.QueryError
		if errors.As(err, &qerr) {
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, toEventResponse(*event))
}

type updateEventRequest struct {
	Name        *string `json:"name"`
	Date        *string `json:"date"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// Update applies a partial patch to an event. Ownership is not
// checked: any authenticated caller may mutate any event, matching the
// documented behavior of the catalog this replaces.
func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	if claims == nil {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "No token provided", problem.ErrUnauthorized, h.Env)
		return
	}

	id, ok := h.eventID(w, r)
	if !ok {
		return
	}

	patch, err := h.updatePatch(r)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	event, err := h.Service.Update(r.Context(), id, patch)
	if err != nil {
		var qerr events.QueryError
		switch {
		case errors.Is(err, events.ErrNotFound):
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Event not found", err, h.Env)
		case errors.As(err, &qerr):
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		default:
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		}
		return
	}

	writeJSON(w, http.StatusOK, toEventResponse(*event))
}

// Delete removes an event by id. Like Update, no ownership check.
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	if claims == nil {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "No token provided", problem.ErrUnauthorized, h.Env)
		return
	}

	id, ok := h.eventID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, events.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Event not found", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Event deleted"})
}

type analyticsResponse struct {
	TotalEvents    int64                 `json:"totalEvents"`
	EventsByStatus []statusCountResponse `json:"eventsByStatus"`
	NextEvent      *eventResponse        `json:"nextEvent"`
}

type statusCountResponse struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

func (h *EventsHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summarize(r.Context())
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	resp := analyticsResponse{
		TotalEvents:    summary.TotalEvents,
		EventsByStatus: make([]statusCountResponse, 0, len(summary.EventsByStatus)),
	}
	for _, item := range summary.EventsByStatus {
		resp.EventsByStatus = append(resp.EventsByStatus, statusCountResponse{
			Status: string(item.Status),
			Count:  item.Count,
		})
	}
	if summary.NextEvent != nil {
		next := toEventResponse(*summary.NextEvent)
		resp.NextEvent = &next
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *EventsHandler) eventID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if err := ids.ValidateULID(id); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid event ID format", err, h.Env)
		return "", false
	}
	return id, true
}

// createRequest reads the create body from JSON or a multipart form
// with an optional image part.
func (h *EventsHandler) createRequest(r *http.Request) (createEventRequest, string, error) {
	if !isMultipart(r) {
		var req createEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return createEventRequest{}, "", err
		}
		return req, "", nil
	}

	if err := r.ParseMultipartForm(middleware.DefaultMaxBodySize); err != nil {
		return createEventRequest{}, "", err
	}

	req := createEventRequest{
		Name:        r.FormValue("name"),
		Date:        r.FormValue("date"),
		Location:    r.FormValue("location"),
		Description: r.FormValue("description"),
		Status:      r.FormValue("status"),
	}

	imageURL, err := h.saveImage(r)
	if err != nil {
		return createEventRequest{}, "", err
	}
	return req, imageURL, nil
}

func (h *EventsHandler) updatePatch(r *http.Request) (events.Patch, error) {
	var req updateEventRequest
	var imageURL string

	if isMultipart(r) {
		if err := r.ParseMultipartForm(middleware.DefaultMaxBodySize); err != nil {
			return events.Patch{}, err
		}
		req = updateEventRequest{
			Name:        formString(r.MultipartForm, "name"),
			Date:        formString(r.MultipartForm, "date"),
			Location:    formString(r.MultipartForm, "location"),
			Description: formString(r.MultipartForm, "description"),
			Status:      formString(r.MultipartForm, "status"),
		}
		saved, err := h.saveImage(r)
		if err != nil {
			return events.Patch{}, err
		}
		imageURL = saved
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return events.Patch{}, err
		}
	}

	patch := events.Patch{
		Name:        req.Name,
		Location:    req.Location,
		Description: req.Description,
	}
	if req.Date != nil {
		date, err := parseEventDate(*req.Date)
		if err != nil {
			return events.Patch{}, err
		}
		patch.Date = &date
	}
	if req.Status != nil {
		status := events.Status(*req.Status)
		patch.Status = &status
	}
	if imageURL != "" {
		patch.ImageURL = &imageURL
	}
	return patch, nil
}

func (h *EventsHandler) saveImage(r *http.Request) (string, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", err
	}
	defer file.Close()
	return h.Uploads.Save(file, header)
}

var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseEventDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range eventDateLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
