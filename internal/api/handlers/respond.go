package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/evencat/server/internal/domain/events"
	"github.com/evencat/server/internal/domain/users"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type messageResponse struct {
	Message string `json:"message"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type profileResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Subtitle    string `json:"subtitle,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

func toProfileResponse(p users.Profile) profileResponse {
	return profileResponse{
		ID:          p.ID,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		Subtitle:    p.Subtitle,
		Description: p.Description,
		ImageURL:    p.ImageURL,
	}
}

type eventResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	OwnerID     string    `json:"ownerId"`
	ImageURL    string    `json:"imageUrl,omitempty"`
}

func toEventResponse(e events.Event) eventResponse {
	return eventResponse{
		ID:          e.ID,
		Name:        e.Name,
		Date:        e.Date,
		Location:    e.Location,
		Description: e.Description,
		Status:      string(e.Status),
		OwnerID:     e.OwnerID,
		ImageURL:    e.ImageURL,
	}
}

func toEventResponses(items []events.Event) []eventResponse {
	out := make([]eventResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toEventResponse(item))
	}
	return out
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// formString distinguishes an absent form field from an empty one so
// partial patches never clear unmentioned fields.
func formString(form *multipart.Form, key string) *string {
	if form == nil {
		return nil
	}
	if values, ok := form.Value[key]; ok && len(values) > 0 {
		value := values[0]
		return &value
	}
	return nil
}
