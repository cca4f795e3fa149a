// Package api provides HTTP handlers for the aftercare assistant API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nephroline/aftercare/internal/domain"
	"github.com/nephroline/aftercare/internal/identity"
	"github.com/nephroline/aftercare/internal/router"
	"github.com/nephroline/aftercare/internal/session"
	"github.com/nephroline/aftercare/internal/store"
)

// Handler provides the REST surface over the conversation engine and the
// patient directory.
type Handler struct {
	engine   router.ConversationEngine
	repo     store.Repository
	sessions *session.MemoryStore
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(engine router.ConversationEngine, repo store.Repository, sessions *session.MemoryStore) *Handler {
	return &Handler{
		engine:   engine,
		repo:     repo,
		sessions: sessions,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// APIResponse is the envelope for the /api endpoints.
type APIResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
}

func envelope(status, message string, data any) APIResponse {
	return APIResponse{
		Status:    status,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// RegisterRoutes mounts all REST endpoints on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.Chat)
	r.Route("/api", func(r chi.Router) {
		r.Post("/patient/greeting", h.PatientGreeting)
		r.Post("/patient/discharge-report", h.DischargeReport)
		r.Post("/patient/search", h.SearchPatients)
		r.Get("/stats", h.Stats)
	})
	r.Post("/debug/reset", h.ResetConversations)
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// Chat runs one conversation turn. The session ID comes from the request
// body when present, otherwise from the identity middleware.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		Error(w, http.StatusBadRequest, "message cannot be empty")
		return
	}

	sessionID := identity.SanitizeSessionID(req.SessionID)
	if req.SessionID == "" {
		sessionID = identity.SessionIDFromContext(r.Context())
	}

	result := h.engine.HandleTurn(r.Context(), sessionID, req.Message)
	JSON(w, http.StatusOK, result)
}

type patientNameRequest struct {
	PatientName string `json:"patient_name"`
}

// PatientGreeting locates a discharge report by name and returns the
// personalized greeting along with the report.
func (h *Handler) PatientGreeting(w http.ResponseWriter, r *http.Request) {
	var req patientNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.PatientName) == "" {
		Error(w, http.StatusBadRequest, "patient_name is required")
		return
	}

	patients, err := h.repo.FindPatients(r.Context(), req.PatientName)
	if err != nil {
		Error(w, http.StatusInternalServerError, "patient lookup failed")
		return
	}

	switch len(patients) {
	case 0:
		JSON(w, http.StatusOK, envelope("not_found", router.NotFoundGreeting(req.PatientName), nil))
	case 1:
		p := patients[0]
		greeting := router.FoundGreeting(p.Name, p.DateAdmitted, p.Diagnosis)
		JSON(w, http.StatusOK, envelope("success", greeting, map[string]any{
			"greeting":         greeting,
			"discharge_report": p.DischargeReport(),
		}))
	default:
		JSON(w, http.StatusOK, envelope("multiple_found",
			"Hello! I found multiple patients with the name '"+req.PatientName+"'. Could you please provide your full name or patient ID?",
			map[string]any{"patients": candidateList(patients)}))
	}
}

// DischargeReport returns the structured discharge summary for a patient.
func (h *Handler) DischargeReport(w http.ResponseWriter, r *http.Request) {
	var req patientNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.PatientName) == "" {
		Error(w, http.StatusBadRequest, "patient_name is required")
		return
	}

	var record *domain.PatientRecord
	if domain.IsPatientID(strings.ToUpper(strings.TrimSpace(req.PatientName))) {
		p, err := h.repo.GetPatient(r.Context(), req.PatientName)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			Error(w, http.StatusInternalServerError, "patient lookup failed")
			return
		}
		record = p
	} else {
		patients, err := h.repo.FindPatients(r.Context(), req.PatientName)
		if err != nil {
			Error(w, http.StatusInternalServerError, "patient lookup failed")
			return
		}
		if len(patients) == 1 {
			record = &patients[0]
		}
	}

	if record == nil {
		JSON(w, http.StatusOK, envelope("not_found",
			"I couldn't find a discharge report for '"+req.PatientName+"'. Could you please check the spelling?", nil))
		return
	}
	JSON(w, http.StatusOK, envelope("success", "Discharge report retrieved", record.DischargeReport()))
}

type searchRequest struct {
	Query string `json:"query"`
}

// SearchPatients matches patients by name, diagnosis or symptoms.
func (h *Handler) SearchPatients(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		Error(w, http.StatusBadRequest, "query is required")
		return
	}

	patients, err := h.repo.SearchPatients(r.Context(), req.Query)
	if err != nil {
		Error(w, http.StatusInternalServerError, "patient search failed")
		return
	}

	JSON(w, http.StatusOK, envelope("success", "Search completed for: "+req.Query, map[string]any{
		"patients": candidateList(patients),
		"count":    len(patients),
	}))
}

// Stats reports directory aggregates and live session count.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.Stats(r.Context())
	if err != nil {
		Error(w, http.StatusInternalServerError, "stats retrieval failed")
		return
	}

	JSON(w, http.StatusOK, envelope("success", "System statistics retrieved", map[string]any{
		"total_patients": stats.TotalPatients,
		"average_age":    stats.AverageAge,
		"male_count":     stats.MaleCount,
		"female_count":   stats.FemaleCount,
		"top_diagnoses":  stats.TopDiagnoses,
		"live_sessions":  h.sessions.Len(),
		"system_status":  "operational",
	}))
}

// ResetConversations drops all conversation state. Debug only.
func (h *Handler) ResetConversations(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear()
	JSON(w, http.StatusOK, map[string]string{
		"message":   "Conversation state reset",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// candidateList projects records to the compact shape returned by lookup and
// search endpoints.
func candidateList(patients []domain.PatientRecord) []map[string]any {
	out := make([]map[string]any, 0, len(patients))
	for _, p := range patients {
		out = append(out, map[string]any{
			"patient_id": p.PatientID,
			"name":       p.Name,
			"age":        p.Age,
			"diagnosis":  p.Diagnosis,
		})
	}
	return out
}
