// Package server exposes the chat and catalog API over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/sam-admissions/tourbot/agent/contract"
	tourbotnode "github.com/sam-admissions/tourbot/agent/nodes"
)

// ChatService is the conversational surface the HTTP layer fronts.
type ChatService interface {
	StartConversation(ctx context.Context, conversationID string) (contractx.ChatResult, error)
	HandleMessage(ctx context.Context, conversationID, text string) (contractx.ChatResult, error)
}

type Handler struct {
	chat      ChatService
	directory contractx.TourDirectory
}

func New(chat ChatService, directory contractx.TourDirectory) *Handler {
	return &Handler{chat: chat, directory: directory}
}

// Router builds the chi router with the standard middleware stack.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(accessLog)

	r.Get("/health", healthCheck)
	r.Get("/chat/init", h.initChat)
	r.Post("/chat", h.postChat)
	r.Get("/tours", h.listTours)
	r.Get("/courses", h.listCourses)
	return r
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// initChat handles GET /chat/init and opens a fresh conversation.
func (h *Handler) initChat(w http.ResponseWriter, r *http.Request) {
	result, err := h.chat.StartConversation(r.Context(), uuid.NewString())
	if err != nil {
		log.Error().Err(err).Msg("start conversation failed")
		writeError(w, http.StatusInternalServerError, "failed to start conversation")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type chatRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

// postChat handles POST /chat, one conversational turn.
func (h *Handler) postChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.chat.HandleMessage(r.Context(), req.ConversationID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, tourbotnode.ErrInvalidConversation):
			writeError(w, http.StatusBadRequest, "conversation_id is required")
		case errors.Is(err, tourbotnode.ErrInvalidMessage):
			writeError(w, http.StatusBadRequest, "message is required")
		default:
			log.Error().Err(err).Str("conversation_id", req.ConversationID).Msg("chat turn failed")
			writeError(w, http.StatusInternalServerError, "failed to process message")
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type tourView struct {
	Index          int    `json:"index"`
	ID             int64  `json:"id"`
	Date           string `json:"date"`
	AvailableSlots int    `json:"available_slots"`
	Status         string `json:"status"`
}

// listTours handles GET /tours.
func (h *Handler) listTours(w http.ResponseWriter, r *http.Request) {
	tours, err := h.directory.ListActiveTours(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list tours failed")
		writeError(w, http.StatusInternalServerError, "failed to list tours")
		return
	}

	views := make([]tourView, 0, len(tours))
	for i := range tours {
		views = append(views, tourView{
			Index:          i + 1,
			ID:             tours[i].ID,
			Date:           tours[i].Date.Format("02/01/2006"),
			AvailableSlots: tours[i].AvailableSlots(),
			Status:         tours[i].Status,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

type courseView struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Available     int    `json:"available"`
	WaitlistCount int    `json:"waitlist_count"`
}

// listCourses handles GET /courses.
func (h *Handler) listCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.directory.ListCourses(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list courses failed")
		writeError(w, http.StatusInternalServerError, "failed to list courses")
		return
	}

	views := make([]courseView, 0, len(courses))
	for i := range courses {
		available := courses[i].CapacityAvailable
		if available < 0 {
			available = 0
		}
		views = append(views, courseView{
			ID:            courses[i].ID,
			Name:          courses[i].Name,
			Available:     available,
			WaitlistCount: courses[i].WaitlistCount,
		})
	}
	writeJSON(w, http.StatusOK, views)
}
