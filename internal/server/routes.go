package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Tomlord1122/ticket-tracker/internal/domain"
	"github.com/Tomlord1122/ticket-tracker/internal/service"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.rootHandler)
	r.Get("/health", s.healthHandler)

	r.Route("/api/tickets", func(r chi.Router) {
		r.Get("/", s.listTicketsHandler)
		r.Post("/", s.createTicketHandler)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getTicketHandler)
			r.Put("/", s.updateTicketHandler)
			r.Delete("/", s.deleteTicketHandler)
			r.Patch("/status", s.updateTicketStatusHandler)
			r.Patch("/priority", s.updateTicketPriorityHandler)
		})
	})

	return r
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, map[string]any{
		"name":    apiName,
		"version": apiVersion,
		"endpoints": map[string]string{
			"tickets": "/api/tickets",
			"health":  "/health",
		},
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthStats := s.db.Health()
	if status, ok := healthStats["status"]; ok && status == "down" {
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	s.respondWithJSON(w, http.StatusOK, healthStats)
}

func (s *Server) listTicketsHandler(w http.ResponseWriter, r *http.Request) {
	var filter domain.TicketFilter
	query := r.URL.Query()

	if v := query.Get("status"); v != "" {
		status, err := domain.ParseStatus(v)
		if err != nil {
			s.respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Status = &status
	}
	if v := query.Get("priority"); v != "" {
		priority, err := domain.ParsePriority(v)
		if err != nil {
			s.respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Priority = &priority
	}

	tickets, err := s.ticketService.ListTickets(r.Context(), filter)
	if err != nil {
		s.respondWithServiceError(w, err, "Failed to retrieve tickets")
		return
	}
	s.respondWithJSON(w, http.StatusOK, tickets)
}

func (s *Server) createTicketHandler(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTicketRequest
	if !s.decodeJSONBody(w, r, &req) {
		return
	}

	ticket, err := s.ticketService.CreateTicket(r.Context(), req)
	if err != nil {
		s.respondWithServiceError(w, err, "Failed to create ticket")
		return
	}
	s.respondWithJSON(w, http.StatusCreated, ticket)
}

func (s *Server) getTicketHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.ticketID(w, r)
	if !ok {
		return
	}

	ticket, err := s.ticketService.GetTicket(r.Context(), id)
	if err != nil {
		s.respondWithServiceError(w, err, "Failed to retrieve ticket")
		return
	}
	s.respondWithJSON(w, http.StatusOK, ticket)
}

func (s *Server) updateTicketHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.ticketID(w, r)
	if !ok {
		return
	}

	var req service.UpdateTicketRequest
	if !s.decodeJSONBody(w, r, &req) {
		return
	}

	ticket, err := s.ticketService.UpdateTicket(r.Context(), id, req)
	if err != nil {
		s.respondWithServiceError(w, err, "Failed to update ticket")
		return
	}
	s.respondWithJSON(w, http.StatusOK, ticket)
}

// updateTicketStatusHandler takes the new status from ?status= or, failing
// that, from a {"status": ...} body.
func (s *Server) updateTicketStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.ticketID(w, r)
	if !ok {
		return
	}

	var body struct {
		Status *domain.Status `json:"status"`
	}
	var status *domain.Status
	if v := r.URL.Query().Get("status"); v != "" {
		parsed, err := domain.ParseStatus(v)
		if err != nil {
			s.respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		status = &parsed
	} else if r.ContentLength != 0 {
		if !s.decodeJSONBody(w, r, &body) {
			return
		}
		status = body.Status
	}
	if status == nil {
		s.respondWithError(w, http.StatusBadRequest, "status is required")
		return
	}

	ticket, err := s.ticketService.UpdateTicketStatus(r.Context(), id, *status)
	if err != nil {
		s.respondWithServiceError(w, err, "Failed to update ticket status")
		return
	}
	s.respondWithJSON(w, http.StatusOK, ticket)
}

func (s *Server) updateTicketPriorityHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.ticketID(w, r)
	if !ok {
		return
	}

	var body struct {
		Priority *domain.Priority `json:"priority"`
	}
	var priority *domain.Priority
	if v := r.URL.Query().Get("priority"); v != "" {
		parsed, err := domain.ParsePriority(v)
		if err != nil {
			s.respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		priority = &parsed
	} else if r.ContentLength != 0 {
		if !s.decodeJSONBody(w, r, &body) {
			return
		}
		priority = body.Priority
	}
	if priority == nil {
		s.respondWithError(w, http.StatusBadRequest, "priority is required")
		return
	}

	ticket, err := s.ticketService.UpdateTicketPriority(r.Context(), id, *priority)
	if err != nil {
		s.respondWithServiceError(w, err, "Failed to update ticket priority")
		return
	}
	s.respondWithJSON(w, http.StatusOK, ticket)
}

func (s *Server) deleteTicketHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.ticketID(w, r)
	if !ok {
		return
	}

	if err := s.ticketService.DeleteTicket(r.Context(), id); err != nil {
		s.respondWithServiceError(w, err, "Failed to delete ticket")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ticketID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(idStr, 10, strconv.IntSize)
	if err != nil || id == 0 {
		s.respondWithError(w, http.StatusBadRequest, "Invalid ticket ID provided")
		return 0, false
	}
	return uint(id), true
}

// decodeJSONBody decodes a single JSON object into dst, writing a 400 and
// returning false on any problem.
func (s *Server) decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(dst)
	if err == nil {
		return true
	}

	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	var validationError *domain.ValidationError
	switch {
	case errors.As(err, &validationError):
		s.respondWithError(w, http.StatusBadRequest, validationError.Error())
	case errors.As(err, &syntaxError):
		msg := fmt.Sprintf("Request body contains badly-formed JSON (at position %d)", syntaxError.Offset)
		s.respondWithError(w, http.StatusBadRequest, msg)
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.respondWithError(w, http.StatusBadRequest, "Request body contains badly-formed JSON")
	case errors.As(err, &unmarshalTypeError):
		msg := fmt.Sprintf("Request body contains an invalid value for the %q field (at position %d)", unmarshalTypeError.Field, unmarshalTypeError.Offset)
		s.respondWithError(w, http.StatusBadRequest, msg)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
		s.respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Request body contains unknown field %s", fieldName))
	case errors.Is(err, io.EOF):
		s.respondWithError(w, http.StatusBadRequest, "Request body must not be empty")
	default:
		s.logger.Error("error decoding request body", zap.Error(err))
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
	}
	return false
}

// respondWithServiceError maps service errors onto status codes. Anything
// unexpected was already logged by the service.
func (s *Server) respondWithServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.respondWithError(w, http.StatusNotFound, err.Error())
	case domain.IsValidation(err):
		s.respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		s.respondWithError(w, http.StatusInternalServerError, fallback)
	}
}

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("error marshaling JSON response", zap.Error(err))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal server error preparing response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
