// Package handlers exposes the booking operations over HTTP for the
// calendar widget.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/zayas4k/barberbook/internal/booking"
	"github.com/zayas4k/barberbook/internal/model"
)

type BookingHandler struct {
	svc    *booking.Service
	logger *slog.Logger
}

func NewBookingHandler(svc *booking.Service, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, logger: logger}
}

// Register mounts all widget-facing routes on mux.
func (h *BookingHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/services", h.Services)
	mux.HandleFunc("/api/v1/slots", h.Slots)
	mux.HandleFunc("/api/v1/bookings", h.Bookings)
	mux.HandleFunc("/api/v1/calendar", h.Calendar)
}

type createBookingRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Service string `json:"service"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *BookingHandler) Services(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Catalog())
}

func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	service := strings.TrimSpace(r.URL.Query().Get("service"))
	if date == "" || service == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "date and service are required"})
		return
	}

	slots, err := h.svc.AvailableSlots(r.Context(), date, service)
	if err != nil {
		if booking.IsValidation(err) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		h.logger.Error("slots computation failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to compute slots"})
		return
	}
	if slots == nil {
		slots = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":    date,
		"service": service,
		"slots":   slots,
	})
}

// Bookings dispatches the collection route: POST creates, GET lists.
func (h *BookingHandler) Bookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *BookingHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
		return
	}

	b, err := h.svc.Create(r.Context(), booking.CreateRequest{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Service: req.Service,
		Date:    req.Date,
		Time:    req.Time,
	})
	if err != nil {
		switch {
		case booking.IsValidation(err):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		case booking.IsSlotTaken(err):
			writeJSON(w, http.StatusConflict, errorResponse{Error: "time slot already booked"})
		default:
			h.logger.Error("booking creation failed", "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to save booking"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, b)
}

func (h *BookingHandler) list(w http.ResponseWriter, r *http.Request) {
	bookings := h.svc.List(r.Context())
	if bookings == nil {
		bookings = []model.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *BookingHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	now := time.Now()
	year := now.Year()
	month := now.Month()
	if raw := strings.TrimSpace(r.URL.Query().Get("year")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 2000 || n > 2200 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid year"})
			return
		}
		year = n
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("month")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 12 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid month"})
			return
		}
		month = time.Month(n)
	}

	days, err := h.svc.MonthAvailability(r.Context(), year, month)
	if err != nil {
		h.logger.Error("calendar summary failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to compute calendar"})
		return
	}
	writeJSON(w, http.StatusOK, days)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
