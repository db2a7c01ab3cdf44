package handler

import (
	"credit-approval/internal/api/handler/dto"
	"credit-approval/internal/domain/customer"
	"log/slog"
	"net/http"
)

type CustomerHandler struct {
	service customer.CustomerService
	logger  *slog.Logger
}

func NewCustomerHandler(s customer.CustomerService, l *slog.Logger) *CustomerHandler {
	if s == nil {
		panic("customer service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CustomerHandler{
		service: s,
		logger:  l.With("component", "CustomerHandler"),
	}
}

// Register handles POST /register
// @Summary Register a new customer
// @Description Creates a customer and derives the approved limit from the monthly income (36x, rounded to the nearest 100000).
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Customer registration payload"
// @Success 201 {object} dto.RegisterResponse "Customer registered"
// @Failure 400 {object} dto.ErrorResponse "Missing fields, invalid data types or failed validation"
// @Failure 409 {object} dto.ErrorResponse "Phone number already registered"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /register [post]
// @Security BearerAuth
func (h *CustomerHandler) Register(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received register customer request")

	var req dto.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, err)
		return
	}

	registration, err := req.ToDomain()
	if err != nil {
		h.logger.WarnContext(r.Context(), "Invalid registration request", slog.Any("error", err))
		respondError(w, err)
		return
	}

	created, err := h.service.Register(r.Context(), registration)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Service failed to register customer", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer registered successfully", slog.Int64("customerID", created.CustomerID))
	respondJSON(w, http.StatusCreated, dto.NewRegisterResponse(created))
}
