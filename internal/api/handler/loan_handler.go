package handler

import (
	"credit-approval/internal/api/handler/dto"
	"credit-approval/internal/domain/loan"
	"credit-approval/internal/pkg/apperrors"
	"errors"
	"log/slog"
	"net/http"
)

type LoanHandler struct {
	service loan.LoanService
	logger  *slog.Logger
}

func NewLoanHandler(s loan.LoanService, l *slog.Logger) *LoanHandler {
	if s == nil {
		panic("loan service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &LoanHandler{
		service: s,
		logger:  l.With("component", "LoanHandler"),
	}
}

func (h *LoanHandler) decodeApplication(w http.ResponseWriter, r *http.Request) (loan.Application, bool) {
	var req dto.LoanApplicationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, err)
		return loan.Application{}, false
	}
	app, err := req.ToDomain()
	if err != nil {
		h.logger.WarnContext(r.Context(), "Invalid loan application", slog.Any("error", err))
		respondError(w, err)
		return loan.Application{}, false
	}
	return app, true
}

func (h *LoanHandler) logServiceError(r *http.Request, msg string, err error) {
	level := slog.LevelError
	if apperrors.IsClientError(err) {
		level = slog.LevelWarn
	}
	attrs := []slog.Attr{slog.Any("error", err)}
	if field, ok := apperrors.FieldOf(err); ok && field != "" {
		attrs = append(attrs, slog.String("field", field))
	}
	h.logger.LogAttrs(r.Context(), level, msg, attrs...)
}

// CheckEligibility handles POST /check-eligibility
// @Summary Check loan eligibility
// @Description Scores the customer and evaluates the requested loan without booking it. A rejection is returned with status 400 and carries the credit score and reason.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.LoanApplicationRequest true "Loan application"
// @Success 200 {object} dto.EligibilityResponse "Loan can be approved"
// @Failure 400 {object} dto.EligibilityRejectedResponse "Loan rejected, or invalid request (dto.ErrorResponse)"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /check-eligibility [post]
// @Security BearerAuth
func (h *LoanHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	app, ok := h.decodeApplication(w, r)
	if !ok {
		return
	}

	result, err := h.service.CheckEligibility(r.Context(), app)
	if err != nil {
		h.logServiceError(r, "Service failed to check eligibility", err)
		respondError(w, err)
		return
	}

	resp, approved := dto.NewEligibilityResponse(result)
	if !approved {
		respondJSON(w, http.StatusBadRequest, resp)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// CreateLoan handles POST /create-loan
// @Summary Book a loan
// @Description Evaluates and, when approved, books the loan and adds the principal to the customer's current debt in one transaction.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.LoanApplicationRequest true "Loan application"
// @Success 201 {object} dto.CreateLoanResponse "Loan booked"
// @Failure 400 {object} dto.LoanRejectedResponse "Loan rejected, or invalid request (dto.ErrorResponse)"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /create-loan [post]
// @Security BearerAuth
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	app, ok := h.decodeApplication(w, r)
	if !ok {
		return
	}

	result, err := h.service.BookLoan(r.Context(), app)
	if err != nil {
		h.logServiceError(r, "Service failed to book loan", err)
		respondError(w, err)
		return
	}

	resp, approved := dto.NewCreateLoanResponse(result)
	if !approved {
		respondJSON(w, http.StatusBadRequest, resp)
		return
	}
	h.logger.InfoContext(r.Context(), "Loan created", slog.Int64("loanID", result.Loan.ID))
	respondJSON(w, http.StatusCreated, resp)
}

// ViewLoan handles GET /view-loan/{loan_id}
// @Summary View a loan
// @Description Returns a loan together with a summary of its customer.
// @Tags Loans
// @Produce json
// @Param loan_id path int true "Loan ID" Minimum(1)
// @Success 200 {object} dto.LoanDetailsResponse "Loan details"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /view-loan/{loan_id} [get]
// @Security BearerAuth
func (h *LoanHandler) ViewLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := getIDFromURL(r, "loan_id")
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get loan ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	details, err := h.service.GetLoanDetails(r.Context(), loanID)
	if err != nil {
		h.logServiceError(r, "Service failed to get loan details", err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanDetailsResponse(details))
}

// ViewLoans handles GET /view-loans/{customer_id}
// @Summary List a customer's loans
// @Description Returns every loan of the customer with the number of repayments left.
// @Tags Loans
// @Produce json
// @Param customer_id path int true "Customer ID" Minimum(1)
// @Success 200 {array} dto.LoanSummaryResponse "Loans of the customer"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /view-loans/{customer_id} [get]
// @Security BearerAuth
func (h *LoanHandler) ViewLoans(w http.ResponseWriter, r *http.Request) {
	customerID, err := getIDFromURL(r, "customer_id")
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	loans, err := h.service.ListCustomerLoans(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.logger.WarnContext(r.Context(), "Customer not found", slog.Int64("customerID", customerID))
		} else {
			h.logger.ErrorContext(r.Context(), "Service failed to list loans", slog.Any("error", err))
		}
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanSummaryResponses(loans))
}
