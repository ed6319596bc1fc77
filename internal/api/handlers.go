/**
 * @description
 * This file contains the HTTP handlers for the settlement-service's API endpoints.
 * Handlers are responsible for parsing incoming requests, calling the appropriate
 * methods on the application service, and writing the HTTP response. They act as the
 * bridge between the web layer and the business logic layer.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/corebank/settlement-service/internal/app"
	"github.com/corebank/settlement-service/internal/domain"
	"github.com/corebank/settlement-service/internal/store"
)

// SettlementHandlers holds the application service that handlers will use.
type SettlementHandlers struct {
	service *app.Service
}

// NewSettlementHandlers creates a new instance of SettlementHandlers.
func NewSettlementHandlers(service *app.Service) *SettlementHandlers {
	return &SettlementHandlers{service: service}
}

// settlementResponse is sent back to the branch client once a settlement has
// been committed. It mirrors the customer-facing receipt: reference, resulting
// balance and the fee breakdown the teller must read out.
type settlementResponse struct {
	TransactionID string                 `json:"transaction_id"`
	Reference     string                 `json:"reference"`
	Kind          string                 `json:"kind"`
	Status        string                 `json:"status"`
	Message       string                 `json:"message"`
	SignedAmount  int64                  `json:"signed_amount"`
	Balance       int64                  `json:"balance"`
	Fees          domain.FeeBreakdown    `json:"fees"`
	TotalCharges  int64                  `json:"total_charges"`
	Commission    domain.CommissionSplit `json:"commission"`
	Narrative     string                 `json:"narrative"`
}

func buildSettlementResponse(result *domain.SettlementResult, message string) settlementResponse {
	return settlementResponse{
		TransactionID: result.TransactionID.String(),
		Reference:     result.Reference,
		Kind:          string(result.Kind),
		Status:        "settled",
		Message:       message,
		SignedAmount:  result.SignedAmount,
		Balance:       result.Balance,
		Fees:          result.Fees,
		TotalCharges:  result.TotalCharges,
		Commission:    result.Commission,
		Narrative:     result.Narrative,
	}
}

// DepositHandler handles requests to settle a cash deposit at the counter.
func (h *SettlementHandlers) DepositHandler(w http.ResponseWriter, r *http.Request) {
	tellerID, ok := GetTellerID(r.Context())
	if !ok {
		http.Error(w, "Could not get teller ID from context", http.StatusInternalServerError)
		return
	}

	var req domain.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=deposit outcome=reject reason=invalid_json err=%v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	log.Printf("level=info component=api endpoint=deposit outcome=accepted teller_id=%s account=%s amount=%d", tellerID, req.AccountNumber, req.Amount)

	result, err := h.service.Deposit(r.Context(), tellerID, req)
	if err != nil {
		h.writeSettlementError(w, "deposit", tellerID, req.AccountNumber, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, buildSettlementResponse(result, "Deposit settled"))
}

// WithdrawalHandler handles requests to settle a cash withdrawal at the counter.
func (h *SettlementHandlers) WithdrawalHandler(w http.ResponseWriter, r *http.Request) {
	tellerID, ok := GetTellerID(r.Context())
	if !ok {
		http.Error(w, "Could not get teller ID from context", http.StatusInternalServerError)
		return
	}

	var req domain.WithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=withdrawal outcome=reject reason=invalid_json err=%v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	log.Printf("level=info component=api endpoint=withdrawal outcome=accepted teller_id=%s account=%s amount=%d", tellerID, req.AccountNumber, req.Amount)

	result, err := h.service.Withdraw(r.Context(), tellerID, req)
	if err != nil {
		h.writeSettlementError(w, "withdrawal", tellerID, req.AccountNumber, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, buildSettlementResponse(result, "Withdrawal settled"))
}

// TransferHandler handles requests to settle an account-to-account transfer.
func (h *SettlementHandlers) TransferHandler(w http.ResponseWriter, r *http.Request) {
	tellerID, ok := GetTellerID(r.Context())
	if !ok {
		http.Error(w, "Could not get teller ID from context", http.StatusInternalServerError)
		return
	}

	var req domain.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=transfer outcome=reject reason=invalid_json err=%v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	log.Printf("level=info component=api endpoint=transfer outcome=accepted teller_id=%s sender=%s receiver=%s amount=%d", tellerID, req.SenderAccountNumber, req.ReceiverAccountNumber, req.Amount)

	result, err := h.service.Transfer(r.Context(), tellerID, req)
	if err != nil {
		h.writeSettlementError(w, "transfer", tellerID, req.SenderAccountNumber, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, buildSettlementResponse(result, "Transfer settled"))
}

// TransactionHistoryHandler handles requests for an account's settled legs.
func (h *SettlementHandlers) TransactionHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := GetTellerID(r.Context()); !ok {
		http.Error(w, "Could not get teller ID from context", http.StatusInternalServerError)
		return
	}

	accountNumber := strings.TrimSpace(chi.URLParam(r, "accountNumber"))
	if accountNumber == "" {
		h.writeError(w, http.StatusBadRequest, "Account number is required")
		return
	}

	limit, err := parseOptionalInt(r.URL.Query().Get("limit"), 20)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	offset, err := parseOptionalInt(r.URL.Query().Get("offset"), 0)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid offset")
		return
	}

	transactions, err := h.service.Transactions(r.Context(), accountNumber, limit, offset)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			h.writeError(w, http.StatusNotFound, "Account not found")
			return
		}
		log.Printf("level=error component=api endpoint=get_history outcome=failed account=%s err=%v", accountNumber, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, transactions)
}

// writeSettlementError maps service errors to HTTP statuses. Domain kinds map
// to client statuses; everything unclassified is a 500.
func (h *SettlementHandlers) writeSettlementError(w http.ResponseWriter, endpoint string, tellerID uuid.UUID, accountNumber string, err error) {
	log.Printf("level=warn component=api endpoint=%s outcome=failed teller_id=%s account=%s err=%v", endpoint, tellerID, accountNumber, err)

	var rateLimited *app.RateLimitedError
	if errors.As(err, &rateLimited) {
		w.Header().Set("Retry-After", strconv.Itoa(rateLimited.RetryAfterSeconds))
		h.writeError(w, http.StatusTooManyRequests, err.Error())
		return
	}

	switch domain.KindOf(err) {
	case domain.KindInsufficientFunds:
		h.writeError(w, http.StatusPaymentRequired, err.Error())
		return
	case domain.KindValidationFailed, domain.KindFeeMismatch:
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	case domain.KindConfigurationMissing:
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case domain.KindIntegrityViolation:
		// The stored balance failed tamper verification. Nothing the caller
		// can fix; operations must investigate the account.
		h.writeError(w, http.StatusConflict, "Account failed integrity verification")
		return
	}

	switch {
	case errors.Is(err, store.ErrAccountNotFound):
		h.writeError(w, http.StatusNotFound, "Account not found")
	case errors.Is(err, store.ErrTillNotFound):
		h.writeError(w, http.StatusNotFound, "Teller till not found")
	case errors.Is(err, store.ErrProductNotFound):
		h.writeError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, store.ErrStaleAccount):
		h.writeError(w, http.StatusConflict, "Account was modified concurrently, retry the operation")
	default:
		log.Printf("level=error component=api endpoint=%s outcome=error teller_id=%s account=%s err=%v", endpoint, tellerID, accountNumber, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// parseOptionalInt parses a query parameter, falling back to a default when absent.
func parseOptionalInt(raw string, fallback int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid integer %q", raw)
	}
	return value, nil
}

// writeJSON is a helper for writing JSON responses.
func (h *SettlementHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *SettlementHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
