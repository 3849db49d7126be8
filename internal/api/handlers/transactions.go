package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/portfolio-tracker/internal/api/request"
	"github.com/ndewijer/portfolio-tracker/internal/api/response"
	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/service"
)

// TransactionHandler handles HTTP requests for a user's ledger.
// It parses requests and delegates validation, matching and persistence to
// the transactionService.
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependency.
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// DeleteAllResponse reports how many transactions a delete-all removed.
type DeleteAllResponse struct {
	Deleted int64 `json:"deleted"`
}

// RefreshResponse lists market data problems met during a refresh.
// The recompute itself succeeded when this is returned.
type RefreshResponse struct {
	Warnings []string `json:"warnings"`
}

// Transactions handles GET requests to list the user's ledger.
//
// Endpoint: GET /api/user/{uuid}/transaction
// Response: 200 OK with array of Transaction ordered by date
// Error: 404 Not Found if the user does not exist
func (h *TransactionHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.transactionService.GetTransactions(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveTransactions.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, txs)
}

// GetTransaction handles GET requests to retrieve a single transaction.
//
// Endpoint: GET /api/user/{uuid}/transaction/{transactionId}
// Response: 200 OK with Transaction
// Error: 404 Not Found if the user or transaction does not exist
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.transactionService.GetTransaction(r.Context(), chi.URLParam(r, "uuid"), chi.URLParam(r, "transactionId"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveTransactions.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, tx)
}

// CreateTransaction handles POST requests to enter a transaction.
//
// Endpoint: POST /api/user/{uuid}/transaction
// Request Body: CreateTransactionRequest (date, symbol, type, quantity, price)
// Response: 201 Created with Transaction
// Error: 400 Bad Request if the body is invalid or fails validation
// Error: 409 Conflict if a sell or fee exceeds the shares held
// Error: 422 Unprocessable Entity if the symbol is unknown
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tx, err := h.transactionService.CreateTransaction(r.Context(), chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, err, "failed to create transaction")
		return
	}

	response.RespondJSON(w, http.StatusCreated, tx)
}

// UploadTransactions handles POST requests with a JSON array of transactions.
// The batch is stored as a whole or not at all.
//
// Endpoint: POST /api/user/{uuid}/transaction/upload
// Request Body: array of CreateTransactionRequest
// Response: 201 Created with array of Transaction
// Error: 400, 409, 422 as for CreateTransaction
func (h *TransactionHandler) UploadTransactions(w http.ResponseWriter, r *http.Request) {
	rows, err := parseJSON[[]request.CreateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	txs, err := h.transactionService.UploadTransactions(r.Context(), chi.URLParam(r, "uuid"), rows)
	if err != nil {
		respondServiceError(w, err, "failed to upload transactions")
		return
	}

	response.RespondJSON(w, http.StatusCreated, txs)
}

// UpdateTransaction handles PUT requests to edit a transaction.
//
// Endpoint: PUT /api/user/{uuid}/transaction/{transactionId}
// Request Body: UpdateTransactionRequest (all fields optional)
// Response: 200 OK with the updated Transaction
// Error: 404 Not Found if the transaction does not exist
// Error: 409 Conflict if the edit leaves a later sell uncovered
func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tx, err := h.transactionService.UpdateTransaction(r.Context(), chi.URLParam(r, "uuid"), chi.URLParam(r, "transactionId"), req)
	if err != nil {
		respondServiceError(w, err, "failed to update transaction")
		return
	}

	response.RespondJSON(w, http.StatusOK, tx)
}

// DeleteTransaction handles DELETE requests to remove a transaction.
//
// Endpoint: DELETE /api/user/{uuid}/transaction/{transactionId}
// Response: 204 No Content on successful deletion
// Error: 404 Not Found if the transaction does not exist
// Error: 409 Conflict if later sells depend on it
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	err := h.transactionService.DeleteTransaction(r.Context(), chi.URLParam(r, "uuid"), chi.URLParam(r, "transactionId"))
	if err != nil {
		respondServiceError(w, err, "failed to delete transaction")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// DeleteAllTransactions handles DELETE requests to clear the user's ledger.
//
// Endpoint: DELETE /api/user/{uuid}/transaction
// Response: 200 OK with DeleteAllResponse
func (h *TransactionHandler) DeleteAllTransactions(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.transactionService.DeleteAllTransactions(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, "failed to delete transactions")
		return
	}

	response.RespondJSON(w, http.StatusOK, DeleteAllResponse{Deleted: deleted})
}

// Refresh handles POST requests to re-fetch the user's market data and recompute.
//
// Endpoint: POST /api/user/{uuid}/refresh
// Response: 200 OK with RefreshResponse
// Error: 409 Conflict if new split data leaves a sell uncovered
func (h *TransactionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	warnings, err := h.transactionService.RefreshUser(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRefresh.Error())
		return
	}
	if warnings == nil {
		warnings = []string{}
	}

	response.RespondJSON(w, http.StatusOK, RefreshResponse{Warnings: warnings})
}
