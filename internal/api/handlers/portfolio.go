package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/portfolio-tracker/internal/api/response"
	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/model"
	"github.com/ndewijer/portfolio-tracker/internal/service"
)

// PortfolioHandler handles the read endpoints of a user's portfolio.
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// Positions handles GET requests for the user's position rows.
//
// Endpoint: GET /api/user/{uuid}/positions
// Response: 200 OK with array of PositionRow
func (h *PortfolioHandler) Positions(w http.ResponseWriter, r *http.Request) {
	rows, err := h.portfolioService.GetPositions(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrievePositions.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, rows)
}

// Summary handles GET requests for the portfolio totals.
//
// Endpoint: GET /api/user/{uuid}/summary
// Response: 200 OK with PortfolioSummary
func (h *PortfolioHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.portfolioService.GetSummary(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToGetPortfolioSummary.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

// History handles GET requests for the daily value curve.
//
// Endpoint: GET /api/user/{uuid}/history?days=N&live=true
// Query: days limits the curve to the trailing N days (0 or absent for all),
// live appends a point for today at the cached quotes
// Response: 200 OK with array of ValueHistoryPoint
// Error: 400 Bad Request if days or live cannot be parsed
func (h *PortfolioHandler) History(w http.ResponseWriter, r *http.Request) {
	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			response.RespondError(w, http.StatusBadRequest, "days must be a non-negative integer", v)
			return
		}
		days = n
	}

	live := false
	if v := r.URL.Query().Get("live"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "live must be true or false", v)
			return
		}
		live = b
	}

	points, err := h.portfolioService.GetHistory(r.Context(), chi.URLParam(r, "uuid"), days, live)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToGetPortfolioHistory.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, points)
}

// Metrics handles GET requests for the trailing-window metrics table.
//
// Endpoint: GET /api/user/{uuid}/metrics
// Response: 200 OK with array of MetricsRow
func (h *PortfolioHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	rows, err := h.portfolioService.GetMetrics(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToGetMetrics.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, rows)
}

// Allocation handles GET requests for the sector or asset class split.
//
// Endpoint: GET /api/user/{uuid}/allocation?by=sector|asset
// Query: by defaults to sector
// Response: 200 OK with array of AllocationBucket, smallest first
// Error: 400 Bad Request for any other value of by
func (h *PortfolioHandler) Allocation(w http.ResponseWriter, r *http.Request) {
	by := r.URL.Query().Get("by")
	if by == "" {
		by = service.AllocationBySector
	}

	buckets, err := h.portfolioService.GetAllocation(r.Context(), chi.URLParam(r, "uuid"), by)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToGetAllocation.Error())
		return
	}
	if buckets == nil {
		buckets = []model.AllocationBucket{}
	}

	response.RespondJSON(w, http.StatusOK, buckets)
}
