package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ai-health-analyze/internal/middleware"
	"github.com/iliyamo/ai-health-analyze/internal/model"
	"github.com/iliyamo/ai-health-analyze/internal/repository"
)

// AnalysisLister reads a user's stored analyses.
type AnalysisLister interface {
	ListByUser(ctx context.Context, userID uint64, limit int) ([]model.Analysis, error)
}

// HistoryHandler serves the analysis history shown on the follow-up page.
type HistoryHandler struct {
	Analyses AnalysisLister
}

func NewHistoryHandler(a AnalysisLister) *HistoryHandler { return &HistoryHandler{Analyses: a} }

// List returns the caller's analyses, newest first. ?limit= is clamped to
// 1..100 (default 20).
func (h *HistoryHandler) List(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit := 0
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be a number"})
		}
		limit = n
	}
	limit = repository.ClampLimit(limit)

	items, err := h.Analyses.ListByUser(c.Request().Context(), uid, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if items == nil {
		items = []model.Analysis{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "limit": limit})
}
