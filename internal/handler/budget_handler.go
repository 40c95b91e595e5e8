package handler

import (
	"github.com/gin-gonic/gin"

	"payfill/internal/budget"
)

// BudgetHandler exposes the daily spending tracker.
type BudgetHandler struct {
	tracker *budget.Tracker
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(tracker *budget.Tracker) *BudgetHandler {
	return &BudgetHandler{tracker: tracker}
}

// Status handles GET /api/v1/budget
// @Summary Get today's spend against the daily budget
// @Tags budget
// @Produce json
// @Success 200 {object} APIResponse "Budget status"
// @Router /budget [get]
func (h *BudgetHandler) Status(c *gin.Context) {
	RespondOK(c, h.tracker.Snapshot())
}
