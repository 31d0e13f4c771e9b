package controllers

import (
	"net/http"
	"strconv"

	"mealrec/services"

	"github.com/gin-gonic/gin"
)

type SummaryController struct {
	Summaries *services.SummaryService
}

func NewSummaryController(s *services.SummaryService) *SummaryController {
	return &SummaryController{Summaries: s}
}

// GET /api/summary/daily?day=2024-05-01
func (sc *SummaryController) Daily(c *gin.Context) {
	out, err := sc.Summaries.Daily(c.Request.Context(), c.GetUint("userID"), c.Query("day"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/summary/history?days=7
func (sc *SummaryController) History(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a number"})
		return
	}
	out, err := sc.Summaries.History(c.Request.Context(), c.GetUint("userID"), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": out})
}
