package controllers

import (
	"context"
	"net/http"

	"mealrec/services"

	"github.com/gin-gonic/gin"
)

// MenuRecommender is what the handler needs from the pipeline.
type MenuRecommender interface {
	Recommend(ctx context.Context, userID uint, query string) (*services.Recommendation, error)
}

type RecommendationController struct {
	Recommender MenuRecommender
}

func NewRecommendationController(r MenuRecommender) *RecommendationController {
	return &RecommendationController{Recommender: r}
}

// POST /api/recommend-menu  {"query": "비 오는 날 따뜻한 국물"}
func (rc *RecommendationController) RecommendMenu(c *gin.Context) {
	var req struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	rec, err := rc.Recommender.Recommend(c.Request.Context(), c.GetUint("userID"), req.Query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
