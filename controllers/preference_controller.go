package controllers

import (
	"net/http"

	"mealrec/services"

	"github.com/gin-gonic/gin"
)

type PreferenceController struct {
	Preferences *services.PreferenceService
}

func NewPreferenceController(p *services.PreferenceService) *PreferenceController {
	return &PreferenceController{Preferences: p}
}

// GET /api/preferences
func (pc *PreferenceController) List(c *gin.Context) {
	out, err := pc.Preferences.List(c.Request.Context(), c.GetUint("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// PUT /api/preferences/:foodId  {"preference": "LIKE"}
func (pc *PreferenceController) Set(c *gin.Context) {
	foodID, ok := uintParam(c, "foodId")
	if !ok {
		return
	}
	var req struct {
		Preference string `json:"preference" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if err := pc.Preferences.Set(c.Request.Context(), c.GetUint("userID"), foodID, req.Preference); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "preference saved"})
}

// DELETE /api/preferences/:foodId
func (pc *PreferenceController) Delete(c *gin.Context) {
	foodID, ok := uintParam(c, "foodId")
	if !ok {
		return
	}
	if err := pc.Preferences.Remove(c.Request.Context(), c.GetUint("userID"), foodID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
