package controllers

import (
	"net/http"

	"mealrec/services"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	Profiles *services.ProfileService
}

func NewProfileController(p *services.ProfileService) *ProfileController {
	return &ProfileController{Profiles: p}
}

// GET /api/profile
func (pc *ProfileController) GetProfile(c *gin.Context) {
	view, err := pc.Profiles.Get(c.Request.Context(), c.GetUint("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// PUT /api/profile
func (pc *ProfileController) UpdateProfile(c *gin.Context) {
	var input services.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	view, err := pc.Profiles.Update(c.Request.Context(), c.GetUint("userID"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile updated", "profile": view})
}
