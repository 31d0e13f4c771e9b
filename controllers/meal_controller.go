package controllers

import (
	"net/http"

	"mealrec/services"

	"github.com/gin-gonic/gin"
)

type MealController struct {
	Meals *services.MealService
}

func NewMealController(m *services.MealService) *MealController {
	return &MealController{Meals: m}
}

// POST /api/meals
func (mc *MealController) Create(c *gin.Context) {
	var in services.MealInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	meal, err := mc.Meals.Create(c.Request.Context(), c.GetUint("userID"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, meal)
}

// GET /api/meals
func (mc *MealController) List(c *gin.Context) {
	meals, err := mc.Meals.List(c.Request.Context(), c.GetUint("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals})
}

// GET /api/meals/:id
func (mc *MealController) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	meal, err := mc.Meals.Get(c.Request.Context(), c.GetUint("userID"), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

// PUT /api/meals/:id
func (mc *MealController) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var in services.MealInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	meal, err := mc.Meals.Update(c.Request.Context(), c.GetUint("userID"), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

// DELETE /api/meals/:id
func (mc *MealController) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := mc.Meals.Delete(c.Request.Context(), c.GetUint("userID"), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
