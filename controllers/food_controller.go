package controllers

import (
	"net/http"
	"strconv"

	"mealrec/services"

	"github.com/gin-gonic/gin"
)

type FoodController struct {
	Foods *services.FoodService
}

func NewFoodController(f *services.FoodService) *FoodController {
	return &FoodController{Foods: f}
}

// GET /api/foods/search?q=국밥&limit=20
func (fc *FoodController) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	out, err := fc.Foods.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"foods": out})
}

// GET /api/foods/:id
func (fc *FoodController) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	food, err := fc.Foods.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

// GET /api/food-options?class=국밥
func (fc *FoodController) Options(c *gin.Context) {
	class := c.Query("class")
	out, err := fc.Foods.Options(c.Request.Context(), class)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pred_class": class, "food_options": out})
}

// POST /api/calc-nutrition  {"food_id": 12, "weight_g": 300}
func (fc *FoodController) CalcNutrition(c *gin.Context) {
	var req struct {
		FoodID  uint    `json:"food_id" binding:"required"`
		WeightG float64 `json:"weight_g" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "food_id and weight_g are required"})
		return
	}
	out, err := fc.Foods.CalcNutrition(c.Request.Context(), req.FoodID, req.WeightG)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// POST /api/foods/recognize  {"image_base64": "data:image/jpeg;base64,..."}
func (fc *FoodController) Recognize(c *gin.Context) {
	var req struct {
		ImageBase64 string `json:"image_base64" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	out, err := fc.Foods.Recognize(c.Request.Context(), req.ImageBase64)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
