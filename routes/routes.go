package routes

import (
	"net/http"

	"mealrec/controllers"
	"mealrec/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Deps carries the constructed controllers into the router.
type Deps struct {
	Log            zerolog.Logger
	Auth           middlewares.TokenAuthenticator
	Gatherer       prometheus.Gatherer
	AuthC          *controllers.AuthController
	Profile        *controllers.ProfileController
	Preference     *controllers.PreferenceController
	Meal           *controllers.MealController
	Food           *controllers.FoodController
	Recommendation *controllers.RecommendationController
	Summary        *controllers.SummaryController
	Realtime       *controllers.RealtimeController
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(d.Log))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")

	// Public auth routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", d.AuthC.Register)
		auth.POST("/login", d.AuthC.Login)
	}

	// Everything below needs a valid token
	p := api.Group("")
	p.Use(middlewares.AuthMiddleware(d.Auth))
	{
		p.POST("/auth/logout", d.AuthC.Logout)

		p.GET("/profile", d.Profile.GetProfile)
		p.PUT("/profile", d.Profile.UpdateProfile)

		p.GET("/preferences", d.Preference.List)
		p.PUT("/preferences/:foodId", d.Preference.Set)
		p.DELETE("/preferences/:foodId", d.Preference.Delete)

		p.GET("/meals", d.Meal.List)
		p.POST("/meals", d.Meal.Create)
		p.GET("/meals/:id", d.Meal.Get)
		p.PUT("/meals/:id", d.Meal.Update)
		p.DELETE("/meals/:id", d.Meal.Delete)

		p.GET("/foods/search", d.Food.Search)
		p.GET("/foods/:id", d.Food.Get)
		p.POST("/foods/recognize", d.Food.Recognize)
		p.GET("/food-options", d.Food.Options)
		p.POST("/calc-nutrition", d.Food.CalcNutrition)

		p.GET("/summary/daily", d.Summary.Daily)
		p.GET("/summary/history", d.Summary.History)

		p.POST("/recommend-menu", d.Recommendation.RecommendMenu)

		p.GET("/alerts", d.Realtime.ListAlerts)
		p.GET("/alerts/ws", d.Realtime.AlertsWS)
	}

	return r
}
