package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"travel-backend/controllers"
	"travel-backend/middleware"
)

// Controllers bundles every handler the router mounts.
type Controllers struct {
	Auth         *controllers.AuthController
	Categories   *controllers.CategoryController
	Destinations *controllers.DestinationController
	Rates        *controllers.RateController
	Tours        *controllers.TourController
}

// Options carries the router's non-handler dependencies.
type Options struct {
	CORSOrigins []string
	Tokens      middleware.TokenParser
	Users       middleware.UserFinder
	// Limiter throttles the OTP and token endpoints. Nil disables throttling.
	Limiter *middleware.RateLimiter
}

// DefaultLimiter allows a sustained request every 6s per IP with a burst of 5.
func DefaultLimiter() *middleware.RateLimiter {
	return middleware.NewRateLimiter(rate.Every(6*time.Second), 5)
}

func SetupRouter(ctl Controllers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(), middleware.Metrics())

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	throttle := func(c *gin.Context) { c.Next() }
	if opts.Limiter != nil {
		throttle = opts.Limiter.Limit()
	}
	authRequired := middleware.Auth(opts.Tokens, opts.Users)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			otp := auth.Group("", throttle)
			{
				otp.POST("/register", ctl.Auth.Register)
				otp.POST("/request-otp", ctl.Auth.RequestOTP)
				otp.POST("/verify-otp", ctl.Auth.VerifyOTP)
				otp.POST("/request-password-reset", ctl.Auth.RequestPasswordReset)
				otp.POST("/verify-password-reset", ctl.Auth.VerifyPasswordReset)
			}

			auth.POST("/logout", authRequired, ctl.Auth.Logout)
			auth.GET("/user", authRequired, ctl.Auth.UserDetails)
		}

		token := api.Group("/token", throttle)
		{
			token.POST("", ctl.Auth.ObtainToken)
			token.POST("/refresh", ctl.Auth.RefreshToken)
		}

		categories := api.Group("/categories", authRequired)
		{
			categories.GET("", ctl.Categories.List)
			categories.POST("", ctl.Categories.Create)
			categories.GET("/:slug", ctl.Categories.Get)
			categories.PUT("/:slug", ctl.Categories.Update)
			categories.PATCH("/:slug", ctl.Categories.Update)
			categories.DELETE("/:slug", ctl.Categories.Delete)
		}

		destinations := api.Group("/destinations")
		{
			// list/retrieve are public
			destinations.GET("", ctl.Destinations.List)
			destinations.GET("/:slug", ctl.Destinations.Get)
			destinations.POST("", authRequired, ctl.Destinations.Create)
			destinations.PUT("/:slug", authRequired, ctl.Destinations.Update)
			destinations.PATCH("/:slug", authRequired, ctl.Destinations.Update)
			destinations.DELETE("/:slug", authRequired, ctl.Destinations.Delete)

			rates := destinations.Group("/:slug/rates", authRequired, middleware.RequireStaff())
			{
				rates.GET("", ctl.Rates.Get)
				rates.PUT("", ctl.Rates.Put)
			}
		}

		schedule := api.Group("/schedule", authRequired)
		{
			schedule.GET("", ctl.Tours.List)
			schedule.POST("", ctl.Tours.Create)
			schedule.GET("/:id", ctl.Tours.Get)
			schedule.PUT("/:id", ctl.Tours.Update)
			schedule.PATCH("/:id", ctl.Tours.Update)
			schedule.DELETE("/:id", ctl.Tours.Delete)
		}
	}

	return r
}
