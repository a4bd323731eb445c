package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/akylbek/acquirer-service/internal/handlers"
	"github.com/akylbek/acquirer-service/internal/middleware"
	"github.com/akylbek/acquirer-service/internal/payment"
	"github.com/akylbek/acquirer-service/internal/telemetry"
)

func NewRouter(service *payment.Service, redisClient *redis.Client) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(telemetry.TracingMiddleware())

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "acquirer-service"})
	})

	// Payment routes
	paymentHandler := handlers.NewPaymentHandler(service, redisClient)
	payments := r.Group("/payments")
	{
		payments.POST("", middleware.IdempotencyMiddleware(redisClient), paymentHandler.ProcessPayment)
		payments.GET("/:id", paymentHandler.GetTransaction)
		payments.GET("", paymentHandler.QueryTransactions)
	}

	return r
}
