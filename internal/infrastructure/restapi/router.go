package restapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter builds the gin engine with CORS, request logging, recovery and all routes.
func SetupRouter(h *WalletHandler, allowedOrigins []string, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))
	router.Use(ZapLoggerMiddleware(logger))
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/token", h.GetToken)
		v1.GET("/wallet", h.GetWallet)
		v1.POST("/wallet/connect", h.Connect)
		v1.POST("/wallet/disconnect", h.Disconnect)
		v1.PUT("/wallet/address", h.SetAddress)
		v1.GET("/wallet/stream", h.StreamWallet)
		v1.GET("/balance", h.GetBalance)
		v1.GET("/utxos", h.GetUtxos)
		v1.POST("/transfers", h.PostTransfer)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// ZapLoggerMiddleware logs one line per request.
func ZapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("HTTP")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= 500 {
			log.Warn("Request failed", fields...)
			return
		}
		log.Debug("Request served", fields...)
	}
}
