package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farm-credit/internal/service"
)

// NewRouter configura el router de Gin con middlewares, páginas y API.
func NewRouter(
	logger *zap.Logger,
	pageH *PageHandler,
	predictionH *PredictionHandler,
	authH *AuthHandler,
	jwtSvc *service.JWTService,
	uploadGuard *UploadGuard,
) *gin.Engine {
	r := gin.New()
	r.Use(zapLoggerMiddleware(logger), gin.Recovery())
	r.SetHTMLTemplate(loadTemplates())

	r.GET("/healthz", predictionH.Health)

	r.GET("/", pageH.Form)
	r.POST("/", pageH.SubmitForm)
	r.GET("/batch", pageH.BatchForm)
	r.POST("/batch", uploadGuard.Handler(pageH.RejectBatch), pageH.SubmitBatch)

	api := r.Group("/api")
	api.Use(jsonContentTypeMiddleware())
	api.POST("/predict", predictionH.Predict)
	api.POST("/predict/batch", uploadGuard.Handler(rejectUploadJSON), predictionH.PredictBatch)
	api.GET("/schema", predictionH.Schema)
	api.POST("/auth/token", authH.IssueToken)
	api.GET("/predictions", OperatorAuthMiddleware(logger, jwtSvc), predictionH.ListPredictions)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en la API.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
