package http

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farm-credit/internal/service"
)

// UploadRejecter escribe la respuesta 429 de una carga rechazada.
type UploadRejecter func(c *gin.Context, retryAfter time.Duration)

// UploadGuard limita las cargas batch por IP y el tamaño del cuerpo.
type UploadGuard struct {
	logger   *zap.Logger
	limiter  service.UploadRateLimiter
	maxBytes int64
}

func NewUploadGuard(logger *zap.Logger, limiter service.UploadRateLimiter, maxBytes int64) *UploadGuard {
	return &UploadGuard{logger: logger, limiter: limiter, maxBytes: maxBytes}
}

// Handler devuelve el middleware. El header Retry-After se fija antes de
// llamar a reject.
func (g *UploadGuard) Handler(reject UploadRejecter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if g.limiter != nil {
			allowed, retryAfter := g.limiter.Allow(c.Request.Context(), c.ClientIP())
			if !allowed {
				g.logger.Warn("batch upload rejected",
					zap.String("client_ip", c.ClientIP()),
					zap.Duration("retry_after", retryAfter),
					zap.Error(service.ErrRateLimited),
				)
				c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(retryAfter)))
				reject(c, retryAfter)
				c.Abort()
				return
			}
		}
		if g.maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, g.maxBytes)
		}
		c.Next()
	}
}

// rejectUploadJSON es el rechazo de la API.
func rejectUploadJSON(c *gin.Context, retryAfter time.Duration) {
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error":               "too many requests",
		"retry_after_seconds": retryAfterSeconds(retryAfter),
	})
}

// retryAfterSeconds redondea hacia arriba; nunca devuelve menos de 1.
func retryAfterSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}
