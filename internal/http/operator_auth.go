package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farm-credit/internal/service"
)

const operatorContextKey = "operator"

// OperatorAuthMiddleware protege los endpoints del operador. Acepta solo
// access tokens emitidos por /api/auth/token para service.OperatorName y
// guarda el operador en el contexto.
func OperatorAuthMiddleware(logger *zap.Logger, jwtSvc *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !jwtSvc.Configured() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "operator auth not configured"})
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", `Bearer realm="farm-credit"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := jwtSvc.ParseAccessToken(token)
		switch {
		case errors.Is(err, service.ErrJWTExpired):
			c.Header("WWW-Authenticate", `Bearer error="invalid_token", error_description="token expired"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
			return
		case err != nil:
			logger.Warn("operator token rejected", zap.String("client_ip", c.ClientIP()), zap.Error(err))
			c.Header("WWW-Authenticate", `Bearer error="invalid_token"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		if claims.Operator != service.OperatorName {
			logger.Warn("token for unknown operator", zap.String("operator", claims.Operator))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Set(operatorContextKey, claims.Operator)
		c.Next()
	}
}

// CurrentOperator devuelve el operador autenticado o "" fuera de rutas protegidas.
func CurrentOperator(c *gin.Context) string {
	return c.GetString(operatorContextKey)
}

// bearerToken extrae el token de "Bearer <token>"; el esquema no distingue mayúsculas.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
