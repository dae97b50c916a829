package service

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials indica una contraseña de operador incorrecta.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrAuthNotConfigured indica que falta el hash de contraseña o el secreto JWT.
var ErrAuthNotConfigured = errors.New("operator auth not configured")

// OperatorName es el sujeto de los tokens: la herramienta tiene un único operador.
const OperatorName = "operator"

// AuthService verifica la contraseña del operador y emite su access token.
type AuthService struct {
	passwordHash []byte
	jwt          *JWTService
}

func NewAuthService(passwordHash string, jwtSvc *JWTService) *AuthService {
	return &AuthService{
		passwordHash: []byte(strings.TrimSpace(passwordHash)),
		jwt:          jwtSvc,
	}
}

// IssueToken compara la contraseña tal cual se recibe, igual que HashPassword
// la guarda: los espacios forman parte de ella.
func (s *AuthService) IssueToken(password string) (AccessToken, error) {
	if len(s.passwordHash) == 0 || !s.jwt.Configured() {
		return AccessToken{}, ErrAuthNotConfigured
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return AccessToken{}, ErrInvalidCredentials
	}
	return s.jwt.GenerateAccess(OperatorName)
}

// HashPassword genera el valor para OPERATOR_PASSWORD_HASH. Rechaza
// contraseñas vacías o de solo espacios.
func HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("empty password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
