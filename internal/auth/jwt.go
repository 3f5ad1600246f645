package auth

import (
	"time"

	"ovopacific-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

type JWTCustomClaims struct {
	UserID       uint          `json:"user_id"`
	Username     string        `json:"username"`
	Rol          models.Rol    `json:"rol"`
	Ciudad       models.Ciudad `json:"ciudad"`
	Superusuario bool          `json:"superusuario"`
	jwt.RegisteredClaims
}

func GenerateToken(secret string, usuario *models.Usuario) (string, error) {
	claims := &JWTCustomClaims{
		UserID:       usuario.ID,
		Username:     usuario.Username,
		Rol:          usuario.Rol,
		Ciudad:       usuario.Ciudad,
		Superusuario: usuario.Superusuario,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)), // 1 día
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
