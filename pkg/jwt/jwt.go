package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims incluye los claims estándar JWT más la identidad del operador:
// tenant y sede acotan qué ítems puede mover; Role habilita operaciones restringidas (reversión).
type Claims struct {
	jwt.RegisteredClaims
	UserID     string `json:"user_id"`
	TenantID   string `json:"tenant_id"`
	LocationID string `json:"location_id,omitempty"`
	Role       string `json:"role"` // "admin" | "manager" | "staff"
}

// Identity datos del operador extraídos de un token válido.
type Identity struct {
	UserID     string
	TenantID   string
	LocationID string
	Role       string
}

// Generate genera un token JWT firmado con la identidad del operador.
func Generate(secret string, id Identity, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:     id.UserID,
		TenantID:   id.TenantID,
		LocationID: id.LocationID,
		Role:       id.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token y devuelve la identidad.
// Retorna error si el token es inválido, expirado, tiene firma incorrecta o no trae tenant.
func Parse(secret, tokenString string) (Identity, error) {
	if secret == "" {
		return Identity{}, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Identity{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("claims inválidos")
	}
	if claims.TenantID == "" {
		return Identity{}, fmt.Errorf("claims inválidos: tenant_id vacío")
	}
	return Identity{
		UserID:     claims.UserID,
		TenantID:   claims.TenantID,
		LocationID: claims.LocationID,
		Role:       claims.Role,
	}, nil
}
