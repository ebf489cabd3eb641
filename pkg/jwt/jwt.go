package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrEmptySecret el secreto de firma no está configurado.
	ErrEmptySecret = errors.New("jwt: secret vacío")
	// ErrMissingTenant el token no identifica al tenant; ninguna ruta puede atenderlo.
	ErrMissingTenant = errors.New("jwt: token sin tenant_id")
)

// Claims claims registrados más el tenant, usuario y rol que consumen las rutas.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"` // "admin" | "quality" | "operator"
}

// Generate firma un token HS256 para el usuario dentro de su tenant.
func Generate(secret, userID, tenantID, role, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	if tenantID == "" {
		return "", ErrMissingTenant
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:   userID,
		TenantID: tenantID,
		Role:     role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Parse valida firma, vencimiento y tenant; devuelve userID, tenantID y role.
func Parse(secret, tokenString string) (userID, tenantID, role string, err error) {
	if secret == "" {
		return "", "", "", ErrEmptySecret
	}
	claims := &Claims{}
	_, err = jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", "", "", fmt.Errorf("jwt: %w", err)
	}
	if claims.TenantID == "" {
		return "", "", "", ErrMissingTenant
	}
	return claims.UserID, claims.TenantID, claims.Role, nil
}
