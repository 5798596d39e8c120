package echoapi

import (
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/kipimo/core/attempt"
)

const (
	contextOwnerKey = "owner"
	contextEmailKey = "email"

	deviceIDHeader = "X-Device-Id"
)

// Claims represents the authorization claims transmitted via a JWT.
// Tokens are issued by the identity collaborator; this API only verifies
// them.
type Claims struct {
	jwt.StandardClaims
	Username string   `json:"username,omitempty"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// GenerateToken generates a signed JWT token string representing the Claims;
// used by tests and tooling.
func GenerateToken(claims *Claims, secretKey []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey)
}

func parseToken(tokenStr string, secretKey []byte) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errTokenInvalid
		}
		return secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, errTokenInvalid
	}
	return claims, nil
}

// identityMiddleware resolves the attempt owner: a verified JWT maps to the
// username, otherwise a device id header scopes an anonymous owner. A request
// with neither is rejected rather than keying storage on an empty owner.
func identityMiddleware(secretKey []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if auth := ctx.Request().Header.Get(echo.HeaderAuthorization); auth != "" {
				tokenStr := strings.TrimPrefix(auth, "Bearer ")
				if tokenStr == auth {
					return errTokenInvalid
				}
				claims, err := parseToken(tokenStr, secretKey)
				if err != nil {
					return err
				}
				ctx.Set(contextOwnerKey, claims.Username)
				ctx.Set(contextEmailKey, claims.Email)
				return next(ctx)
			}

			if deviceID := ctx.Request().Header.Get(deviceIDHeader); deviceID != "" {
				ctx.Set(contextOwnerKey, attempt.AnonymousOwner(deviceID))
				ctx.Set(contextEmailKey, "")
				return next(ctx)
			}
			return errUnauthorized
		}
	}
}

func getContextOwner(ctx echo.Context) (string, error) {
	owner, ok := ctx.Get(contextOwnerKey).(string)
	if !ok || owner == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "owner not resolved")
	}
	return owner, nil
}

func getContextEmail(ctx echo.Context) string {
	email, _ := ctx.Get(contextEmailKey).(string)
	return email
}
