package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/loopnorth/ms-go-checkout/app/service"
	"github.com/loopnorth/ms-go-checkout/app/types"
	"github.com/loopnorth/ms-go-checkout/config"
)

const userContextKey = "auth.user"

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID uint64 `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

func ParseAccessToken(cfg config.AuthConfig, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RequireUser validates the bearer token and stores the acting user in the
// echo context for the controllers.
func RequireUser(cfg config.AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderAuthorization))
			if header == "" {
				return ctx.JSON(http.StatusUnauthorized, &types.ErrorResponse{Error: "missing authorization header"})
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return ctx.JSON(http.StatusUnauthorized, &types.ErrorResponse{Error: "invalid authorization format"})
			}

			claims, err := ParseAccessToken(cfg, strings.TrimSpace(parts[1]))
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, &types.ErrorResponse{Error: "invalid or expired token"})
			}

			ctx.Set(userContextKey, service.User{
				ID:    claims.UserID,
				Email: claims.Email,
				Name:  claims.Name,
			})
			return next(ctx)
		}
	}
}

// CurrentUser returns the authenticated user; the zero User when the request
// did not pass RequireUser.
func CurrentUser(ctx echo.Context) service.User {
	if user, ok := ctx.Get(userContextKey).(service.User); ok {
		return user
	}
	return service.User{}
}
