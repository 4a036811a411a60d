package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/sundaiclub/pitch-service/internal/repository"
	"github.com/sundaiclub/pitch-service/internal/service"
)

const actorContextKey = "actor"

// Auth verifies the bearer token issued by the identity provider and resolves
// the caller into an Actor. The member's role is re-read from the database on
// every request rather than trusted from the token.
func Auth(secret string, members repository.MemberRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			tokenString := strings.TrimPrefix(header, "Bearer ")
			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
			}
			memberID, ok := claims["member_id"].(float64)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "token carries no member id")
			}

			member, err := members.FindByID(c.Request().Context(), uint(memberID))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "unknown member")
			}

			c.Set(actorContextKey, service.Actor{MemberID: member.ID, Role: member.Role})
			return next(c)
		}
	}
}

// ActorFrom returns the resolved caller stored by Auth.
func ActorFrom(c echo.Context) (service.Actor, bool) {
	actor, ok := c.Get(actorContextKey).(service.Actor)
	return actor, ok
}
