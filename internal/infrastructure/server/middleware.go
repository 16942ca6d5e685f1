package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/taskforge/api/internal/domain/entities"
)

// authMiddleware verifies the bearer token on incoming requests and places
// the authenticated owner id in the request context. Tokens are issued by
// an external identity service; this middleware only validates them.
func (s *Server) authMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			ownerID, err := s.verifyToken(parts[1])
			if err != nil {
				s.logger.Warnw("Token verification failed", "error", err, "remote_ip", c.RealIP())
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			// A valid token for a deleted or deactivated account is still
			// rejected.
			user, err := s.userRepo.GetByID(c.Request().Context(), ownerID)
			if err != nil {
				if errors.Is(err, entities.ErrUserNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "unknown account")
				}
				s.logger.Errorw("User lookup failed", "error", err, "owner_id", ownerID)
				return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
			}
			if !user.IsActive {
				return echo.NewHTTPError(http.StatusForbidden, "account is deactivated")
			}

			c.Set("owner_id", ownerID)
			return next(c)
		}
	}
}

// verifyToken parses and validates a JWT and returns the subject as owner id.
func (s *Server) verifyToken(tokenString string) (int64, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if s.config.Auth.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Auth.Issuer))
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.config.Auth.JWTSecret), nil
	}, opts...)
	if err != nil {
		return 0, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return 0, fmt.Errorf("token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("unexpected claims type")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, fmt.Errorf("token has no subject")
	}

	ownerID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || ownerID <= 0 {
		return 0, fmt.Errorf("invalid subject %q", sub)
	}

	return ownerID, nil
}
