package middleware

import (
	"errors"
	"net/http"
	"strings"

	httpdto "github.com/vibast-solutions/ms-go-idmatch/app/dto/http"
	"github.com/vibast-solutions/ms-go-idmatch/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type APIKeyMiddleware struct {
	verifier service.APIKeyVerifier
}

func NewAPIKeyMiddleware(verifier service.APIKeyVerifier) *APIKeyMiddleware {
	return &APIKeyMiddleware{verifier: verifier}
}

func (m *APIKeyMiddleware) RequireAPIKey(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Let CORS preflight pass.
		if c.Request().Method == http.MethodOptions {
			return next(c)
		}

		apiKey := strings.TrimSpace(c.Request().Header.Get("X-API-Key"))
		if apiKey == "" {
			logrus.Debug("Missing x-api-key header")
			return c.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
		}

		if err := m.verifier.Verify(apiKey); err != nil {
			if errors.Is(err, service.ErrInvalidAPIKey) {
				logrus.Debug("Invalid x-api-key header")
				return c.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
			}
			logrus.WithError(err).Error("API key validation failed")
			return c.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
		}

		return next(c)
	}
}
