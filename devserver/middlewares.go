package devserver

import (
	"shindensen_client/helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// authenticate checks the bearer token on every API request
func (s *Server) authenticate(c *fiber.Ctx) error {
	token := helpers.BearerToken(string(c.Request().Header.Peek(fiber.HeaderAuthorization)))
	return s.authenticateToken(c, token)
}

// authenticateStream authenticates websocket connection. Browsers cannot set
// headers on an upgrade, so the token may also come as a query parameter.
func (s *Server) authenticateStream(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return s.handleStatus(c, fiber.StatusUpgradeRequired, "Websocket", "upgrade required")
	}
	token := helpers.BearerToken(string(c.Request().Header.Peek(fiber.HeaderAuthorization)))
	if token == "" {
		token = c.Query("token")
	}
	return s.authenticateToken(c, token)
}

func (s *Server) authenticateToken(c *fiber.Ctx, token string) error {
	if token == "" {
		return s.handleUnauthorizedError(c, "missing")
	}
	claims, err := helpers.ParseJWT(s.secret, token)
	if err == helpers.ErrTokenExpired {
		return s.handleUnauthorizedError(c, "expired")
	}
	if err != nil {
		return s.handleUnauthorizedError(c, "invalid")
	}
	if _, ok := s.store.userByID(claims.UserID); !ok {
		return s.handleUnauthorizedError(c, "unknown user")
	}

	c.Locals("userid", claims.UserID)
	c.Locals("username", claims.Username)
	return c.Next()
}
