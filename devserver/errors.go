package devserver

import (
	"shindensen_client/schemas"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// handleInternalError handles internal errors (things that should never happen in normal circumstances)
func (s *Server) handleInternalError(c *fiber.Ctx, problem string, err error) error {
	s.log.Error("internal error", zap.String("ip", c.IP()), zap.String("problem", problem), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(schemas.ErrorResponse{
		Error: true,
	})
}

// handleBadRequestError handles bad request errors (client error that is harmless to server and state)
func (s *Server) handleBadRequestError(c *fiber.Ctx, problem string, description string) error {
	s.log.Info("bad request", zap.String("problem", problem), zap.String("description", description))
	return s.handleStatus(c, fiber.StatusBadRequest, problem, description)
}

// handleValidatorError handles errors when validating request
func (s *Server) handleValidatorError(c *fiber.Ctx, err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		return s.handleBadRequestError(c, verrs[0].StructField(), verrs[0].Tag())
	}
	return s.handleBadRequestError(c, "Body", err.Error())
}

// handleBadJsonError handles json request parser errors
func (s *Server) handleBadJsonError(c *fiber.Ctx) error {
	return s.handleBadRequestError(c, "JSON body", "invalid")
}

func (s *Server) handleUnauthorizedError(c *fiber.Ctx, description string) error {
	return s.handleStatus(c, fiber.StatusUnauthorized, "Token", description)
}

func (s *Server) handleNotFoundError(c *fiber.Ctx, problem string) error {
	return s.handleStatus(c, fiber.StatusNotFound, problem, "not found")
}

func (s *Server) handleStatus(c *fiber.Ctx, status int, problem, description string) error {
	return c.Status(status).JSON(schemas.ErrorResponse{
		Error:       true,
		Problem:     problem,
		Description: description,
	})
}
