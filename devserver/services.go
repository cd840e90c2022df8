package devserver

import (
	"shindensen_client/global"
	"shindensen_client/helpers"
	"shindensen_client/schemas"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// login registers or finds the user and returns a bearer token
func (s *Server) login(c *fiber.Ctx) error {
	req := new(schemas.LoginSchema)
	if err := c.BodyParser(req); err != nil {
		return s.handleBadJsonError(c)
	}
	if err := global.Validator.Struct(req); err != nil {
		return s.handleValidatorError(c, err)
	}

	user := s.store.login(req.Username)
	token, err := helpers.GenerateJWT(s.secret, user.ID, user.Username, s.ttl)
	if err != nil {
		return s.handleInternalError(c, "generate_jwt", err)
	}
	s.log.Info("login", zap.Int64("user", user.ID), zap.String("username", user.Username))
	return c.JSON(schemas.AuthResponse{Token: token})
}

// getChats lists every chat the user is a member of
func (s *Server) getChats(c *fiber.Ctx) error {
	userID := c.Locals("userid").(int64)
	return c.JSON(s.store.chatsFor(userID))
}

// getHistory returns the full message history of a chat
func (s *Server) getHistory(c *fiber.Ctx) error {
	userID := c.Locals("userid").(int64)
	chatID, err := helpers.ParseStringToInt(c.Params("id"))
	if err != nil || chatID <= 0 {
		return s.handleBadRequestError(c, "ChatID", "invalid")
	}

	res, err := s.store.history(chatID, userID)
	if err != nil {
		return s.handleNotFoundError(c, "Chat")
	}
	return c.JSON(res)
}

// getUser looks a user up by numeric id or, failing that, by username
func (s *Server) getUser(c *fiber.Ctx) error {
	key := c.Params("key")

	var (
		user schemas.UserInfo
		ok   bool
	)
	if id, err := helpers.ParseStringToInt(key); err == nil {
		user, ok = s.store.userByID(id)
	} else {
		user, ok = s.store.userByName(key)
	}
	if !ok {
		return s.handleNotFoundError(c, "User")
	}
	return c.JSON(user)
}

// initiateChat opens or finds the direct chat with the target user
func (s *Server) initiateChat(c *fiber.Ctx) error {
	userID := c.Locals("userid").(int64)

	req := new(schemas.InitiateChatSchema)
	if err := c.BodyParser(req); err != nil {
		return s.handleBadJsonError(c)
	}
	if err := global.Validator.Struct(req); err != nil {
		return s.handleValidatorError(c, err)
	}

	targetID := req.TargetID
	if req.TargetUsername != "" {
		target, ok := s.store.userByName(req.TargetUsername)
		if !ok {
			return s.handleNotFoundError(c, "User")
		}
		targetID = target.ID
	}

	res, err := s.store.initiate(userID, targetID)
	if err == errUserNotFound {
		return s.handleNotFoundError(c, "User")
	}
	if err != nil {
		return s.handleInternalError(c, "initiate_chat", err)
	}
	return c.JSON(res)
}
