// Package devserver is a local backend that speaks the chat client's wire
// contract: JSON over HTTP for queries and a WebSocket for message push.
// State lives in memory and is lost on restart.
package devserver

import (
	"net"
	"time"

	"shindensen_client/global"
	"shindensen_client/schemas"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

type Server struct {
	app    *fiber.App
	store  *memoryStore
	hub    *hub
	secret []byte
	ttl    time.Duration
	log    *zap.Logger
}

func New(secret []byte, ttl time.Duration, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		app: fiber.New(fiber.Config{
			JSONEncoder:           global.JSON.Marshal,
			JSONDecoder:           global.JSON.Unmarshal,
			DisableStartupMessage: true,
		}),
		store:  newMemoryStore(),
		hub:    newHub(),
		secret: secret,
		ttl:    ttl,
		log:    log,
	}
	s.setRoutes()
	return s
}

// setRoutes sets all routes of server
func (s *Server) setRoutes() {
	s.app.Use(recover.New())
	s.app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	s.app.Use("/ws", s.authenticateStream, websocket.New(s.stream))

	s.app.Post("/login", s.login)
	s.app.Get("/chats", s.authenticate, s.getChats)
	s.app.Get("/chats/:id/messages", s.authenticate, s.getHistory)
	s.app.Post("/chats/initiate", s.authenticate, s.initiateChat)
	s.app.Get("/users/:key", s.authenticate, s.getUser)
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.log.Info("dev backend listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Listener serves on an already bound listener.
func (s *Server) Listener(ln net.Listener) error {
	s.log.Info("dev backend listening", zap.String("addr", ln.Addr().String()))
	return s.app.Listener(ln)
}

func (s *Server) Shutdown() error {
	s.hub.closeAll()
	return s.app.Shutdown()
}

// SeedUser registers username ahead of its first login.
func (s *Server) SeedUser(username string) schemas.UserInfo {
	return s.store.login(username)
}
