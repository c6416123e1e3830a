// Package web exposes the task board over HTTP: server-rendered pages for
// browsers and a JSON API under /api/v1.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"taskboard/internal/repository"
	"taskboard/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server wires services into HTTP routes.
type Server struct {
	app   *fiber.App
	auth  *service.AuthService
	tasks *service.TaskService
	users *repository.UserRepository
	tmpl  *template.Template
	addr  string
}

func New(addr string, auth *service.AuthService, tasks *service.TaskService, users *repository.UserRepository) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		auth:  auth,
		tasks: tasks,
		users: users,
		tmpl:  tmpl,
		addr:  addr,
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	s.app.Use(recover.New())
	s.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	s.setupRoutes()
	return s, nil
}

// Listen serves HTTP until Shutdown is called.
func (s *Server) Listen() error {
	log.Printf("[info] http server listening on %s", s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) setupRoutes() {
	// Server-rendered pages; session cookie auth.
	s.app.Get("/signup", s.signupPage)
	s.app.Post("/signup", s.signupSubmit)
	s.app.Get("/login", s.loginPage)
	s.app.Post("/login", s.loginSubmit)
	s.app.Post("/logout", s.logout)

	pages := s.app.Group("", s.requireSession)
	pages.Get("/", s.dashboard)
	pages.Get("/tasks/new", s.taskCreatePage)
	pages.Post("/tasks/new", s.taskCreateSubmit)
	pages.Get("/tasks/:id/edit", s.taskEditPage)
	pages.Post("/tasks/:id/edit", s.taskEditSubmit)
	pages.Get("/tasks/:id/delete", s.taskDeletePage)
	pages.Post("/tasks/:id/delete", s.taskDeleteSubmit)
	pages.Post("/tasks/:id/pin", s.taskTogglePin)
	pages.Post("/tasks/:id/status", s.taskUpdateStatus)

	// JSON API; bearer token auth.
	v1 := s.app.Group("/api/v1")
	v1.Post("/auth/register", s.apiRegister)
	v1.Post("/auth/login", s.apiLogin)
	v1.Post("/auth/refresh", s.apiRefresh)

	protected := v1.Group("", s.requireToken)
	protected.Get("/tasks", s.apiListTasks)
	protected.Post("/tasks", s.apiCreateTask)
	protected.Get("/tasks/:id", s.apiGetTask)
	protected.Put("/tasks/:id", s.apiUpdateTask)
	protected.Delete("/tasks/:id", s.apiDeleteTask)
	protected.Post("/tasks/:id/pin", s.apiTogglePin)
	protected.Post("/tasks/:id/status", s.apiChangeStatus)
	protected.Get("/summary", s.apiSummary)
	protected.Put("/profile", s.apiUpdateProfile)
}

// errorHandler keeps API responses JSON and page responses HTML.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}
	if bytes.HasPrefix(c.Request().URI().Path(), []byte("/api/")) {
		return c.Status(code).JSON(errorResponse{Error: "server_error", Message: message})
	}
	return c.Status(code).SendString(message)
}

// render executes a page template into a buffer first so a template error
// never leaks a half-written page.
func (s *Server) render(c *fiber.Ctx, name string, data any) error {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("render %s: %v", name, err)
		return fiber.ErrInternalServerError
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}
