package web

import (
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"taskboard/internal/model"
)

const (
	sessionCookie = "taskboard_session"
	flashCookie   = "taskboard_flash"

	userIDKey = "userID"
	userKey   = "user"
)

// requireToken guards API routes with a Bearer access token.
func (s *Server) requireToken(c *fiber.Ctx) error {
	header := c.Get("Authorization")
	if header == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{
			Error:   "unauthorized",
			Message: "Authorization header is required",
		})
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{
			Error:   "unauthorized",
			Message: "Invalid authorization header format. Use: Bearer <token>",
		})
	}
	token := strings.TrimPrefix(header, "Bearer ")

	userID, err := s.auth.ValidateAccessToken(token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{
			Error:   "unauthorized",
			Message: "Invalid or expired token",
		})
	}

	c.Locals(userIDKey, userID)
	return c.Next()
}

// requireSession guards the server-rendered pages; anonymous visitors land
// on the login page.
func (s *Server) requireSession(c *fiber.Ctx) error {
	token := c.Cookies(sessionCookie)
	if token == "" {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	user, err := s.auth.SessionUser(c.UserContext(), token, time.Now())
	if err != nil {
		c.ClearCookie(sessionCookie)
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	c.Locals(userKey, user)
	c.Locals(userIDKey, user.ID)
	return c.Next()
}

func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(userIDKey).(uint)
	return id
}

func currentUser(c *fiber.Ctx) *model.User {
	user, _ := c.Locals(userKey).(*model.User)
	return user
}

// setFlash stores a one-shot message shown on the next dashboard render.
// The value is escaped because cookie values cannot carry spaces.
func setFlash(c *fiber.Ctx, message string) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(message),
		Path:     "/",
		HTTPOnly: true,
	})
}

func takeFlash(c *fiber.Ctx) string {
	raw := c.Cookies(flashCookie)
	if raw == "" {
		return ""
	}
	c.ClearCookie(flashCookie)
	message, err := url.QueryUnescape(raw)
	if err != nil {
		return ""
	}
	return message
}
