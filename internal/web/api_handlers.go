package web

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"taskboard/internal/repository"
	"taskboard/internal/service"
)

func (s *Server) apiRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	user, err := s.auth.Register(c.UserContext(), req.Username, req.Email, req.Password)
	if err != nil {
		return s.apiError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}

func (s *Server) apiLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	user, err := s.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return s.apiError(c, err)
	}
	pair, err := s.auth.IssueTokens(user, time.Now())
	if err != nil {
		return s.apiError(c, err)
	}
	return c.JSON(pair)
}

func (s *Server) apiRefresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return badRequest(c, "Refresh token is required")
	}
	pair, err := s.auth.Refresh(c.UserContext(), req.RefreshToken, time.Now())
	if err != nil {
		return s.apiError(c, err)
	}
	return c.JSON(pair)
}

func (s *Server) apiListTasks(c *fiber.Ctx) error {
	tasks, err := s.tasks.List(c.UserContext(), currentUserID(c), c.Query("status"), c.Query("q"))
	if err != nil {
		return s.apiError(c, err)
	}
	return c.JSON(toTaskResponses(tasks, time.Now()))
}

func (s *Server) apiCreateTask(c *fiber.Ctx) error {
	input, err := s.taskInputFromBody(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	task, err := s.tasks.Create(c.UserContext(), currentUserID(c), input)
	if err != nil {
		return s.apiError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTaskResponse(task, time.Now()))
}

func (s *Server) apiGetTask(c *fiber.Ctx) error {
	taskID, ok := taskIDParam(c)
	if !ok {
		return notFound(c)
	}
	task, err := s.tasks.Get(c.UserContext(), currentUserID(c), taskID)
	if err != nil {
		return s.apiError(c, err)
	}
	return c.JSON(toTaskResponse(task, time.Now()))
}

func (s *Server) apiUpdateTask(c *fiber.Ctx) error {
	taskID, ok := taskIDParam(c)
	if !ok {
		return notFound(c)
	}
	input, err := s.taskInputFromBody(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	task, err := s.tasks.Update(c.UserContext(), currentUserID(c), taskID, input)
	if err != nil {
		return s.apiError(c, err)
	}
	return c.JSON(toTaskResponse(task, time.Now()))
}

func (s *Server) apiDeleteTask(c *fiber.Ctx) error {
	taskID, ok := taskIDParam(c)
	if !ok {
		return notFound(c)
	}
	if err := s.tasks.Delete(c.UserContext(), currentUserID(c), taskID); err != nil {
		return s.apiError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) apiTogglePin(c *fiber.Ctx) error {
	taskID, ok := taskIDParam(c)
	if !ok {
		return notFound(c)
	}
	task, err := s.tasks.TogglePin(c.UserContext(), currentUserID(c), taskID)
	if err != nil {
		return s.apiError(c, err)
	}
	return c.JSON(toTaskResponse(task, time.Now()))
}

func (s *Server) apiChangeStatus(c *fiber.Ctx) error {
	taskID, ok := taskIDParam(c)
	if !ok {
		return notFound(c)
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	task, err := s.tasks.ChangeStatus(c.UserContext(), currentUserID(c), taskID, req.Status)
	if err != nil {
		return s.apiError(c, err)
	}
	return c.JSON(toTaskResponse(task, time.Now()))
}

func (s *Server) apiSummary(c *fiber.Ctx) error {
	now := time.Now()
	summary, err := s.tasks.Summarize(c.UserContext(), currentUserID(c), now)
	if err != nil {
		return s.apiError(c, err)
	}
	return c.JSON(toSummaryResponse(summary, now))
}

func (s *Server) apiUpdateProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := s.users.SetTelegramChatID(c.UserContext(), currentUserID(c), req.TelegramChatID); err != nil {
		return s.apiError(c, err)
	}
	return c.JSON(fiber.Map{"telegram_chat_id": req.TelegramChatID})
}

// taskInputFromBody parses and type-checks an API task payload. Range errors
// on progress are not rejected here; the save path clamps them.
func (s *Server) taskInputFromBody(c *fiber.Ctx) (service.TaskInput, error) {
	var req taskRequest
	if err := c.BodyParser(&req); err != nil {
		return service.TaskInput{}, errors.New("invalid request body")
	}
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return service.TaskInput{}, err
	}
	return service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      statusOrDefault(req.Status),
		Priority:    priorityOrDefault(req.Priority),
		Progress:    req.Progress,
		DueDate:     dueDate,
		IsPinned:    req.IsPinned,
	}, nil
}

// apiError maps service and repository errors onto HTTP responses.
func (s *Server) apiError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFound(c)
	case errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidPriority),
		errors.Is(err, service.ErrUsernameRequired),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrPasswordTooLong):
		return badRequest(c, capitalizeError(err))
	case errors.Is(err, service.ErrUsernameTaken):
		return c.Status(fiber.StatusConflict).JSON(errorResponse{
			Error:   "conflict",
			Message: "Username is already taken",
		})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{
			Error:   "unauthorized",
			Message: capitalizeError(err),
		})
	default:
		log.Printf("[api] internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

// notFound is the uniform answer for missing and foreign-owned tasks alike.
func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(errorResponse{
		Error:   "not_found",
		Message: "Task not found",
	})
}

func taskIDParam(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func parseDueDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("due_date must be in YYYY-MM-DD format")
	}
	return &parsed, nil
}

func capitalizeError(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
