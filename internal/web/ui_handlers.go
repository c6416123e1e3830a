package web

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/service"
)

// taskView is a template-friendly projection of a task.
type taskView struct {
	ID            uint
	Title         string
	Description   string
	Status        model.Status
	StatusLabel   string
	Priority      model.Priority
	PriorityLabel string
	Progress      int
	DueDate       string
	IsPinned      bool
	Overdue       bool
}

func toTaskView(task *model.Task, now time.Time) taskView {
	view := taskView{
		ID:            task.ID,
		Title:         task.Title,
		Description:   task.Description,
		Status:        task.Status,
		StatusLabel:   task.Status.Label(),
		Priority:      task.Priority,
		PriorityLabel: task.Priority.Label(),
		Progress:      task.Progress,
		IsPinned:      task.IsPinned,
		Overdue:       task.IsOverdue(now),
	}
	if task.DueDate != nil {
		view.DueDate = task.DueDate.Format("2006-01-02")
	}
	return view
}

func toTaskViews(tasks []model.Task, now time.Time) []taskView {
	views := make([]taskView, 0, len(tasks))
	for i := range tasks {
		views = append(views, toTaskView(&tasks[i], now))
	}
	return views
}

// taskFormData holds the raw form values so a failed submit re-renders what
// the user typed.
type taskFormData struct {
	Title       string
	Description string
	Status      string
	Priority    string
	Progress    string
	DueDate     string
	IsPinned    bool
}

func (s *Server) dashboard(c *fiber.Ctx) error {
	user := currentUser(c)
	statusFilter := c.Query("status", "all")
	searchQuery := c.Query("q")
	now := time.Now()

	tasks, err := s.tasks.List(c.UserContext(), user.ID, statusFilter, searchQuery)
	if err != nil {
		return err
	}
	summary, err := s.tasks.Summarize(c.UserContext(), user.ID, now)
	if err != nil {
		return err
	}

	if !model.Status(statusFilter).Valid() {
		statusFilter = "all"
	}

	return s.render(c, "dashboard.html", fiber.Map{
		"Username":     user.Username,
		"Tasks":        toTaskViews(tasks, now),
		"Summary":      summary,
		"Upcoming":     toTaskViews(summary.Upcoming, now),
		"StatusFilter": statusFilter,
		"SearchQuery":  searchQuery,
		"Statuses":     model.Statuses(),
		"Flash":        takeFlash(c),
	})
}

func (s *Server) signupPage(c *fiber.Ctx) error {
	return s.render(c, "signup.html", fiber.Map{})
}

func (s *Server) signupSubmit(c *fiber.Ctx) error {
	username := c.FormValue("username")
	email := c.FormValue("email")
	password := c.FormValue("password")
	confirm := c.FormValue("password_confirm")

	renderError := func(message string) error {
		return s.render(c, "signup.html", fiber.Map{
			"Error":    message,
			"Username": username,
			"Email":    email,
		})
	}

	if password != confirm {
		return renderError("Passwords do not match.")
	}

	user, err := s.auth.Register(c.UserContext(), username, email, password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameRequired),
			errors.Is(err, service.ErrUsernameTaken),
			errors.Is(err, service.ErrPasswordTooShort),
			errors.Is(err, service.ErrPasswordTooLong):
			return renderError(capitalizeError(err) + ".")
		default:
			return err
		}
	}

	if err := s.openSession(c, user); err != nil {
		return err
	}
	setFlash(c, "Welcome aboard! Your workspace is ready.")
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (s *Server) loginPage(c *fiber.Ctx) error {
	return s.render(c, "login.html", fiber.Map{})
}

func (s *Server) loginSubmit(c *fiber.Ctx) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	user, err := s.auth.Login(c.UserContext(), username, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return s.render(c, "login.html", fiber.Map{
				"Error":    "Invalid username or password.",
				"Username": username,
			})
		}
		return err
	}

	if err := s.openSession(c, user); err != nil {
		return err
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (s *Server) logout(c *fiber.Ctx) error {
	if token := c.Cookies(sessionCookie); token != "" {
		_ = s.auth.EndSession(c.UserContext(), token)
	}
	c.ClearCookie(sessionCookie)
	return c.Redirect("/login", fiber.StatusSeeOther)
}

func (s *Server) openSession(c *fiber.Ctx, user *model.User) error {
	session, err := s.auth.StartSession(c.UserContext(), user, time.Now())
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return nil
}

func (s *Server) taskCreatePage(c *fiber.Ctx) error {
	return s.renderTaskForm(c, "Create task", taskFormData{
		Status:   string(model.StatusNotStarted),
		Priority: string(model.PriorityMedium),
		Progress: "0",
	}, "", 0)
}

func (s *Server) taskCreateSubmit(c *fiber.Ctx) error {
	input, form, formErr := taskInputFromForm(c)
	if formErr != "" {
		return s.renderTaskForm(c, "Create task", form, formErr, 0)
	}
	if _, err := s.tasks.Create(c.UserContext(), currentUserID(c), input); err != nil {
		if message, ok := formMessage(err); ok {
			return s.renderTaskForm(c, "Create task", form, message, 0)
		}
		return err
	}
	setFlash(c, "Task created successfully.")
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (s *Server) taskEditPage(c *fiber.Ctx) error {
	taskID, ok := taskIDParam(c)
	if !ok {
		return fiber.ErrNotFound
	}
	task, err := s.tasks.Get(c.UserContext(), currentUserID(c), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fiber.ErrNotFound
		}
		return err
	}

	form := taskFormData{
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		Progress:    strconv.Itoa(task.Progress),
		IsPinned:    task.IsPinned,
	}
	if task.DueDate != nil {
		form.DueDate = task.DueDate.Format("2006-01-02")
	}
	return s.renderTaskForm(c, "Update task", form, "", task.ID)
}

func (s *Server) taskEditSubmit(c *fiber.Ctx) error {
	taskID, ok := taskIDParam(c)
	if !ok {
		return fiber.ErrNotFound
	}
	input, form, formErr := taskInputFromForm(c)
	if formErr != "" {
		return s.renderTaskForm(c, "Update task", form, formErr, taskID)
	}
	if _, err := s.tasks.Update(c.UserContext(), currentUserID(c), taskID, input); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fiber.ErrNotFound
		}
		if message, ok := formMessage(err); ok {
			return s.renderTaskForm(c, "Update task", form, message, taskID)
		}
		return err
	}
	setFlash(c, "Task updated successfully.")
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (s *Server) taskDeletePage(c *fiber.Ctx) error {
	taskID, ok := taskIDParam(c)
	if !ok {
		return fiber.ErrNotFound
	}
	task, err := s.tasks.Get(c.UserContext(), currentUserID(c), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fiber.ErrNotFound
		}
		return err
	}
	return s.render(c, "task_confirm_delete.html", fiber.Map{
		"Task": toTaskView(task, time.Now()),
	})
}

func (s *Server) taskDeleteSubmit(c *fiber.Ctx) error {
	taskID, ok := taskIDParam(c)
	if !ok {
		return fiber.ErrNotFound
	}
	if err := s.tasks.Delete(c.UserContext(), currentUserID(c), taskID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fiber.ErrNotFound
		}
		return err
	}
	setFlash(c, "Task removed.")
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (s *Server) taskTogglePin(c *fiber.Ctx) error {
	taskID, ok := taskIDParam(c)
	if !ok {
		return fiber.ErrNotFound
	}
	if _, err := s.tasks.TogglePin(c.UserContext(), currentUserID(c), taskID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fiber.ErrNotFound
		}
		return err
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (s *Server) taskUpdateStatus(c *fiber.Ctx) error {
	taskID, ok := taskIDParam(c)
	if !ok {
		return fiber.ErrNotFound
	}
	task, err := s.tasks.ChangeStatus(c.UserContext(), currentUserID(c), taskID, c.FormValue("status"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			setFlash(c, "Invalid status update.")
			return c.Redirect("/", fiber.StatusSeeOther)
		case errors.Is(err, repository.ErrNotFound):
			return fiber.ErrNotFound
		}
		return err
	}
	setFlash(c, fmt.Sprintf("Task marked as %s.", task.Status.Label()))
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (s *Server) renderTaskForm(c *fiber.Ctx, title string, form taskFormData, message string, taskID uint) error {
	return s.render(c, "task_form.html", fiber.Map{
		"Title":      title,
		"Form":       form,
		"Error":      message,
		"TaskID":     taskID,
		"Statuses":   model.Statuses(),
		"Priorities": model.Priorities(),
	})
}

// taskInputFromForm reads a submitted task form. The returned string is a
// user-facing message when a value cannot be parsed.
func taskInputFromForm(c *fiber.Ctx) (service.TaskInput, taskFormData, string) {
	form := taskFormData{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Status:      c.FormValue("status"),
		Priority:    c.FormValue("priority"),
		Progress:    c.FormValue("progress"),
		DueDate:     c.FormValue("due_date"),
		IsPinned:    c.FormValue("is_pinned") != "",
	}

	progress := 0
	if form.Progress != "" {
		parsed, err := strconv.Atoi(form.Progress)
		if err != nil {
			return service.TaskInput{}, form, "Progress must be a whole number."
		}
		progress = parsed
	}

	dueDate, err := parseDueDate(form.DueDate)
	if err != nil {
		return service.TaskInput{}, form, "Due date must be in YYYY-MM-DD format."
	}

	input := service.TaskInput{
		Title:       form.Title,
		Description: form.Description,
		Status:      statusOrDefault(form.Status),
		Priority:    priorityOrDefault(form.Priority),
		Progress:    progress,
		DueDate:     dueDate,
		IsPinned:    form.IsPinned,
	}
	return input, form, ""
}

// formMessage converts validation errors into form-level messages.
func formMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, service.ErrTitleRequired):
		return "Title is required.", true
	case errors.Is(err, service.ErrInvalidStatus):
		return "Choose a valid status.", true
	case errors.Is(err, service.ErrInvalidPriority):
		return "Choose a valid priority.", true
	}
	return "", false
}
