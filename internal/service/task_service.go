package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

var (
	ErrTitleRequired   = errors.New("title is required")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidPriority = errors.New("invalid priority")
)

// TaskInput carries caller-supplied field values for a create or edit.
// Progress values outside [0,100] are clamped on save, not rejected.
type TaskInput struct {
	Title       string
	Description string
	Status      model.Status
	Priority    model.Priority
	Progress    int
	DueDate     *time.Time
	IsPinned    bool
}

// Summary aggregates a user's full task set, independent of any filter.
type Summary struct {
	Total           int
	Completed       int
	InProgress      int
	Blocked         int
	Overdue         int
	OverallProgress int
	Upcoming        []model.Task
}

// TaskService wraps task business logic. Every method takes the owner's user
// id explicitly; a task another user owns behaves exactly like a missing one.
type TaskService struct {
	taskRepo *repository.TaskRepository
}

func NewTaskService(taskRepo *repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

func (s *TaskService) Create(ctx context.Context, userID uint, input TaskInput) (*model.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if input.Status == "" {
		input.Status = model.StatusNotStarted
	}
	if input.Priority == "" {
		input.Priority = model.PriorityMedium
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	task := model.Task{
		UserID:      userID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		Progress:    input.Progress,
		DueDate:     input.DueDate,
		IsPinned:    input.IsPinned,
	}
	task.Normalize()

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) Get(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	return s.taskRepo.FindByID(ctx, userID, taskID)
}

// Update applies the input to an existing task and re-runs normalization.
// Fields are last-write-wins; there is no optimistic concurrency token.
func (s *TaskService) Update(ctx context.Context, userID, taskID uint, input TaskInput) (*model.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	task, err := s.taskRepo.FindByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	task.Title = strings.TrimSpace(input.Title)
	task.Description = input.Description
	task.Status = input.Status
	task.Priority = input.Priority
	task.Progress = input.Progress
	task.DueDate = input.DueDate
	task.IsPinned = input.IsPinned
	task.Normalize()

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID uint) error {
	return s.taskRepo.Delete(ctx, userID, taskID)
}

// TogglePin flips is_pinned and nothing else.
func (s *TaskService) TogglePin(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	task.IsPinned = !task.IsPinned
	task.Normalize()
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ChangeStatus validates the target status before touching the record;
// unknown values fail without mutating state.
func (s *TaskService) ChangeStatus(ctx context.Context, userID, taskID uint, status string) (*model.Task, error) {
	target := model.Status(status)
	if !target.Valid() {
		return nil, ErrInvalidStatus
	}

	task, err := s.taskRepo.FindByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	task.Status = target
	task.Normalize()
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// List returns the user's tasks in dashboard order. An unknown status filter
// value falls back to "all" rather than erroring, and the search text matches
// title or description case-insensitively.
func (s *TaskService) List(ctx context.Context, userID uint, statusFilter, search string) ([]model.Task, error) {
	status := model.Status(statusFilter)
	if !status.Valid() {
		status = ""
	}
	return s.taskRepo.List(ctx, userID, status, strings.TrimSpace(search), repository.OrderDashboard)
}

// Summarize computes dashboard statistics over all of the user's tasks.
func (s *TaskService) Summarize(ctx context.Context, userID uint, now time.Time) (*Summary, error) {
	total, err := s.taskRepo.CountAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	completed, err := s.taskRepo.CountByStatus(ctx, userID, model.StatusCompleted)
	if err != nil {
		return nil, err
	}
	inProgress, err := s.taskRepo.CountByStatus(ctx, userID, model.StatusInProgress)
	if err != nil {
		return nil, err
	}
	blocked, err := s.taskRepo.CountByStatus(ctx, userID, model.StatusBlocked)
	if err != nil {
		return nil, err
	}
	overdue, err := s.taskRepo.CountOverdue(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.taskRepo.Upcoming(ctx, userID, now, 3)
	if err != nil {
		return nil, err
	}

	overall := 0
	if total > 0 {
		overall = int(math.Round(float64(completed) / float64(total) * 100))
	}

	return &Summary{
		Total:           int(total),
		Completed:       int(completed),
		InProgress:      int(inProgress),
		Blocked:         int(blocked),
		Overdue:         int(overdue),
		OverallProgress: overall,
		Upcoming:        upcoming,
	}, nil
}
