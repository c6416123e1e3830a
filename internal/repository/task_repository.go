package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"taskboard/internal/model"
)

// ErrNotFound is returned when a record does not exist or is not owned by
// the requesting user. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("not found")

// Ordering selects how a task listing is sorted.
type Ordering int

const (
	// OrderDashboard is the listing order for dashboards and API lists:
	// pinned first, then nearest due date (dateless tasks last), then title.
	OrderDashboard Ordering = iota
	// OrderDefault is the store's default ordering, which additionally
	// weighs status and priority before recency.
	OrderDefault
)

// TaskRepository handles CRUD for tasks. Every query is scoped to a user id,
// which is the only access-control boundary the store enforces.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

// Delete removes a task for the given user. Deletion is immediate; there is
// no soft delete.
func (r *TaskRepository) Delete(ctx context.Context, userID, taskID uint) error {
	result := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).
		Delete(&model.Task{})
	if err := result.Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the user's tasks, optionally restricted to one status
// (empty status means all) and to a case-insensitive substring match on
// title or description.
func (r *TaskRepository) List(ctx context.Context, userID uint, status model.Status, search string, order Ordering) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	switch order {
	case OrderDefault:
		q = q.Order("is_pinned DESC, status ASC, due_date ASC NULLS LAST, priority ASC, created_at DESC")
	default:
		q = q.Order("is_pinned DESC, due_date ASC NULLS LAST, title ASC")
	}

	var tasks []model.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) CountAll(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ?", userID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func (r *TaskRepository) CountByStatus(ctx context.Context, userID uint, status model.Status) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ? AND status = ?", userID, status).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count tasks by status: %w", err)
	}
	return n, nil
}

// CountOverdue counts tasks whose due date is strictly before today and that
// are not completed.
func (r *TaskRepository) CountOverdue(ctx context.Context, userID uint, today time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ? AND due_date IS NOT NULL AND due_date < ? AND status <> ?",
			userID, model.DateOnly(today), model.StatusCompleted).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count overdue tasks: %w", err)
	}
	return n, nil
}

// Upcoming returns at most limit tasks due today or later, nearest first.
// Ties on the due date break by id so the result is deterministic.
func (r *TaskRepository) Upcoming(ctx context.Context, userID uint, today time.Time, limit int) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND due_date IS NOT NULL AND due_date >= ?", userID, model.DateOnly(today)).
		Order("due_date ASC, id ASC").
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list upcoming tasks: %w", err)
	}
	return tasks, nil
}
