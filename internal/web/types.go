package web

import (
	"time"

	"taskboard/internal/model"
	"taskboard/internal/service"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type profileRequest struct {
	TelegramChatID int64 `json:"telegram_chat_id"`
}

// taskRequest is the API payload for create and full update.
type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Progress    int    `json:"progress"`
	DueDate     string `json:"due_date"` // YYYY-MM-DD, empty for none
	IsPinned    bool   `json:"is_pinned"`
}

type userResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type taskResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	Progress    int       `json:"progress"`
	DueDate     string    `json:"due_date,omitempty"`
	IsPinned    bool      `json:"is_pinned"`
	IsOverdue   bool      `json:"is_overdue"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type summaryResponse struct {
	Total           int            `json:"total"`
	Completed       int            `json:"completed"`
	InProgress      int            `json:"in_progress"`
	Blocked         int            `json:"blocked"`
	Overdue         int            `json:"overdue"`
	OverallProgress int            `json:"overall_progress"`
	Upcoming        []taskResponse `json:"upcoming"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusOrDefault lets API payloads omit the field; unknown non-empty values
// flow through so the service can reject them.
func statusOrDefault(raw string) model.Status {
	if raw == "" {
		return model.StatusNotStarted
	}
	return model.Status(raw)
}

func priorityOrDefault(raw string) model.Priority {
	if raw == "" {
		return model.PriorityMedium
	}
	return model.Priority(raw)
}

func toTaskResponse(task *model.Task, now time.Time) taskResponse {
	resp := taskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		Progress:    task.Progress,
		IsPinned:    task.IsPinned,
		IsOverdue:   task.IsOverdue(now),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if task.DueDate != nil {
		resp.DueDate = task.DueDate.Format("2006-01-02")
	}
	return resp
}

func toTaskResponses(tasks []model.Task, now time.Time) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTaskResponse(&tasks[i], now))
	}
	return out
}

func toSummaryResponse(summary *service.Summary, now time.Time) summaryResponse {
	return summaryResponse{
		Total:           summary.Total,
		Completed:       summary.Completed,
		InProgress:      summary.InProgress,
		Blocked:         summary.Blocked,
		Overdue:         summary.Overdue,
		OverallProgress: summary.OverallProgress,
		Upcoming:        toTaskResponses(summary.Upcoming, now),
	}
}
