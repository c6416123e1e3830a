package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskboard/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	// A pooled second connection would see a different empty :memory: db.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.User{}, &model.Session{}, &model.Task{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func date(y int, m time.Month, d int) *time.Time {
	dt := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &dt
}

func mustCreate(t *testing.T, repo *TaskRepository, task *model.Task) *model.Task {
	t.Helper()
	if err := repo.Create(context.Background(), task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func TestTaskRepositoryOwnershipScoping(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))
	ctx := context.Background()

	mine := mustCreate(t, repo, &model.Task{UserID: 1, Title: "Mine", Status: model.StatusNotStarted, Priority: model.PriorityMedium})
	theirs := mustCreate(t, repo, &model.Task{UserID: 2, Title: "Theirs", Status: model.StatusNotStarted, Priority: model.PriorityMedium})

	if _, err := repo.FindByID(ctx, 1, mine.ID); err != nil {
		t.Fatalf("owner lookup: %v", err)
	}

	// A foreign task and a missing task are the same error.
	if _, err := repo.FindByID(ctx, 1, theirs.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign lookup: got %v, want ErrNotFound", err)
	}
	if _, err := repo.FindByID(ctx, 1, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing lookup: got %v, want ErrNotFound", err)
	}

	if err := repo.Delete(ctx, 1, theirs.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign delete: got %v, want ErrNotFound", err)
	}
	if got, _ := repo.FindByID(ctx, 2, theirs.ID); got == nil {
		t.Fatal("foreign delete removed the other user's task")
	}

	if err := repo.Delete(ctx, 1, mine.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := repo.Delete(ctx, 1, mine.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestTaskRepositoryListFilterAndSearch(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))
	ctx := context.Background()

	mustCreate(t, repo, &model.Task{UserID: 1, Title: "Write report", Description: "quarterly numbers", Status: model.StatusInProgress, Priority: model.PriorityMedium})
	mustCreate(t, repo, &model.Task{UserID: 1, Title: "Ship release", Description: "", Status: model.StatusCompleted, Priority: model.PriorityHigh})
	mustCreate(t, repo, &model.Task{UserID: 1, Title: "Plan offsite", Description: "book venue and REPORT costs", Status: model.StatusNotStarted, Priority: model.PriorityLow})
	mustCreate(t, repo, &model.Task{UserID: 2, Title: "Write report", Status: model.StatusInProgress, Priority: model.PriorityMedium})

	all, err := repo.List(ctx, 1, "", "", OrderDashboard)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("list all: got %d tasks, want 3", len(all))
	}

	inProgress, err := repo.List(ctx, 1, model.StatusInProgress, "", OrderDashboard)
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(inProgress) != 1 || inProgress[0].Title != "Write report" {
		t.Fatalf("list by status: got %+v", inProgress)
	}

	// Search matches title or description, case-insensitively.
	found, err := repo.List(ctx, 1, "", "report", OrderDashboard)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("search: got %d tasks, want 2", len(found))
	}

	none, err := repo.List(ctx, 1, "", "no such text", OrderDashboard)
	if err != nil {
		t.Fatalf("search miss: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("search miss: got %d tasks, want 0", len(none))
	}
}

func TestTaskRepositoryDashboardOrdering(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))
	ctx := context.Background()

	mustCreate(t, repo, &model.Task{UserID: 1, Title: "Beta", Status: model.StatusNotStarted, Priority: model.PriorityMedium, DueDate: date(2026, 4, 2)})
	mustCreate(t, repo, &model.Task{UserID: 1, Title: "Alpha", Status: model.StatusNotStarted, Priority: model.PriorityMedium, DueDate: date(2026, 4, 2)})
	mustCreate(t, repo, &model.Task{UserID: 1, Title: "No date", Status: model.StatusNotStarted, Priority: model.PriorityMedium})
	mustCreate(t, repo, &model.Task{UserID: 1, Title: "Pinned late", Status: model.StatusNotStarted, Priority: model.PriorityMedium, DueDate: date(2026, 5, 1), IsPinned: true})
	mustCreate(t, repo, &model.Task{UserID: 1, Title: "Soonest", Status: model.StatusNotStarted, Priority: model.PriorityMedium, DueDate: date(2026, 4, 1)})

	tasks, err := repo.List(ctx, 1, "", "", OrderDashboard)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	want := []string{"Pinned late", "Soonest", "Alpha", "Beta", "No date"}
	if len(tasks) != len(want) {
		t.Fatalf("got %d tasks, want %d", len(tasks), len(want))
	}
	for i, title := range want {
		if tasks[i].Title != title {
			t.Errorf("position %d: got %q, want %q", i, tasks[i].Title, title)
		}
	}
}

func TestTaskRepositoryDefaultOrdering(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))
	ctx := context.Background()

	// Statuses and priorities sort by their stored text values.
	mustCreate(t, repo, &model.Task{UserID: 1, Title: "Not started", Status: model.StatusNotStarted, Priority: model.PriorityMedium})
	mustCreate(t, repo, &model.Task{UserID: 1, Title: "Blocked", Status: model.StatusBlocked, Priority: model.PriorityMedium})
	mustCreate(t, repo, &model.Task{UserID: 1, Title: "Completed", Status: model.StatusCompleted, Priority: model.PriorityMedium})
	mustCreate(t, repo, &model.Task{UserID: 1, Title: "Pinned", Status: model.StatusNotStarted, Priority: model.PriorityMedium, IsPinned: true})

	tasks, err := repo.List(ctx, 1, "", "", OrderDefault)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	want := []string{"Pinned", "Blocked", "Completed", "Not started"}
	for i, title := range want {
		if tasks[i].Title != title {
			t.Errorf("position %d: got %q, want %q", i, tasks[i].Title, title)
		}
	}
}

func TestTaskRepositoryCounts(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))
	ctx := context.Background()
	today := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

	mustCreate(t, repo, &model.Task{UserID: 1, Title: "Done late", Status: model.StatusCompleted, Priority: model.PriorityMedium, Progress: 100, DueDate: date(2026, 4, 1)})
	mustCreate(t, repo, &model.Task{UserID: 1, Title: "Late", Status: model.StatusInProgress, Priority: model.PriorityMedium, DueDate: date(2026, 4, 1)})
	mustCreate(t, repo, &model.Task{UserID: 1, Title: "Due today", Status: model.StatusInProgress, Priority: model.PriorityMedium, DueDate: date(2026, 4, 10)})
	mustCreate(t, repo, &model.Task{UserID: 1, Title: "No date", Status: model.StatusBlocked, Priority: model.PriorityMedium})
	mustCreate(t, repo, &model.Task{UserID: 2, Title: "Other user late", Status: model.StatusInProgress, Priority: model.PriorityMedium, DueDate: date(2026, 4, 1)})

	if n, err := repo.CountAll(ctx, 1); err != nil || n != 4 {
		t.Fatalf("CountAll = %d, %v; want 4", n, err)
	}
	if n, err := repo.CountByStatus(ctx, 1, model.StatusCompleted); err != nil || n != 1 {
		t.Fatalf("CountByStatus(completed) = %d, %v; want 1", n, err)
	}
	// Only "Late": completed tasks and tasks due today are not overdue.
	if n, err := repo.CountOverdue(ctx, 1, today); err != nil || n != 1 {
		t.Fatalf("CountOverdue = %d, %v; want 1", n, err)
	}
}

func TestTaskRepositoryUpcoming(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))
	ctx := context.Background()
	today := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

	mustCreate(t, repo, &model.Task{UserID: 1, Title: "Yesterday", Status: model.StatusInProgress, Priority: model.PriorityMedium, DueDate: date(2026, 4, 9)})
	first := mustCreate(t, repo, &model.Task{UserID: 1, Title: "Today A", Status: model.StatusInProgress, Priority: model.PriorityMedium, DueDate: date(2026, 4, 10)})
	second := mustCreate(t, repo, &model.Task{UserID: 1, Title: "Today B", Status: model.StatusInProgress, Priority: model.PriorityMedium, DueDate: date(2026, 4, 10)})
	mustCreate(t, repo, &model.Task{UserID: 1, Title: "Next week", Status: model.StatusInProgress, Priority: model.PriorityMedium, DueDate: date(2026, 4, 17)})
	mustCreate(t, repo, &model.Task{UserID: 1, Title: "Next month", Status: model.StatusInProgress, Priority: model.PriorityMedium, DueDate: date(2026, 5, 10)})
	mustCreate(t, repo, &model.Task{UserID: 1, Title: "No date", Status: model.StatusInProgress, Priority: model.PriorityMedium})

	tasks, err := repo.Upcoming(ctx, 1, today, 3)
	if err != nil {
		t.Fatalf("upcoming: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("got %d tasks, want 3", len(tasks))
	}
	if tasks[0].ID != first.ID || tasks[1].ID != second.ID {
		t.Errorf("same-day ties should break by id: got %q then %q", tasks[0].Title, tasks[1].Title)
	}
	if tasks[2].Title != "Next week" {
		t.Errorf("third = %q, want %q", tasks[2].Title, "Next week")
	}
}
