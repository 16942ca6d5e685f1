package services

import (
	"context"
	"time"

	"github.com/taskforge/api/internal/domain/entities"
	"github.com/taskforge/api/internal/pagination"
	"github.com/taskforge/api/internal/ports"
	"github.com/taskforge/api/internal/search"
)

// mockTaskRepo is a function-field mock of ports.TaskRepository. Tests set
// only the fields they exercise.
type mockTaskRepo struct {
	CreateFunc      func(ctx context.Context, task *entities.Task) (*entities.Task, error)
	GetByIDFunc     func(ctx context.Context, id int64) (*entities.Task, error)
	UpdateFunc      func(ctx context.Context, task *entities.Task) (*entities.Task, error)
	DeleteFunc      func(ctx context.Context, id int64) error
	SetArchivedFunc func(ctx context.Context, id int64, archived bool) (*entities.Task, error)
	ListPageFunc    func(ctx context.Context, ownerID int64, filter ports.TaskListFilter, cursor *pagination.Cursor, limit int) ([]entities.Task, error)
	CountFunc       func(ctx context.Context, ownerID int64, filter ports.TaskListFilter) (int, error)
	SearchFunc      func(ctx context.Context, query search.Query, limit int) ([]ports.RankedTask, error)
	CountSearchFunc func(ctx context.Context, query search.Query) (int, error)
	SuggestionsFunc func(ctx context.Context, ownerID int64, prefix string, limit int) ([]string, error)
}

var _ ports.TaskRepository = (*mockTaskRepo)(nil)

func (m *mockTaskRepo) Create(ctx context.Context, task *entities.Task) (*entities.Task, error) {
	return m.CreateFunc(ctx, task)
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id int64) (*entities.Task, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockTaskRepo) Update(ctx context.Context, task *entities.Task) (*entities.Task, error) {
	return m.UpdateFunc(ctx, task)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id int64) error {
	return m.DeleteFunc(ctx, id)
}

func (m *mockTaskRepo) SetArchived(ctx context.Context, id int64, archived bool) (*entities.Task, error) {
	return m.SetArchivedFunc(ctx, id, archived)
}

func (m *mockTaskRepo) ListPage(ctx context.Context, ownerID int64, filter ports.TaskListFilter, cursor *pagination.Cursor, limit int) ([]entities.Task, error) {
	return m.ListPageFunc(ctx, ownerID, filter, cursor, limit)
}

func (m *mockTaskRepo) Count(ctx context.Context, ownerID int64, filter ports.TaskListFilter) (int, error) {
	return m.CountFunc(ctx, ownerID, filter)
}

func (m *mockTaskRepo) Search(ctx context.Context, query search.Query, limit int) ([]ports.RankedTask, error) {
	return m.SearchFunc(ctx, query, limit)
}

func (m *mockTaskRepo) CountSearch(ctx context.Context, query search.Query) (int, error) {
	return m.CountSearchFunc(ctx, query)
}

func (m *mockTaskRepo) Suggestions(ctx context.Context, ownerID int64, prefix string, limit int) ([]string, error) {
	return m.SuggestionsFunc(ctx, ownerID, prefix, limit)
}

// mockTimeRepo is a function-field mock of ports.TimeEntryRepository.
type mockTimeRepo struct {
	CreateActiveFunc   func(ctx context.Context, entry *entities.TimeEntry) (*entities.TimeEntry, error)
	GetByIDFunc        func(ctx context.Context, id int64) (*entities.TimeEntry, error)
	GetActiveEntryFunc func(ctx context.Context, ownerID int64) (*entities.TimeEntry, error)
	ListFunc           func(ctx context.Context, ownerID int64, filter ports.TimeEntryFilter) ([]entities.TimeEntry, error)
	UpdateFunc         func(ctx context.Context, entry *entities.TimeEntry) (*entities.TimeEntry, error)
	CompleteFunc       func(ctx context.Context, entry *entities.TimeEntry) (*entities.TimeEntry, error)
	RemoveFunc         func(ctx context.Context, entry *entities.TimeEntry) error
	SummaryFunc        func(ctx context.Context, ownerID int64, from, to time.Time) (*ports.TimeSummary, error)
}

var _ ports.TimeEntryRepository = (*mockTimeRepo)(nil)

func (m *mockTimeRepo) CreateActive(ctx context.Context, entry *entities.TimeEntry) (*entities.TimeEntry, error) {
	return m.CreateActiveFunc(ctx, entry)
}

func (m *mockTimeRepo) GetByID(ctx context.Context, id int64) (*entities.TimeEntry, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockTimeRepo) GetActiveEntry(ctx context.Context, ownerID int64) (*entities.TimeEntry, error) {
	return m.GetActiveEntryFunc(ctx, ownerID)
}

func (m *mockTimeRepo) List(ctx context.Context, ownerID int64, filter ports.TimeEntryFilter) ([]entities.TimeEntry, error) {
	return m.ListFunc(ctx, ownerID, filter)
}

func (m *mockTimeRepo) Update(ctx context.Context, entry *entities.TimeEntry) (*entities.TimeEntry, error) {
	return m.UpdateFunc(ctx, entry)
}

func (m *mockTimeRepo) Complete(ctx context.Context, entry *entities.TimeEntry) (*entities.TimeEntry, error) {
	return m.CompleteFunc(ctx, entry)
}

func (m *mockTimeRepo) Remove(ctx context.Context, entry *entities.TimeEntry) error {
	return m.RemoveFunc(ctx, entry)
}

func (m *mockTimeRepo) Summary(ctx context.Context, ownerID int64, from, to time.Time) (*ports.TimeSummary, error) {
	return m.SummaryFunc(ctx, ownerID, from, to)
}
