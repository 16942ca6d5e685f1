package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/api/internal/domain/entities"
	"github.com/taskforge/api/internal/infrastructure/logger"
	"github.com/taskforge/api/internal/pagination"
	"github.com/taskforge/api/internal/ports"
	"github.com/taskforge/api/internal/search"
)

func newTaskService(repo *mockTaskRepo) *TaskService {
	return NewTaskService(repo, logger.NewNop())
}

func TestCreateTaskDefaults(t *testing.T) {
	repo := &mockTaskRepo{
		CreateFunc: func(ctx context.Context, task *entities.Task) (*entities.Task, error) {
			assert.Equal(t, entities.TaskStatusTodo, task.Status)
			assert.Equal(t, entities.TaskPriorityMedium, task.Priority)
			assert.Equal(t, int64(1), task.OwnerID)
			created := *task
			created.ID = 10
			return &created, nil
		},
	}

	svc := newTaskService(repo)

	task, err := svc.CreateTask(context.Background(), 1, ports.CreateTaskRequest{Title: "Write report"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), task.ID)
}

func TestCreateTaskInvalidStatus(t *testing.T) {
	bad := entities.TaskStatus("archived")
	svc := newTaskService(&mockTaskRepo{})

	_, err := svc.CreateTask(context.Background(), 1, ports.CreateTaskRequest{Title: "x", Status: &bad})
	assert.ErrorIs(t, err, entities.ErrInvalidStatus)
}

func TestGetTaskOwnership(t *testing.T) {
	repo := &mockTaskRepo{
		GetByIDFunc: func(ctx context.Context, id int64) (*entities.Task, error) {
			return &entities.Task{ID: id, OwnerID: 2}, nil
		},
	}

	svc := newTaskService(repo)

	_, err := svc.GetTask(context.Background(), 1, 5)
	assert.ErrorIs(t, err, entities.ErrNotOwner)
}

func TestListTasksPagination(t *testing.T) {
	base := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	// Newest first, limit+1 rows back means a further page exists.
	rows := make([]entities.Task, 4)
	for i := range rows {
		rows[i] = entities.Task{
			ID:        int64(100 - i),
			OwnerID:   1,
			CreatedAt: base.Add(-time.Duration(i) * time.Hour),
		}
	}

	var gotCursor *pagination.Cursor
	var gotLimit int
	repo := &mockTaskRepo{
		ListPageFunc: func(ctx context.Context, ownerID int64, filter ports.TaskListFilter, cursor *pagination.Cursor, limit int) ([]entities.Task, error) {
			gotCursor = cursor
			gotLimit = limit
			return rows, nil
		},
	}

	svc := newTaskService(repo)

	resp, err := svc.ListTasks(context.Background(), 1, ports.ListTasksRequest{Limit: 3})
	require.NoError(t, err)

	assert.Nil(t, gotCursor)
	assert.Equal(t, 3, gotLimit)
	assert.Len(t, resp.Items, 3)
	assert.True(t, resp.HasNext)
	require.NotNil(t, resp.NextCursor)

	// The continuation token points at the last returned row.
	c := pagination.DecodeCursor(*resp.NextCursor)
	require.NotNil(t, c)
	assert.Equal(t, int64(98), c.ID)
	assert.True(t, c.CreatedAt.Equal(base.Add(-2*time.Hour)))
}

func TestListTasksIdenticalTimestamps(t *testing.T) {
	// Bulk-inserted rows share created_at; the walk must still visit each
	// row exactly once, relying on the id tie-break.
	createdAt := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	all := []entities.Task{
		{ID: 4, OwnerID: 1, CreatedAt: createdAt},
		{ID: 3, OwnerID: 1, CreatedAt: createdAt},
		{ID: 2, OwnerID: 1, CreatedAt: createdAt},
		{ID: 1, OwnerID: 1, CreatedAt: createdAt},
	}

	repo := &mockTaskRepo{
		ListPageFunc: func(ctx context.Context, ownerID int64, filter ports.TaskListFilter, cursor *pagination.Cursor, limit int) ([]entities.Task, error) {
			var rows []entities.Task
			for _, task := range all {
				if cursor != nil {
					after := task.CreatedAt.Before(cursor.CreatedAt) ||
						(task.CreatedAt.Equal(cursor.CreatedAt) && task.ID < cursor.ID)
					if !after {
						continue
					}
				}
				rows = append(rows, task)
				if len(rows) == limit+1 {
					break
				}
			}
			return rows, nil
		},
	}

	svc := newTaskService(repo)

	var seen []int64
	cursor := ""
	for {
		resp, err := svc.ListTasks(context.Background(), 1, ports.ListTasksRequest{Limit: 1, Cursor: cursor})
		require.NoError(t, err)
		for _, task := range resp.Items {
			seen = append(seen, task.ID)
		}
		if !resp.HasNext {
			break
		}
		require.NotNil(t, resp.NextCursor)
		cursor = *resp.NextCursor
	}

	assert.Equal(t, []int64{4, 3, 2, 1}, seen)
}

func TestListTasksBadCursorDegrades(t *testing.T) {
	var gotCursor *pagination.Cursor
	repo := &mockTaskRepo{
		ListPageFunc: func(ctx context.Context, ownerID int64, filter ports.TaskListFilter, cursor *pagination.Cursor, limit int) ([]entities.Task, error) {
			gotCursor = cursor
			return nil, nil
		},
	}

	svc := newTaskService(repo)

	resp, err := svc.ListTasks(context.Background(), 1, ports.ListTasksRequest{Cursor: "garbage!!"})
	require.NoError(t, err)
	assert.Nil(t, gotCursor)
	assert.NotNil(t, resp.Items)
	assert.Empty(t, resp.Items)
	assert.False(t, resp.HasNext)
}

func TestListTasksIncludeTotal(t *testing.T) {
	repo := &mockTaskRepo{
		ListPageFunc: func(ctx context.Context, ownerID int64, filter ports.TaskListFilter, cursor *pagination.Cursor, limit int) ([]entities.Task, error) {
			return nil, nil
		},
		CountFunc: func(ctx context.Context, ownerID int64, filter ports.TaskListFilter) (int, error) {
			return 37, nil
		},
	}

	svc := newTaskService(repo)

	resp, err := svc.ListTasks(context.Background(), 1, ports.ListTasksRequest{IncludeTotal: true})
	require.NoError(t, err)
	require.NotNil(t, resp.TotalCount)
	assert.Equal(t, 37, *resp.TotalCount)
}

func TestSearchTasksEmptyQueryRejected(t *testing.T) {
	svc := newTaskService(&mockTaskRepo{})

	for _, q := range []string{"", "   ", "!!! ???"} {
		_, err := svc.SearchTasks(context.Background(), 1, ports.SearchTasksRequest{Query: q})
		assert.ErrorIs(t, err, entities.ErrEmptySearchQuery, "query %q", q)
	}
}

func TestSearchTasks(t *testing.T) {
	repo := &mockTaskRepo{
		SearchFunc: func(ctx context.Context, query search.Query, limit int) ([]ports.RankedTask, error) {
			// The normalized query is the first bound argument.
			require.NotEmpty(t, query.Args)
			assert.Equal(t, "fix login bug", query.Args[0])
			return []ports.RankedTask{
				{Task: entities.Task{ID: 1, Title: "Fix login"}, Rank: 0.9},
				{Task: entities.Task{ID: 2, Title: "Login docs"}, Rank: 0.4},
			}, nil
		},
		CountSearchFunc: func(ctx context.Context, query search.Query) (int, error) {
			return 2, nil
		},
		SuggestionsFunc: func(ctx context.Context, ownerID int64, prefix string, limit int) ([]string, error) {
			return []string{"Fix login", "Fix login", "Login docs"}, nil
		},
	}

	svc := newTaskService(repo)

	resp, err := svc.SearchTasks(context.Background(), 1, ports.SearchTasksRequest{
		Query:              "  Fix (login) bug!  ",
		IncludeSuggestions: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Fix login bug", resp.Query)
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, 2, resp.TotalMatches)
	assert.False(t, resp.HasMore)
	assert.Equal(t, []string{"Fix login", "Login docs"}, resp.Suggestions)
	assert.GreaterOrEqual(t, resp.SearchTimeMs, 0.0)
}

func TestSearchTasksHasMore(t *testing.T) {
	repo := &mockTaskRepo{
		SearchFunc: func(ctx context.Context, query search.Query, limit int) ([]ports.RankedTask, error) {
			ranked := make([]ports.RankedTask, limit+1)
			for i := range ranked {
				ranked[i] = ports.RankedTask{Task: entities.Task{ID: int64(i + 1)}}
			}
			return ranked, nil
		},
		CountSearchFunc: func(ctx context.Context, query search.Query) (int, error) {
			return 50, nil
		},
	}

	svc := newTaskService(repo)

	resp, err := svc.SearchTasks(context.Background(), 1, ports.SearchTasksRequest{Query: "deploy", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, resp.Items, 10)
	assert.True(t, resp.HasMore)
	assert.Equal(t, 50, resp.TotalMatches)
}

func TestSearchTasksStoreFailureMasked(t *testing.T) {
	repo := &mockTaskRepo{
		SearchFunc: func(ctx context.Context, query search.Query, limit int) ([]ports.RankedTask, error) {
			return nil, errors.New("pq: relation does not exist")
		},
	}

	svc := newTaskService(repo)

	_, err := svc.SearchTasks(context.Background(), 1, ports.SearchTasksRequest{Query: "deploy"})
	assert.ErrorIs(t, err, entities.ErrSearchFailed)
	assert.NotContains(t, err.Error(), "pq:")
}

func TestSearchTasksShortQuerySkipsSuggestions(t *testing.T) {
	repo := &mockTaskRepo{
		SearchFunc: func(ctx context.Context, query search.Query, limit int) ([]ports.RankedTask, error) {
			return nil, nil
		},
		CountSearchFunc: func(ctx context.Context, query search.Query) (int, error) {
			return 0, nil
		},
		SuggestionsFunc: func(ctx context.Context, ownerID int64, prefix string, limit int) ([]string, error) {
			t.Fatal("suggestions must not be queried for a single-character query")
			return nil, nil
		},
	}

	svc := newTaskService(repo)

	// "é" is one character in two bytes; the threshold counts characters.
	for _, q := range []string{"a", "é"} {
		resp, err := svc.SearchTasks(context.Background(), 1, ports.SearchTasksRequest{
			Query:              q,
			IncludeSuggestions: true,
		})
		require.NoError(t, err, "query %q", q)

		// Requested but below the threshold: an empty list, not null.
		require.NotNil(t, resp.Suggestions, "query %q", q)
		assert.Empty(t, resp.Suggestions, "query %q", q)
	}
}

func TestSearchTasksSuggestionsDisabledStayNull(t *testing.T) {
	repo := &mockTaskRepo{
		SearchFunc: func(ctx context.Context, query search.Query, limit int) ([]ports.RankedTask, error) {
			return nil, nil
		},
		CountSearchFunc: func(ctx context.Context, query search.Query) (int, error) {
			return 0, nil
		},
	}

	svc := newTaskService(repo)

	resp, err := svc.SearchTasks(context.Background(), 1, ports.SearchTasksRequest{Query: "deploy"})
	require.NoError(t, err)
	assert.Nil(t, resp.Suggestions)
}

func TestSearchTasksSuggestionsEnabledNoMatches(t *testing.T) {
	repo := &mockTaskRepo{
		SearchFunc: func(ctx context.Context, query search.Query, limit int) ([]ports.RankedTask, error) {
			return nil, nil
		},
		CountSearchFunc: func(ctx context.Context, query search.Query) (int, error) {
			return 0, nil
		},
		SuggestionsFunc: func(ctx context.Context, ownerID int64, prefix string, limit int) ([]string, error) {
			return nil, nil
		},
	}

	svc := newTaskService(repo)

	resp, err := svc.SearchTasks(context.Background(), 1, ports.SearchTasksRequest{
		Query:              "deploy",
		IncludeSuggestions: true,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Suggestions)
	assert.Empty(t, resp.Suggestions)
}

func TestDeleteTaskSoftArchives(t *testing.T) {
	archived := false
	repo := &mockTaskRepo{
		GetByIDFunc: func(ctx context.Context, id int64) (*entities.Task, error) {
			return &entities.Task{ID: id, OwnerID: 1}, nil
		},
		SetArchivedFunc: func(ctx context.Context, id int64, flag bool) (*entities.Task, error) {
			archived = flag
			return &entities.Task{ID: id, OwnerID: 1, IsArchived: flag}, nil
		},
	}

	svc := newTaskService(repo)

	require.NoError(t, svc.DeleteTask(context.Background(), 1, 5, false))
	assert.True(t, archived)
}

func TestDeleteTaskHard(t *testing.T) {
	deleted := false
	repo := &mockTaskRepo{
		GetByIDFunc: func(ctx context.Context, id int64) (*entities.Task, error) {
			return &entities.Task{ID: id, OwnerID: 1}, nil
		},
		DeleteFunc: func(ctx context.Context, id int64) error {
			deleted = true
			return nil
		},
	}

	svc := newTaskService(repo)

	require.NoError(t, svc.DeleteTask(context.Background(), 1, 5, true))
	assert.True(t, deleted)
}
