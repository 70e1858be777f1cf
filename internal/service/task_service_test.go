package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meliosu/onyx-core-builders/internal/models"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
	"github.com/meliosu/onyx-core-builders/pkg/optional"
)

type taskRepoStub struct {
	task      *models.Task
	created   *models.Task
	completed map[int64]time.Time
}

func (s *taskRepoStub) List(ctx context.Context, filter models.TaskFilter, params models.ListParams) ([]models.TaskListItem, int, error) {
	return []models.TaskListItem{{ID: 1, Name: "Earthworks"}}, 31, nil
}

func (s *taskRepoStub) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	if s.task == nil || s.task.ID != id {
		return nil, sql.ErrNoRows
	}
	copied := *s.task
	return &copied, nil
}

func (s *taskRepoStub) Create(ctx context.Context, task *models.Task) error {
	task.ID = 12
	s.created = task
	return nil
}

func (s *taskRepoStub) Update(ctx context.Context, task *models.Task) error { return nil }

func (s *taskRepoStub) Complete(ctx context.Context, id int64, end time.Time) error {
	if s.completed == nil {
		s.completed = map[int64]time.Time{}
	}
	s.completed[id] = end
	return nil
}

func (s *taskRepoStub) Delete(ctx context.Context, id int64) error { return nil }

type expenditureRepoStub struct {
	filters []models.ExpenditureFilter
	added   []decimal.Decimal
	actual  []decimal.Decimal
	addErr  error
	setErr  error
}

func (s *expenditureRepoStub) List(ctx context.Context, filter models.ExpenditureFilter, params models.ListParams) ([]models.Expenditure, int, error) {
	s.filters = append(s.filters, filter)
	return nil, 0, nil
}

func (s *expenditureRepoStub) Add(ctx context.Context, taskID, materialID int64, expected decimal.Decimal) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.added = append(s.added, expected)
	return nil
}

func (s *expenditureRepoStub) SetActual(ctx context.Context, taskID, materialID int64, actual decimal.Decimal) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.actual = append(s.actual, actual)
	return nil
}

func taskRequest() TaskRequest {
	return TaskRequest{
		Name:              "Earthworks",
		SiteID:            3,
		BrigadeID:         optional.Some(int64(8)),
		PeriodStart:       optional.Some(date("2024-03-01")),
		ExpectedPeriodEnd: optional.Some(date("2024-03-10")),
	}
}

func TestTaskServiceCreate(t *testing.T) {
	repo := &taskRepoStub{}
	refs := &refStub{}
	svc := NewTaskService(repo, &expenditureRepoStub{}, refs, nil, nil)

	task, err := svc.Create(context.Background(), taskRequest())

	require.NoError(t, err)
	assert.Equal(t, int64(12), task.ID)
	require.NotNil(t, task.BrigadeID)
	assert.Equal(t, int64(8), *task.BrigadeID)
	assert.Nil(t, task.Description)
	assert.Equal(t, []string{"site:3", "brigade:8"}, refs.checked)
}

func TestTaskServiceRejectsEndBeforeStart(t *testing.T) {
	req := taskRequest()
	req.ExpectedPeriodEnd = optional.Some(date("2024-02-01"))
	repo := &taskRepoStub{}

	_, err := NewTaskService(repo, &expenditureRepoStub{}, &refStub{}, nil, nil).Create(context.Background(), req)

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Nil(t, repo.created)
}

func TestTaskServiceRequiresDates(t *testing.T) {
	req := taskRequest()
	req.PeriodStart = optional.None[time.Time]()

	_, err := NewTaskService(&taskRepoStub{}, &expenditureRepoStub{}, &refStub{}, nil, nil).Create(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, "Invalid task: period_start is required", appErrors.FromError(err).Message)
}

func TestTaskServiceComplete(t *testing.T) {
	repo := &taskRepoStub{task: &models.Task{ID: 4, PeriodStart: date("2024-03-01"), Status: models.StatusInProgress}}
	svc := NewTaskService(repo, &expenditureRepoStub{}, &refStub{}, nil, nil)

	_, err := svc.Complete(context.Background(), 4, CompleteTaskRequest{ActualPeriodEnd: optional.Some(date("2024-02-27"))})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, repo.completed)

	task, err := svc.Complete(context.Background(), 4, CompleteTaskRequest{ActualPeriodEnd: optional.Some(date("2024-03-12"))})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, task.Status)
	assert.Equal(t, date("2024-03-12"), repo.completed[4])

	_, err = svc.Complete(context.Background(), 99, CompleteTaskRequest{ActualPeriodEnd: optional.Some(date("2024-03-12"))})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestTaskServiceAddMaterial(t *testing.T) {
	exp := &expenditureRepoStub{}
	refs := &refStub{missing: map[string]bool{"material:6": true}}
	svc := NewTaskService(&taskRepoStub{}, exp, refs, nil, nil)

	err := svc.AddMaterial(context.Background(), 4, TaskMaterialRequest{MaterialID: 6, ExpectedAmount: optional.Some(decimal.NewFromInt(10))})
	require.Error(t, err)
	assert.Equal(t, "Material 6 does not exist", appErrors.FromError(err).Message)

	err = svc.AddMaterial(context.Background(), 4, TaskMaterialRequest{MaterialID: 7, ExpectedAmount: optional.Some(decimal.Zero)})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Message, "expected_amount must be greater than 0")

	require.NoError(t, svc.AddMaterial(context.Background(), 4, TaskMaterialRequest{MaterialID: 7, ExpectedAmount: optional.Some(decimal.RequireFromString("2.5"))}))
	require.Len(t, exp.added, 1)
	assert.Equal(t, "2.5", exp.added[0].String())
}

func TestTaskServiceAddMaterialConflict(t *testing.T) {
	exp := &expenditureRepoStub{addErr: appErrors.Clone(appErrors.ErrConflict, "Material is already added to this task")}
	svc := NewTaskService(&taskRepoStub{}, exp, &refStub{}, nil, nil)

	err := svc.AddMaterial(context.Background(), 4, TaskMaterialRequest{MaterialID: 7, ExpectedAmount: optional.Some(decimal.NewFromInt(1))})

	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, "Material is already added to this task", appErrors.FromError(err).Message)
}

func TestTaskServiceSetActualAmountOfUnplannedMaterial(t *testing.T) {
	exp := &expenditureRepoStub{setErr: sql.ErrNoRows}
	svc := NewTaskService(&taskRepoStub{}, exp, &refStub{}, nil, nil)

	err := svc.SetActualAmount(context.Background(), 4, 7, ActualAmountRequest{ActualAmount: optional.Some(decimal.NewFromInt(3))})

	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, "Task material not found", appErrors.FromError(err).Message)
}

func TestTaskServiceSetActualAmountAcceptsZero(t *testing.T) {
	exp := &expenditureRepoStub{}
	svc := NewTaskService(&taskRepoStub{}, exp, &refStub{}, nil, nil)

	require.NoError(t, svc.SetActualAmount(context.Background(), 4, 7, ActualAmountRequest{ActualAmount: optional.Some(decimal.Zero)}))
	require.Len(t, exp.actual, 1)
	assert.True(t, exp.actual[0].IsZero())

	err := svc.SetActualAmount(context.Background(), 4, 7, ActualAmountRequest{})
	require.Error(t, err)
	assert.Equal(t, "Invalid task material: actual_amount is required", appErrors.FromError(err).Message)
	assert.Len(t, exp.actual, 1)
}

func TestTaskServiceListPages(t *testing.T) {
	svc := NewTaskService(&taskRepoStub{}, &expenditureRepoStub{}, &refStub{}, nil, nil)

	res, err := svc.List(context.Background(), models.TaskFilter{}, models.ListParams{Pagination: models.Pagination{PageNumber: 2, PageSize: 10}})

	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.True(t, res.HasPrev())
	assert.True(t, res.HasNext())
}

func TestMaterialServiceUsageFiltersByMaterial(t *testing.T) {
	exp := &expenditureRepoStub{}
	svc := NewMaterialService(nil, exp, nil, nil)

	res, err := svc.Usage(context.Background(), 5, models.ListParams{})

	require.NoError(t, err)
	assert.NotNil(t, res.Items)
	require.Len(t, exp.filters, 1)
	id, ok := exp.filters[0].MaterialID.Get()
	assert.True(t, ok)
	assert.Equal(t, int64(5), id)
	assert.False(t, exp.filters[0].TaskID.IsSet())
}
