package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meliosu/onyx-core-builders/internal/models"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
	"github.com/meliosu/onyx-core-builders/pkg/optional"
)

type departmentRepoStub struct {
	created   *models.Department
	deleteErr error
}

func (s *departmentRepoStub) List(ctx context.Context, filter models.DepartmentFilter, params models.ListParams) ([]models.DepartmentListItem, int, error) {
	return nil, 0, errors.New("connection refused")
}

func (s *departmentRepoStub) FindByID(ctx context.Context, id int64) (*models.Department, error) {
	return &models.Department{ID: id}, nil
}

func (s *departmentRepoStub) Create(ctx context.Context, department *models.Department) error {
	department.ID = 2
	s.created = department
	return nil
}

func (s *departmentRepoStub) Update(ctx context.Context, department *models.Department) error {
	return nil
}

func (s *departmentRepoStub) Delete(ctx context.Context, id int64) error { return s.deleteErr }

func TestDepartmentServiceCreateChecksSupervisor(t *testing.T) {
	repo := &departmentRepoStub{}
	refs := &refStub{missing: map[string]bool{"technical_personnel:7": true}}
	svc := NewDepartmentService(repo, refs, nil, nil)

	_, err := svc.Create(context.Background(), DepartmentRequest{Name: "North", SupervisorID: optional.Some(int64(7))})
	require.Error(t, err)
	assert.Equal(t, "Supervisor 7 does not exist", appErrors.FromError(err).Message)
	assert.Nil(t, repo.created)

	department, err := svc.Create(context.Background(), DepartmentRequest{Name: "North"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), department.ID)
	assert.Nil(t, department.SupervisorID)
}

func TestDepartmentServiceDeleteRefused(t *testing.T) {
	repo := &departmentRepoStub{deleteErr: appErrors.Clone(appErrors.ErrConflict, "Cannot delete department: it has 2 areas")}

	err := NewDepartmentService(repo, &refStub{}, nil, nil).Delete(context.Background(), 2)

	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, "Cannot delete department: it has 2 areas", appErrors.FromError(err).Message)
}

func TestDepartmentServiceListFailure(t *testing.T) {
	_, err := NewDepartmentService(&departmentRepoStub{}, &refStub{}, nil, nil).List(context.Background(), models.DepartmentFilter{}, models.ListParams{})

	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
	assert.Equal(t, "failed to list departments", appErrors.FromError(err).Message)
}

type workerRepoStub struct {
	created *models.Worker
}

func (s *workerRepoStub) List(ctx context.Context, filter models.WorkerFilter, params models.ListParams) ([]models.WorkerListItem, int, error) {
	return nil, 0, nil
}

func (s *workerRepoStub) FindByID(ctx context.Context, id int64) (*models.Worker, error) {
	return nil, nil
}

func (s *workerRepoStub) Create(ctx context.Context, worker *models.Worker) error {
	worker.ID = 15
	s.created = worker
	return nil
}

func (s *workerRepoStub) Update(ctx context.Context, worker *models.Worker) error { return nil }

func (s *workerRepoStub) Delete(ctx context.Context, id int64) error { return nil }

func employeeRequest() EmployeeRequest {
	return EmployeeRequest{
		FirstName:   "Anna",
		LastName:    "Sokolova",
		Gender:      models.GenderFemale,
		PhoneNumber: "+7 900 111-22-33",
		Salary:      90000,
	}
}

func TestWorkerServiceProfessionMismatch(t *testing.T) {
	repo := &workerRepoStub{}
	req := WorkerRequest{
		EmployeeRequest: employeeRequest(),
		Profession:      models.ProfessionDriver,
		Fields:          &models.WelderFields{WeldingMachine: "TIG-200"},
	}

	_, err := NewWorkerService(repo, &refStub{}, nil, nil).Create(context.Background(), req)

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Contains(t, appErrors.FromError(err).Message, "submitted for profession")
	assert.Nil(t, repo.created)
}

func TestWorkerServiceCreate(t *testing.T) {
	repo := &workerRepoStub{}
	refs := &refStub{}
	req := WorkerRequest{
		EmployeeRequest: employeeRequest(),
		Profession:      models.ProfessionMason,
		BrigadeID:       optional.Some(int64(4)),
		Fields:          &models.MasonFields{HQRestorationSkills: true},
	}

	worker, err := NewWorkerService(repo, refs, nil, nil).Create(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, int64(15), worker.ID)
	assert.Equal(t, "Anna", worker.FirstName)
	assert.Equal(t, []string{"brigade:4"}, refs.checked)
}

func TestWorkerServiceMissingFields(t *testing.T) {
	req := WorkerRequest{EmployeeRequest: employeeRequest(), Profession: models.ProfessionWelder}

	_, err := NewWorkerService(&workerRepoStub{}, &refStub{}, nil, nil).Create(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, "Invalid worker: type-specific fields are missing", appErrors.FromError(err).Message)
}

type brigadeRepoStub struct {
	addErr error
}

func (s *brigadeRepoStub) List(ctx context.Context, filter models.BrigadeFilter, params models.ListParams) ([]models.BrigadeListItem, int, error) {
	return nil, 0, nil
}

func (s *brigadeRepoStub) FindByID(ctx context.Context, id int64) (*models.Brigade, error) {
	return nil, nil
}

func (s *brigadeRepoStub) Create(ctx context.Context, brigade *models.Brigade) error { return nil }

func (s *brigadeRepoStub) Update(ctx context.Context, brigade *models.Brigade) error { return nil }

func (s *brigadeRepoStub) Delete(ctx context.Context, id int64) error { return nil }

func (s *brigadeRepoStub) AddWorker(ctx context.Context, brigadeID, workerID int64) error {
	return s.addErr
}

func (s *brigadeRepoStub) RemoveWorker(ctx context.Context, brigadeID, workerID int64) error {
	return nil
}

func TestBrigadeServiceAddWorker(t *testing.T) {
	svc := NewBrigadeService(&brigadeRepoStub{addErr: appErrors.Clone(appErrors.ErrConflict, "Worker is already assigned to brigade 8")}, nil, nil)

	err := svc.AddWorker(context.Background(), 3, BrigadeWorkerRequest{})
	require.Error(t, err)
	assert.Equal(t, "Invalid brigade member: worker_id is required", appErrors.FromError(err).Message)

	err = svc.AddWorker(context.Background(), 3, BrigadeWorkerRequest{WorkerID: 11})
	assert.Equal(t, "Worker is already assigned to brigade 8", appErrors.FromError(err).Message)
}

type selectorRepoStub struct {
	limit int
	err   error
}

func (s *selectorRepoStub) Options(ctx context.Context, name string, filter models.SelectorFilter, limit int) ([]models.SelectorOption, error) {
	s.limit = limit
	return []models.SelectorOption{{ID: 1, Label: "North"}}, s.err
}

func TestSelectorService(t *testing.T) {
	repo := &selectorRepoStub{}
	svc := NewSelectorService(repo, func(name string) bool { return name == "departments" }, 0, nil)

	_, err := svc.Options(context.Background(), "users", models.SelectorFilter{})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	options, err := svc.Options(context.Background(), "departments", models.SelectorFilter{})
	require.NoError(t, err)
	assert.Len(t, options, 1)
	assert.Equal(t, defaultSelectorLimit, repo.limit)

	repo.err = errors.New("timeout")
	_, err = svc.Options(context.Background(), "departments", models.SelectorFilter{})
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
}
