package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/meliosu/onyx-core-builders/internal/models"
)

type clientRepository interface {
	List(ctx context.Context, filter models.ClientFilter, params models.ListParams) ([]models.ClientListItem, int, error)
	FindByID(ctx context.Context, id int64) (*models.Client, error)
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, id int64) error
}

// ClientRequest is the client form.
type ClientRequest struct {
	Name               string `form:"name" validate:"required,max=200"`
	INN                int64  `form:"inn" validate:"required,gt=0"`
	Address            string `form:"address" validate:"required,max=500"`
	ContactPersonEmail string `form:"contact_person_email" validate:"required,email"`
	ContactPersonName  string `form:"contact_person_name" validate:"required,max=200"`
	IsVIP              bool   `form:"is_vip"`
}

// ClientService handles client use-cases.
type ClientService struct {
	repo      clientRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClientService constructs the client service.
func NewClientService(repo clientRepository, validate *validator.Validate, logger *zap.Logger) *ClientService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientService{repo: repo, validator: validate, logger: logger}
}

// List returns one page of clients.
func (s *ClientService) List(ctx context.Context, filter models.ClientFilter, params models.ListParams) (models.ListResult[models.ClientListItem], error) {
	items, total, err := s.repo.List(ctx, filter, params)
	return listResult(items, total, params, err, "clients")
}

// Get returns client details.
func (s *ClientService) Get(ctx context.Context, id int64) (*models.Client, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "client", "load")
	}
	return client, nil
}

func (req ClientRequest) client(id int64) *models.Client {
	return &models.Client{
		ID:                 id,
		Name:               req.Name,
		INN:                req.INN,
		Address:            req.Address,
		ContactPersonEmail: req.ContactPersonEmail,
		ContactPersonName:  req.ContactPersonName,
		IsVIP:              req.IsVIP,
	}
}

// Create registers a client.
func (s *ClientService) Create(ctx context.Context, req ClientRequest) (*models.Client, error) {
	if err := validate(s.validator, "client", &req); err != nil {
		return nil, err
	}
	client := req.client(0)
	if err := s.repo.Create(ctx, client); err != nil {
		s.logger.Error("create client", zap.Error(err))
		return nil, storeError(err, "client", "create")
	}
	return client, nil
}

// Update modifies a client.
func (s *ClientService) Update(ctx context.Context, id int64, req ClientRequest) (*models.Client, error) {
	if err := validate(s.validator, "client", &req); err != nil {
		return nil, err
	}
	client := req.client(id)
	if err := s.repo.Update(ctx, client); err != nil {
		s.logger.Warn("update client", zap.Int64("id", id), zap.Error(err))
		return nil, storeError(err, "client", "update")
	}
	return client, nil
}

// Delete removes a client without sites.
func (s *ClientService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("delete client", zap.Int64("id", id), zap.Error(err))
		return storeError(err, "client", "delete")
	}
	return nil
}
