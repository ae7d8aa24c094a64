package application

import (
	"context"
	"fmt"

	"github.com/wyfcoding/portfoliotracker/internal/client/domain"
)

// ClientService 客户注册与管理
type ClientService struct {
	repo domain.Repository
}

func NewClientService(repo domain.Repository) *ClientService {
	return &ClientService{repo: repo}
}

func (s *ClientService) Create(ctx context.Context, name, email string) (*domain.Client, error) {
	if name == "" || email == "" {
		return nil, fmt.Errorf("name and email are required")
	}
	client := &domain.Client{
		Name:   name,
		Email:  email,
		Status: domain.StatusActive,
	}
	if err := s.repo.Save(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

func (s *ClientService) Get(ctx context.Context, id uint) (*domain.Client, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ClientService) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Client, error) {
	return s.repo.List(ctx, filter)
}

// UpdateParams 更新字段，nil 表示不变
type UpdateParams struct {
	Name   *string
	Email  *string
	Status *domain.ClientStatus
}

func (s *ClientService) Update(ctx context.Context, id uint, params UpdateParams) (*domain.Client, error) {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if params.Name != nil {
		client.Name = *params.Name
	}
	if params.Email != nil {
		client.Email = *params.Email
	}
	if params.Status != nil {
		client.Status = *params.Status
	}
	if err := s.repo.Save(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return client, nil
}

// Deactivate 软删除客户
func (s *ClientService) Deactivate(ctx context.Context, id uint) error {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	client.Deactivate()
	return s.repo.Save(ctx, client)
}
