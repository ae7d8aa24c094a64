package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/portfoliotracker/internal/client/domain"
)

type mockRepository struct{ mock.Mock }

func (m *mockRepository) Save(ctx context.Context, client *domain.Client) error {
	return m.Called(ctx, client).Error(0)
}

func (m *mockRepository) GetByID(ctx context.Context, id uint) (*domain.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *mockRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Client, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Client), args.Error(1)
}

func TestCreateStartsActive(t *testing.T) {
	repo := &mockRepository{}
	svc := NewClientService(repo)

	repo.On("Save", mock.Anything, mock.MatchedBy(func(c *domain.Client) bool {
		return c.Status == domain.StatusActive
	})).Return(nil)

	client, err := svc.Create(context.Background(), "Ada Lovelace", "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, client.Status)
}

func TestCreateRequiresNameAndEmail(t *testing.T) {
	repo := &mockRepository{}
	svc := NewClientService(repo)

	_, err := svc.Create(context.Background(), "", "ada@example.com")
	assert.Error(t, err)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdatePartialFields(t *testing.T) {
	repo := &mockRepository{}
	svc := NewClientService(repo)

	repo.On("GetByID", mock.Anything, uint(1)).Return(&domain.Client{
		ID: 1, Name: "Ada Lovelace", Email: "ada@example.com", Status: domain.StatusActive,
	}, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	name := "Ada King"
	client, err := svc.Update(context.Background(), 1, UpdateParams{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ada King", client.Name)
	assert.Equal(t, "ada@example.com", client.Email)
}

func TestDeactivateIsSoftDelete(t *testing.T) {
	repo := &mockRepository{}
	svc := NewClientService(repo)

	repo.On("GetByID", mock.Anything, uint(1)).Return(&domain.Client{
		ID: 1, Name: "Ada Lovelace", Status: domain.StatusActive,
	}, nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(c *domain.Client) bool {
		return c.Status == domain.StatusInactive
	})).Return(nil)

	require.NoError(t, svc.Deactivate(context.Background(), 1))
	repo.AssertExpectations(t)
}

func TestGetNotFound(t *testing.T) {
	repo := &mockRepository{}
	svc := NewClientService(repo)

	repo.On("GetByID", mock.Anything, uint(404)).Return(nil, domain.ErrNotFound)

	_, err := svc.Get(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
