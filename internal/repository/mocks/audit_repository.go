package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"attendance-now/internal/domain"
)

// AuditRepository 是 repository.AuditRepository 的 mock 实现
type AuditRepository struct {
	mock.Mock
}

func (m *AuditRepository) SaveBatch(ctx context.Context, entries []domain.AuditLog) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}
