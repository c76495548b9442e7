package source

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/graph-migrator/internal/domain/entity"
)

// MockMigrationSource is a mock implementation of the source.MigrationSource interface
type MockMigrationSource struct {
	mock.Mock
}

// NewMockMigrationSource creates a migration source mock that verifies its
// expectations on test cleanup
func NewMockMigrationSource(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockMigrationSource {
	m := &MockMigrationSource{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Load mocks returning the local migrations
func (m *MockMigrationSource) Load(ctx context.Context) ([]entity.Migration, error) {
	args := m.Called(ctx)
	var migrations []entity.Migration
	if args.Get(0) != nil {
		migrations = args.Get(0).([]entity.Migration)
	}
	return migrations, args.Error(1)
}
