package persistence

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/graph-migrator/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/graph-migrator/internal/domain/port/core"
)

// MockLedger is a mock implementation of the persistence.Ledger interface
type MockLedger struct {
	mock.Mock
}

// NewMockLedger creates a ledger mock that verifies its expectations on
// test cleanup
func NewMockLedger(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockLedger {
	m := &MockLedger{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// EnsureBaseline mocks creating the baseline sentinel
func (m *MockLedger) EnsureBaseline(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// EnsureUniquenessConstraint mocks installing the uniqueness constraint
func (m *MockLedger) EnsureUniquenessConstraint(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Append mocks recording a migration at the head of the chain
func (m *MockLedger) Append(ctx context.Context, def entity.MigrationDefinition, took coreport.Duration, dryRun bool) error {
	args := m.Called(ctx, def, took, dryRun)
	return args.Error(0)
}

// FetchApplied mocks reading the applied chain
func (m *MockLedger) FetchApplied(ctx context.Context) ([]entity.LedgerEntry, error) {
	args := m.Called(ctx)
	var entries []entity.LedgerEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]entity.LedgerEntry)
	}
	return entries, args.Error(1)
}

// Remove mocks deleting one entry and relinking the chain
func (m *MockLedger) Remove(ctx context.Context, version entity.Version) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}
