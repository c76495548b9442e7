package persistence

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/graph-migrator/internal/domain/port/persistence"
)

// MockGraphStore is a mock implementation of the persistence.GraphStore interface
type MockGraphStore struct {
	mock.Mock
}

// NewMockGraphStore creates a graph store mock that verifies its
// expectations on test cleanup
func NewMockGraphStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockGraphStore {
	m := &MockGraphStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Session mocks opening a session against one database
func (m *MockGraphStore) Session(ctx context.Context, database string) persistence.GraphSession {
	args := m.Called(ctx, database)
	return args.Get(0).(persistence.GraphSession)
}

// VerifyConnectivity mocks the connectivity probe
func (m *MockGraphStore) VerifyConnectivity(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks releasing the store
func (m *MockGraphStore) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockGraphSession is a mock implementation of the persistence.GraphSession interface
type MockGraphSession struct {
	mock.Mock
}

// NewMockGraphSession creates a session mock that verifies its expectations
// on test cleanup
func NewMockGraphSession(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockGraphSession {
	m := &MockGraphSession{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Query mocks running a statement in an auto-commit transaction
func (m *MockGraphSession) Query(ctx context.Context, cypher string, params map[string]any) (*persistence.CypherResult, error) {
	args := m.Called(ctx, cypher, params)
	var result *persistence.CypherResult
	if args.Get(0) != nil {
		result = args.Get(0).(*persistence.CypherResult)
	}
	return result, args.Error(1)
}

// BeginTransaction mocks opening an explicit transaction
func (m *MockGraphSession) BeginTransaction(ctx context.Context) (persistence.GraphTransaction, error) {
	args := m.Called(ctx)
	var tx persistence.GraphTransaction
	if args.Get(0) != nil {
		tx = args.Get(0).(persistence.GraphTransaction)
	}
	return tx, args.Error(1)
}

// Close mocks closing the session
func (m *MockGraphSession) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockGraphTransaction is a mock implementation of the persistence.GraphTransaction interface
type MockGraphTransaction struct {
	mock.Mock
}

// NewMockGraphTransaction creates a transaction mock that verifies its
// expectations on test cleanup
func NewMockGraphTransaction(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockGraphTransaction {
	m := &MockGraphTransaction{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Run mocks executing a statement and discarding its records
func (m *MockGraphTransaction) Run(ctx context.Context, cypher string, params map[string]any) error {
	args := m.Called(ctx, cypher, params)
	return args.Error(0)
}

// Query mocks executing a statement and collecting its records
func (m *MockGraphTransaction) Query(ctx context.Context, cypher string, params map[string]any) (*persistence.CypherResult, error) {
	args := m.Called(ctx, cypher, params)
	var result *persistence.CypherResult
	if args.Get(0) != nil {
		result = args.Get(0).(*persistence.CypherResult)
	}
	return result, args.Error(1)
}

// Commit mocks committing the transaction
func (m *MockGraphTransaction) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Rollback mocks rolling back the transaction
func (m *MockGraphTransaction) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks closing the transaction
func (m *MockGraphTransaction) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
