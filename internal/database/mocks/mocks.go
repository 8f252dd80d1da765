// Package mocks provides testify mocks for the database package.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTxManager is a testify mock for database.TxManager. When the recorded call returns no
// error the callback runs with the caller's context, so repository expectations still match.
type MockTxManager struct {
	mock.Mock
}

// WithTx records the call and runs fn unless an error was configured.
func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

// NewMockTxManager creates a MockTxManager whose expectations are asserted on test cleanup.
func NewMockTxManager(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTxManager {
	m := &MockTxManager{}
	m.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
