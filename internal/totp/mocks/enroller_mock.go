package mocks

import (
	"context"
	"sync"
)

// MockEnroller is a mock implementation of the totp.Enroller interface
type MockEnroller struct {
	EnrollFunc      func(secret string) error
	SynchronizeFunc func(ctx context.Context) error

	mu      sync.Mutex
	Secrets []string
	Syncs   int
}

// Enroll implements the totp.Enroller interface
func (m *MockEnroller) Enroll(secret string) error {
	m.mu.Lock()
	m.Secrets = append(m.Secrets, secret)
	m.mu.Unlock()

	if m.EnrollFunc == nil {
		return nil
	}
	return m.EnrollFunc(secret)
}

// Synchronize implements the totp.Enroller interface
func (m *MockEnroller) Synchronize(ctx context.Context) error {
	m.mu.Lock()
	m.Syncs++
	m.mu.Unlock()

	if m.SynchronizeFunc == nil {
		return nil
	}
	return m.SynchronizeFunc(ctx)
}
