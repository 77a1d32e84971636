package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MockToken is an mqtt.Token whose completion is controlled by the test.
// Done and Wait follow the done channel; Error goes through the mock.
type MockToken struct {
	mock.Mock
	done chan struct{}
}

// NewCompletedToken returns a token that has already finished with err.
func NewCompletedToken(err error) *MockToken {
	t := NewPendingToken()
	t.Complete()
	t.On("Error").Return(err)
	return t
}

// NewPendingToken returns a token that stays pending until Complete is called.
func NewPendingToken() *MockToken {
	return &MockToken{done: make(chan struct{})}
}

// Complete marks the token as finished.
func (m *MockToken) Complete() {
	close(m.done)
}

func (m *MockToken) Error() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockToken) Wait() bool {
	<-m.done
	return true
}

func (m *MockToken) WaitTimeout(timeout time.Duration) bool {
	select {
	case <-m.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (m *MockToken) Done() <-chan struct{} {
	return m.done
}
