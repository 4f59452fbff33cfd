package logging

import (
	"github.com/stretchr/testify/mock"
)

// MockLogger is a mock implementation of the Logger interface
type MockLogger struct {
	mock.Mock
}

// SetupDefaultExpectations allows every logger method to be called with any
// arguments. Use it in tests that do not assert on specific log calls.
func (m *MockLogger) SetupDefaultExpectations() {
	for _, method := range []string{"Debug", "Info", "Warn", "Error", "Fatal"} {
		m.On(method, mock.Anything, mock.Anything).Maybe().Return()
	}
	for _, method := range []string{"Debugf", "Infof", "Warnf", "Errorf", "Fatalf"} {
		m.On(method, mock.Anything, mock.Anything).Maybe().Return()
	}
	m.On("With", mock.Anything).Maybe().Return(nil)
}

func (m *MockLogger) Debug(msg string, tags ...any) { m.Called(msg, tags) }
func (m *MockLogger) Info(msg string, tags ...any)  { m.Called(msg, tags) }
func (m *MockLogger) Warn(msg string, tags ...any)  { m.Called(msg, tags) }
func (m *MockLogger) Error(msg string, tags ...any) { m.Called(msg, tags) }
func (m *MockLogger) Fatal(msg string, tags ...any) { m.Called(msg, tags) }

func (m *MockLogger) Debugf(template string, args ...interface{}) { m.Called(template, args) }
func (m *MockLogger) Infof(template string, args ...interface{})  { m.Called(template, args) }
func (m *MockLogger) Warnf(template string, args ...interface{})  { m.Called(template, args) }
func (m *MockLogger) Errorf(template string, args ...interface{}) { m.Called(template, args) }
func (m *MockLogger) Fatalf(template string, args ...interface{}) { m.Called(template, args) }

func (m *MockLogger) With(tags ...any) Logger {
	args := m.Called(tags)
	if args.Get(0) == nil {
		return m
	}
	return args.Get(0).(Logger)
}
