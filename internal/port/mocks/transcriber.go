package mocks

import (
	"context"

	"github.com/bnema/recap/internal/domain"
	mock "github.com/stretchr/testify/mock"
)

// NewTranscriberMock creates a new instance of TranscriberMock. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewTranscriberMock(t interface {
	mock.TestingT
	Cleanup(func())
}) *TranscriberMock {
	mock := &TranscriberMock{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

// TranscriberMock is a testify mock of port.Transcriber.
type TranscriberMock struct {
	mock.Mock
}

type TranscriberMock_Expecter struct {
	mock *mock.Mock
}

func (_m *TranscriberMock) EXPECT() *TranscriberMock_Expecter {
	return &TranscriberMock_Expecter{mock: &_m.Mock}
}

// Transcribe provides a mock function for the type TranscriberMock
func (_mock *TranscriberMock) Transcribe(ctx context.Context, audioPath string, opts domain.TranscriptionOptions) (*domain.Transcript, error) {
	ret := _mock.Called(ctx, audioPath, opts)

	if len(ret) == 0 {
		panic("no return value specified for Transcribe")
	}

	if returnFunc, ok := ret.Get(0).(func(context.Context, string, domain.TranscriptionOptions) (*domain.Transcript, error)); ok {
		return returnFunc(ctx, audioPath, opts)
	}

	var r0 *domain.Transcript
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Transcript)
	}

	r1 := ret.Error(1)
	return r0, r1
}

type TranscriberMock_Transcribe_Call struct {
	*mock.Call
}

func (_e *TranscriberMock_Expecter) Transcribe(ctx interface{}, audioPath interface{}, opts interface{}) *TranscriberMock_Transcribe_Call {
	return &TranscriberMock_Transcribe_Call{Call: _e.mock.On("Transcribe", ctx, audioPath, opts)}
}

func (_c *TranscriberMock_Transcribe_Call) Run(run func(ctx context.Context, audioPath string, opts domain.TranscriptionOptions)) *TranscriberMock_Transcribe_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(string), args[2].(domain.TranscriptionOptions))
	})
	return _c
}

func (_c *TranscriberMock_Transcribe_Call) Return(r0 *domain.Transcript, err error) *TranscriberMock_Transcribe_Call {
	_c.Call.Return(r0, err)
	return _c
}

func (_c *TranscriberMock_Transcribe_Call) RunAndReturn(run func(context.Context, string, domain.TranscriptionOptions) (*domain.Transcript, error)) *TranscriberMock_Transcribe_Call {
	_c.Call.Return(run)
	return _c
}
