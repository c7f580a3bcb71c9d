package mocks

import (
	"context"

	"github.com/bnema/recap/internal/domain"
	mock "github.com/stretchr/testify/mock"
)

// NewMomentDetectorMock creates a new instance of MomentDetectorMock. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMomentDetectorMock(t interface {
	mock.TestingT
	Cleanup(func())
}) *MomentDetectorMock {
	mock := &MomentDetectorMock{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

// MomentDetectorMock is a testify mock of port.MomentDetector.
type MomentDetectorMock struct {
	mock.Mock
}

type MomentDetectorMock_Expecter struct {
	mock *mock.Mock
}

func (_m *MomentDetectorMock) EXPECT() *MomentDetectorMock_Expecter {
	return &MomentDetectorMock_Expecter{mock: &_m.Mock}
}

// Detect provides a mock function for the type MomentDetectorMock
func (_mock *MomentDetectorMock) Detect(ctx context.Context, req domain.DetectionRequest) (*domain.DetectionResult, error) {
	ret := _mock.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for Detect")
	}

	if returnFunc, ok := ret.Get(0).(func(context.Context, domain.DetectionRequest) (*domain.DetectionResult, error)); ok {
		return returnFunc(ctx, req)
	}

	var r0 *domain.DetectionResult
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.DetectionResult)
	}

	r1 := ret.Error(1)
	return r0, r1
}

type MomentDetectorMock_Detect_Call struct {
	*mock.Call
}

func (_e *MomentDetectorMock_Expecter) Detect(ctx interface{}, req interface{}) *MomentDetectorMock_Detect_Call {
	return &MomentDetectorMock_Detect_Call{Call: _e.mock.On("Detect", ctx, req)}
}

func (_c *MomentDetectorMock_Detect_Call) Run(run func(ctx context.Context, req domain.DetectionRequest)) *MomentDetectorMock_Detect_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(domain.DetectionRequest))
	})
	return _c
}

func (_c *MomentDetectorMock_Detect_Call) Return(r0 *domain.DetectionResult, err error) *MomentDetectorMock_Detect_Call {
	_c.Call.Return(r0, err)
	return _c
}

func (_c *MomentDetectorMock_Detect_Call) RunAndReturn(run func(context.Context, domain.DetectionRequest) (*domain.DetectionResult, error)) *MomentDetectorMock_Detect_Call {
	_c.Call.Return(run)
	return _c
}
