package mocks

import (
	"github.com/bnema/recap/internal/domain"
	mock "github.com/stretchr/testify/mock"
)

// NewRunQueueMock creates a new instance of RunQueueMock. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewRunQueueMock(t interface {
	mock.TestingT
	Cleanup(func())
}) *RunQueueMock {
	mock := &RunQueueMock{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

// RunQueueMock is a testify mock of port.RunQueue.
type RunQueueMock struct {
	mock.Mock
}

type RunQueueMock_Expecter struct {
	mock *mock.Mock
}

func (_m *RunQueueMock) EXPECT() *RunQueueMock_Expecter {
	return &RunQueueMock_Expecter{mock: &_m.Mock}
}

// Enqueue provides a mock function for the type RunQueueMock
func (_mock *RunQueueMock) Enqueue(run *domain.Run) (*domain.Run, error) {
	ret := _mock.Called(run)

	if len(ret) == 0 {
		panic("no return value specified for Enqueue")
	}

	if returnFunc, ok := ret.Get(0).(func(*domain.Run) (*domain.Run, error)); ok {
		return returnFunc(run)
	}

	var r0 *domain.Run
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Run)
	}

	r1 := ret.Error(1)
	return r0, r1
}

type RunQueueMock_Enqueue_Call struct {
	*mock.Call
}

func (_e *RunQueueMock_Expecter) Enqueue(run interface{}) *RunQueueMock_Enqueue_Call {
	return &RunQueueMock_Enqueue_Call{Call: _e.mock.On("Enqueue", run)}
}

func (_c *RunQueueMock_Enqueue_Call) Run(run func(run *domain.Run)) *RunQueueMock_Enqueue_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(*domain.Run))
	})
	return _c
}

func (_c *RunQueueMock_Enqueue_Call) Return(r0 *domain.Run, err error) *RunQueueMock_Enqueue_Call {
	_c.Call.Return(r0, err)
	return _c
}

func (_c *RunQueueMock_Enqueue_Call) RunAndReturn(run func(*domain.Run) (*domain.Run, error)) *RunQueueMock_Enqueue_Call {
	_c.Call.Return(run)
	return _c
}

// Claim provides a mock function for the type RunQueueMock
func (_mock *RunQueueMock) Claim() (*domain.Run, error) {
	ret := _mock.Called()

	if len(ret) == 0 {
		panic("no return value specified for Claim")
	}

	if returnFunc, ok := ret.Get(0).(func() (*domain.Run, error)); ok {
		return returnFunc()
	}

	var r0 *domain.Run
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Run)
	}

	r1 := ret.Error(1)
	return r0, r1
}

type RunQueueMock_Claim_Call struct {
	*mock.Call
}

func (_e *RunQueueMock_Expecter) Claim() *RunQueueMock_Claim_Call {
	return &RunQueueMock_Claim_Call{Call: _e.mock.On("Claim")}
}

func (_c *RunQueueMock_Claim_Call) Run(run func()) *RunQueueMock_Claim_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run()
	})
	return _c
}

func (_c *RunQueueMock_Claim_Call) Return(r0 *domain.Run, err error) *RunQueueMock_Claim_Call {
	_c.Call.Return(r0, err)
	return _c
}

func (_c *RunQueueMock_Claim_Call) RunAndReturn(run func() (*domain.Run, error)) *RunQueueMock_Claim_Call {
	_c.Call.Return(run)
	return _c
}

// Complete provides a mock function for the type RunQueueMock
func (_mock *RunQueueMock) Complete(runID int64) error {
	ret := _mock.Called(runID)

	if len(ret) == 0 {
		panic("no return value specified for Complete")
	}

	if returnFunc, ok := ret.Get(0).(func(int64) error); ok {
		return returnFunc(runID)
	}

	r0 := ret.Error(0)
	return r0
}

type RunQueueMock_Complete_Call struct {
	*mock.Call
}

func (_e *RunQueueMock_Expecter) Complete(runID interface{}) *RunQueueMock_Complete_Call {
	return &RunQueueMock_Complete_Call{Call: _e.mock.On("Complete", runID)}
}

func (_c *RunQueueMock_Complete_Call) Run(run func(runID int64)) *RunQueueMock_Complete_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(int64))
	})
	return _c
}

func (_c *RunQueueMock_Complete_Call) Return(err error) *RunQueueMock_Complete_Call {
	_c.Call.Return(err)
	return _c
}

func (_c *RunQueueMock_Complete_Call) RunAndReturn(run func(int64) error) *RunQueueMock_Complete_Call {
	_c.Call.Return(run)
	return _c
}

// Fail provides a mock function for the type RunQueueMock
func (_mock *RunQueueMock) Fail(runID int64, errMsg string) error {
	ret := _mock.Called(runID, errMsg)

	if len(ret) == 0 {
		panic("no return value specified for Fail")
	}

	if returnFunc, ok := ret.Get(0).(func(int64, string) error); ok {
		return returnFunc(runID, errMsg)
	}

	r0 := ret.Error(0)
	return r0
}

type RunQueueMock_Fail_Call struct {
	*mock.Call
}

func (_e *RunQueueMock_Expecter) Fail(runID interface{}, errMsg interface{}) *RunQueueMock_Fail_Call {
	return &RunQueueMock_Fail_Call{Call: _e.mock.On("Fail", runID, errMsg)}
}

func (_c *RunQueueMock_Fail_Call) Run(run func(runID int64, errMsg string)) *RunQueueMock_Fail_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(int64), args[1].(string))
	})
	return _c
}

func (_c *RunQueueMock_Fail_Call) Return(err error) *RunQueueMock_Fail_Call {
	_c.Call.Return(err)
	return _c
}

func (_c *RunQueueMock_Fail_Call) RunAndReturn(run func(int64, string) error) *RunQueueMock_Fail_Call {
	_c.Call.Return(run)
	return _c
}

// ResetStalled provides a mock function for the type RunQueueMock
func (_mock *RunQueueMock) ResetStalled() error {
	ret := _mock.Called()

	if len(ret) == 0 {
		panic("no return value specified for ResetStalled")
	}

	if returnFunc, ok := ret.Get(0).(func() error); ok {
		return returnFunc()
	}

	r0 := ret.Error(0)
	return r0
}

type RunQueueMock_ResetStalled_Call struct {
	*mock.Call
}

func (_e *RunQueueMock_Expecter) ResetStalled() *RunQueueMock_ResetStalled_Call {
	return &RunQueueMock_ResetStalled_Call{Call: _e.mock.On("ResetStalled")}
}

func (_c *RunQueueMock_ResetStalled_Call) Run(run func()) *RunQueueMock_ResetStalled_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run()
	})
	return _c
}

func (_c *RunQueueMock_ResetStalled_Call) Return(err error) *RunQueueMock_ResetStalled_Call {
	_c.Call.Return(err)
	return _c
}

func (_c *RunQueueMock_ResetStalled_Call) RunAndReturn(run func() error) *RunQueueMock_ResetStalled_Call {
	_c.Call.Return(run)
	return _c
}

// ListByJob provides a mock function for the type RunQueueMock
func (_mock *RunQueueMock) ListByJob(jobID string) ([]domain.Run, error) {
	ret := _mock.Called(jobID)

	if len(ret) == 0 {
		panic("no return value specified for ListByJob")
	}

	if returnFunc, ok := ret.Get(0).(func(string) ([]domain.Run, error)); ok {
		return returnFunc(jobID)
	}

	var r0 []domain.Run
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Run)
	}

	r1 := ret.Error(1)
	return r0, r1
}

type RunQueueMock_ListByJob_Call struct {
	*mock.Call
}

func (_e *RunQueueMock_Expecter) ListByJob(jobID interface{}) *RunQueueMock_ListByJob_Call {
	return &RunQueueMock_ListByJob_Call{Call: _e.mock.On("ListByJob", jobID)}
}

func (_c *RunQueueMock_ListByJob_Call) Run(run func(jobID string)) *RunQueueMock_ListByJob_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(string))
	})
	return _c
}

func (_c *RunQueueMock_ListByJob_Call) Return(r0 []domain.Run, err error) *RunQueueMock_ListByJob_Call {
	_c.Call.Return(r0, err)
	return _c
}

func (_c *RunQueueMock_ListByJob_Call) RunAndReturn(run func(string) ([]domain.Run, error)) *RunQueueMock_ListByJob_Call {
	_c.Call.Return(run)
	return _c
}
