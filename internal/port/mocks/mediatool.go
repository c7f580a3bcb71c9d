package mocks

import (
	"context"

	"github.com/bnema/recap/internal/domain"
	"github.com/bnema/recap/internal/port"
	mock "github.com/stretchr/testify/mock"
)

// NewMediaToolMock creates a new instance of MediaToolMock. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMediaToolMock(t interface {
	mock.TestingT
	Cleanup(func())
}) *MediaToolMock {
	mock := &MediaToolMock{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

// MediaToolMock is a testify mock of port.MediaTool.
type MediaToolMock struct {
	mock.Mock
}

type MediaToolMock_Expecter struct {
	mock *mock.Mock
}

func (_m *MediaToolMock) EXPECT() *MediaToolMock_Expecter {
	return &MediaToolMock_Expecter{mock: &_m.Mock}
}

// Probe provides a mock function for the type MediaToolMock
func (_mock *MediaToolMock) Probe(ctx context.Context, inputPath string) (*domain.MediaMetadata, error) {
	ret := _mock.Called(ctx, inputPath)

	if len(ret) == 0 {
		panic("no return value specified for Probe")
	}

	if returnFunc, ok := ret.Get(0).(func(context.Context, string) (*domain.MediaMetadata, error)); ok {
		return returnFunc(ctx, inputPath)
	}

	var r0 *domain.MediaMetadata
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.MediaMetadata)
	}

	r1 := ret.Error(1)
	return r0, r1
}

type MediaToolMock_Probe_Call struct {
	*mock.Call
}

func (_e *MediaToolMock_Expecter) Probe(ctx interface{}, inputPath interface{}) *MediaToolMock_Probe_Call {
	return &MediaToolMock_Probe_Call{Call: _e.mock.On("Probe", ctx, inputPath)}
}

func (_c *MediaToolMock_Probe_Call) Run(run func(ctx context.Context, inputPath string)) *MediaToolMock_Probe_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(string))
	})
	return _c
}

func (_c *MediaToolMock_Probe_Call) Return(r0 *domain.MediaMetadata, err error) *MediaToolMock_Probe_Call {
	_c.Call.Return(r0, err)
	return _c
}

func (_c *MediaToolMock_Probe_Call) RunAndReturn(run func(context.Context, string) (*domain.MediaMetadata, error)) *MediaToolMock_Probe_Call {
	_c.Call.Return(run)
	return _c
}

// ExtractAudio provides a mock function for the type MediaToolMock
func (_mock *MediaToolMock) ExtractAudio(ctx context.Context, inputPath string, outputPath string) error {
	ret := _mock.Called(ctx, inputPath, outputPath)

	if len(ret) == 0 {
		panic("no return value specified for ExtractAudio")
	}

	if returnFunc, ok := ret.Get(0).(func(context.Context, string, string) error); ok {
		return returnFunc(ctx, inputPath, outputPath)
	}

	r0 := ret.Error(0)
	return r0
}

type MediaToolMock_ExtractAudio_Call struct {
	*mock.Call
}

func (_e *MediaToolMock_Expecter) ExtractAudio(ctx interface{}, inputPath interface{}, outputPath interface{}) *MediaToolMock_ExtractAudio_Call {
	return &MediaToolMock_ExtractAudio_Call{Call: _e.mock.On("ExtractAudio", ctx, inputPath, outputPath)}
}

func (_c *MediaToolMock_ExtractAudio_Call) Run(run func(ctx context.Context, inputPath string, outputPath string)) *MediaToolMock_ExtractAudio_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(string), args[2].(string))
	})
	return _c
}

func (_c *MediaToolMock_ExtractAudio_Call) Return(err error) *MediaToolMock_ExtractAudio_Call {
	_c.Call.Return(err)
	return _c
}

func (_c *MediaToolMock_ExtractAudio_Call) RunAndReturn(run func(context.Context, string, string) error) *MediaToolMock_ExtractAudio_Call {
	_c.Call.Return(run)
	return _c
}

// ExtractSegment provides a mock function for the type MediaToolMock
func (_mock *MediaToolMock) ExtractSegment(ctx context.Context, req port.ExtractSegmentRequest) error {
	ret := _mock.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for ExtractSegment")
	}

	if returnFunc, ok := ret.Get(0).(func(context.Context, port.ExtractSegmentRequest) error); ok {
		return returnFunc(ctx, req)
	}

	r0 := ret.Error(0)
	return r0
}

type MediaToolMock_ExtractSegment_Call struct {
	*mock.Call
}

func (_e *MediaToolMock_Expecter) ExtractSegment(ctx interface{}, req interface{}) *MediaToolMock_ExtractSegment_Call {
	return &MediaToolMock_ExtractSegment_Call{Call: _e.mock.On("ExtractSegment", ctx, req)}
}

func (_c *MediaToolMock_ExtractSegment_Call) Run(run func(ctx context.Context, req port.ExtractSegmentRequest)) *MediaToolMock_ExtractSegment_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(port.ExtractSegmentRequest))
	})
	return _c
}

func (_c *MediaToolMock_ExtractSegment_Call) Return(err error) *MediaToolMock_ExtractSegment_Call {
	_c.Call.Return(err)
	return _c
}

func (_c *MediaToolMock_ExtractSegment_Call) RunAndReturn(run func(context.Context, port.ExtractSegmentRequest) error) *MediaToolMock_ExtractSegment_Call {
	_c.Call.Return(run)
	return _c
}

// Compose provides a mock function for the type MediaToolMock
func (_mock *MediaToolMock) Compose(ctx context.Context, req domain.ComposeRequest) error {
	ret := _mock.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for Compose")
	}

	if returnFunc, ok := ret.Get(0).(func(context.Context, domain.ComposeRequest) error); ok {
		return returnFunc(ctx, req)
	}

	r0 := ret.Error(0)
	return r0
}

type MediaToolMock_Compose_Call struct {
	*mock.Call
}

func (_e *MediaToolMock_Expecter) Compose(ctx interface{}, req interface{}) *MediaToolMock_Compose_Call {
	return &MediaToolMock_Compose_Call{Call: _e.mock.On("Compose", ctx, req)}
}

func (_c *MediaToolMock_Compose_Call) Run(run func(ctx context.Context, req domain.ComposeRequest)) *MediaToolMock_Compose_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(domain.ComposeRequest))
	})
	return _c
}

func (_c *MediaToolMock_Compose_Call) Return(err error) *MediaToolMock_Compose_Call {
	_c.Call.Return(err)
	return _c
}

func (_c *MediaToolMock_Compose_Call) RunAndReturn(run func(context.Context, domain.ComposeRequest) error) *MediaToolMock_Compose_Call {
	_c.Call.Return(run)
	return _c
}

// Thumbnail provides a mock function for the type MediaToolMock
func (_mock *MediaToolMock) Thumbnail(ctx context.Context, inputPath string, outputPath string, at float64) error {
	ret := _mock.Called(ctx, inputPath, outputPath, at)

	if len(ret) == 0 {
		panic("no return value specified for Thumbnail")
	}

	if returnFunc, ok := ret.Get(0).(func(context.Context, string, string, float64) error); ok {
		return returnFunc(ctx, inputPath, outputPath, at)
	}

	r0 := ret.Error(0)
	return r0
}

type MediaToolMock_Thumbnail_Call struct {
	*mock.Call
}

func (_e *MediaToolMock_Expecter) Thumbnail(ctx interface{}, inputPath interface{}, outputPath interface{}, at interface{}) *MediaToolMock_Thumbnail_Call {
	return &MediaToolMock_Thumbnail_Call{Call: _e.mock.On("Thumbnail", ctx, inputPath, outputPath, at)}
}

func (_c *MediaToolMock_Thumbnail_Call) Run(run func(ctx context.Context, inputPath string, outputPath string, at float64)) *MediaToolMock_Thumbnail_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(string), args[2].(string), args[3].(float64))
	})
	return _c
}

func (_c *MediaToolMock_Thumbnail_Call) Return(err error) *MediaToolMock_Thumbnail_Call {
	_c.Call.Return(err)
	return _c
}

func (_c *MediaToolMock_Thumbnail_Call) RunAndReturn(run func(context.Context, string, string, float64) error) *MediaToolMock_Thumbnail_Call {
	_c.Call.Return(run)
	return _c
}
