// Package mocks holds testify mocks for the adapter interfaces, written in
// the mockery expecter style.
package mocks

import (
	os "os"

	mock "github.com/stretchr/testify/mock"
	adapter "relimport.dev/pkg/relimport/internal/adapter"
	model "relimport.dev/pkg/relimport/internal/model"
)

// MockSourceFSAdapter is a mock type for the SourceFSAdapter type
type MockSourceFSAdapter struct {
	mock.Mock
}

type MockSourceFSAdapter_Expecter struct {
	mock *mock.Mock
}

func (_m *MockSourceFSAdapter) EXPECT() *MockSourceFSAdapter_Expecter {
	return &MockSourceFSAdapter_Expecter{mock: &_m.Mock}
}

// AbsPath provides a mock function with given fields: path
func (_m *MockSourceFSAdapter) AbsPath(path model.Path) (model.Path, error) {
	ret := _m.Called(path)

	if len(ret) == 0 {
		panic("no return value specified for AbsPath")
	}

	if rf, ok := ret.Get(0).(func(model.Path) (model.Path, error)); ok {
		return rf(path)
	}

	r0 := ret.Get(0).(model.Path)

	return r0, ret.Error(1)
}

// MockSourceFSAdapter_AbsPath_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'AbsPath'
type MockSourceFSAdapter_AbsPath_Call struct {
	*mock.Call
}

// AbsPath is a helper method to define mock.On call
//   - path model.Path
func (_e *MockSourceFSAdapter_Expecter) AbsPath(path interface{}) *MockSourceFSAdapter_AbsPath_Call {
	return &MockSourceFSAdapter_AbsPath_Call{Call: _e.mock.On("AbsPath", path)}
}

func (_c *MockSourceFSAdapter_AbsPath_Call) Run(run func(path model.Path)) *MockSourceFSAdapter_AbsPath_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(model.Path))
	})
	return _c
}

func (_c *MockSourceFSAdapter_AbsPath_Call) Return(_a0 model.Path, _a1 error) *MockSourceFSAdapter_AbsPath_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockSourceFSAdapter_AbsPath_Call) RunAndReturn(run func(model.Path) (model.Path, error)) *MockSourceFSAdapter_AbsPath_Call {
	_c.Call.Return(run)
	return _c
}

// FileInfo provides a mock function with given fields: path
func (_m *MockSourceFSAdapter) FileInfo(path model.Path) (os.FileInfo, error) {
	ret := _m.Called(path)

	if len(ret) == 0 {
		panic("no return value specified for FileInfo")
	}

	if rf, ok := ret.Get(0).(func(model.Path) (os.FileInfo, error)); ok {
		return rf(path)
	}

	var r0 os.FileInfo
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(os.FileInfo)
	}

	return r0, ret.Error(1)
}

// MockSourceFSAdapter_FileInfo_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'FileInfo'
type MockSourceFSAdapter_FileInfo_Call struct {
	*mock.Call
}

// FileInfo is a helper method to define mock.On call
//   - path model.Path
func (_e *MockSourceFSAdapter_Expecter) FileInfo(path interface{}) *MockSourceFSAdapter_FileInfo_Call {
	return &MockSourceFSAdapter_FileInfo_Call{Call: _e.mock.On("FileInfo", path)}
}

func (_c *MockSourceFSAdapter_FileInfo_Call) Run(run func(path model.Path)) *MockSourceFSAdapter_FileInfo_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(model.Path))
	})
	return _c
}

func (_c *MockSourceFSAdapter_FileInfo_Call) Return(_a0 os.FileInfo, _a1 error) *MockSourceFSAdapter_FileInfo_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockSourceFSAdapter_FileInfo_Call) RunAndReturn(run func(model.Path) (os.FileInfo, error)) *MockSourceFSAdapter_FileInfo_Call {
	_c.Call.Return(run)
	return _c
}

// JoinPath provides a mock function with given fields: elem
func (_m *MockSourceFSAdapter) JoinPath(elem ...string) model.Path {
	_va := make([]interface{}, len(elem))
	for _i := range elem {
		_va[_i] = elem[_i]
	}

	ret := _m.Called(_va...)

	if len(ret) == 0 {
		panic("no return value specified for JoinPath")
	}

	if rf, ok := ret.Get(0).(func(...string) model.Path); ok {
		return rf(elem...)
	}

	r0 := ret.Get(0).(model.Path)

	return r0
}

// MockSourceFSAdapter_JoinPath_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'JoinPath'
type MockSourceFSAdapter_JoinPath_Call struct {
	*mock.Call
}

// JoinPath is a helper method to define mock.On call
//   - elem ...string
func (_e *MockSourceFSAdapter_Expecter) JoinPath(elem ...interface{}) *MockSourceFSAdapter_JoinPath_Call {
	return &MockSourceFSAdapter_JoinPath_Call{Call: _e.mock.On("JoinPath", elem...)}
}

func (_c *MockSourceFSAdapter_JoinPath_Call) Run(run func(elem ...string)) *MockSourceFSAdapter_JoinPath_Call {
	_c.Call.Run(func(args mock.Arguments) {
		variadicArgs := make([]string, len(args))
		for i, a := range args {
			if a != nil {
				variadicArgs[i] = a.(string)
			}
		}
		run(variadicArgs...)
	})
	return _c
}

func (_c *MockSourceFSAdapter_JoinPath_Call) Return(_a0 model.Path) *MockSourceFSAdapter_JoinPath_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockSourceFSAdapter_JoinPath_Call) RunAndReturn(run func(...string) model.Path) *MockSourceFSAdapter_JoinPath_Call {
	_c.Call.Return(run)
	return _c
}

// ReadFile provides a mock function with given fields: path
func (_m *MockSourceFSAdapter) ReadFile(path model.Path) ([]byte, error) {
	ret := _m.Called(path)

	if len(ret) == 0 {
		panic("no return value specified for ReadFile")
	}

	if rf, ok := ret.Get(0).(func(model.Path) ([]byte, error)); ok {
		return rf(path)
	}

	var r0 []byte
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	return r0, ret.Error(1)
}

// MockSourceFSAdapter_ReadFile_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'ReadFile'
type MockSourceFSAdapter_ReadFile_Call struct {
	*mock.Call
}

// ReadFile is a helper method to define mock.On call
//   - path model.Path
func (_e *MockSourceFSAdapter_Expecter) ReadFile(path interface{}) *MockSourceFSAdapter_ReadFile_Call {
	return &MockSourceFSAdapter_ReadFile_Call{Call: _e.mock.On("ReadFile", path)}
}

func (_c *MockSourceFSAdapter_ReadFile_Call) Run(run func(path model.Path)) *MockSourceFSAdapter_ReadFile_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(model.Path))
	})
	return _c
}

func (_c *MockSourceFSAdapter_ReadFile_Call) Return(_a0 []byte, _a1 error) *MockSourceFSAdapter_ReadFile_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockSourceFSAdapter_ReadFile_Call) RunAndReturn(run func(model.Path) ([]byte, error)) *MockSourceFSAdapter_ReadFile_Call {
	_c.Call.Return(run)
	return _c
}

// RelPath provides a mock function with given fields: base, target
func (_m *MockSourceFSAdapter) RelPath(base model.Path, target model.Path) (model.Path, error) {
	ret := _m.Called(base, target)

	if len(ret) == 0 {
		panic("no return value specified for RelPath")
	}

	if rf, ok := ret.Get(0).(func(model.Path, model.Path) (model.Path, error)); ok {
		return rf(base, target)
	}

	r0 := ret.Get(0).(model.Path)

	return r0, ret.Error(1)
}

// MockSourceFSAdapter_RelPath_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'RelPath'
type MockSourceFSAdapter_RelPath_Call struct {
	*mock.Call
}

// RelPath is a helper method to define mock.On call
//   - base model.Path
//   - target model.Path
func (_e *MockSourceFSAdapter_Expecter) RelPath(base interface{}, target interface{}) *MockSourceFSAdapter_RelPath_Call {
	return &MockSourceFSAdapter_RelPath_Call{Call: _e.mock.On("RelPath", base, target)}
}

func (_c *MockSourceFSAdapter_RelPath_Call) Run(run func(base model.Path, target model.Path)) *MockSourceFSAdapter_RelPath_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(model.Path), args[1].(model.Path))
	})
	return _c
}

func (_c *MockSourceFSAdapter_RelPath_Call) Return(_a0 model.Path, _a1 error) *MockSourceFSAdapter_RelPath_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockSourceFSAdapter_RelPath_Call) RunAndReturn(run func(model.Path, model.Path) (model.Path, error)) *MockSourceFSAdapter_RelPath_Call {
	_c.Call.Return(run)
	return _c
}

// Walk provides a mock function with given fields: root, skipDirs, fn
func (_m *MockSourceFSAdapter) Walk(root model.Path, skipDirs []string, fn adapter.FilepathWalkFunc) error {
	ret := _m.Called(root, skipDirs, fn)

	if len(ret) == 0 {
		panic("no return value specified for Walk")
	}

	if rf, ok := ret.Get(0).(func(model.Path, []string, adapter.FilepathWalkFunc) error); ok {
		return rf(root, skipDirs, fn)
	}

	return ret.Error(0)
}

// MockSourceFSAdapter_Walk_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Walk'
type MockSourceFSAdapter_Walk_Call struct {
	*mock.Call
}

// Walk is a helper method to define mock.On call
//   - root model.Path
//   - skipDirs []string
//   - fn adapter.FilepathWalkFunc
func (_e *MockSourceFSAdapter_Expecter) Walk(root interface{}, skipDirs interface{}, fn interface{}) *MockSourceFSAdapter_Walk_Call {
	return &MockSourceFSAdapter_Walk_Call{Call: _e.mock.On("Walk", root, skipDirs, fn)}
}

func (_c *MockSourceFSAdapter_Walk_Call) Run(run func(root model.Path, skipDirs []string, fn adapter.FilepathWalkFunc)) *MockSourceFSAdapter_Walk_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(model.Path), args[1].([]string), args[2].(adapter.FilepathWalkFunc))
	})
	return _c
}

func (_c *MockSourceFSAdapter_Walk_Call) Return(_a0 error) *MockSourceFSAdapter_Walk_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockSourceFSAdapter_Walk_Call) RunAndReturn(run func(model.Path, []string, adapter.FilepathWalkFunc) error) *MockSourceFSAdapter_Walk_Call {
	_c.Call.Return(run)
	return _c
}

// WriteFile provides a mock function with given fields: path, content, perm
func (_m *MockSourceFSAdapter) WriteFile(path model.Path, content []byte, perm os.FileMode) error {
	ret := _m.Called(path, content, perm)

	if len(ret) == 0 {
		panic("no return value specified for WriteFile")
	}

	if rf, ok := ret.Get(0).(func(model.Path, []byte, os.FileMode) error); ok {
		return rf(path, content, perm)
	}

	return ret.Error(0)
}

// MockSourceFSAdapter_WriteFile_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'WriteFile'
type MockSourceFSAdapter_WriteFile_Call struct {
	*mock.Call
}

// WriteFile is a helper method to define mock.On call
//   - path model.Path
//   - content []byte
//   - perm os.FileMode
func (_e *MockSourceFSAdapter_Expecter) WriteFile(path interface{}, content interface{}, perm interface{}) *MockSourceFSAdapter_WriteFile_Call {
	return &MockSourceFSAdapter_WriteFile_Call{Call: _e.mock.On("WriteFile", path, content, perm)}
}

func (_c *MockSourceFSAdapter_WriteFile_Call) Run(run func(path model.Path, content []byte, perm os.FileMode)) *MockSourceFSAdapter_WriteFile_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(model.Path), args[1].([]byte), args[2].(os.FileMode))
	})
	return _c
}

func (_c *MockSourceFSAdapter_WriteFile_Call) Return(_a0 error) *MockSourceFSAdapter_WriteFile_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockSourceFSAdapter_WriteFile_Call) RunAndReturn(run func(model.Path, []byte, os.FileMode) error) *MockSourceFSAdapter_WriteFile_Call {
	_c.Call.Return(run)
	return _c
}

// NewMockSourceFSAdapter creates a new instance of MockSourceFSAdapter. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockSourceFSAdapter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSourceFSAdapter {
	m := &MockSourceFSAdapter{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
