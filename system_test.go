package ecs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSystem struct {
	*BaseSystem
	runs int
	err  error
}

func newCountingSystem(priority int64) *countingSystem {
	return &countingSystem{BaseSystem: NewBaseSystem(priority)}
}

func (s *countingSystem) Process(options any) error {
	s.runs++
	return s.err
}

func (s *countingSystem) Run(options any, mode SystemMode) error {
	return RunSystem(s, options, mode)
}

// hookRecordingSystem records every lifecycle hook and OnError call that
// reaches it through the System interface.
type hookRecordingSystem struct {
	*countingSystem
	hooks []string
	errs  []error
}

func newHookRecordingSystem(priority int64) *hookRecordingSystem {
	return &hookRecordingSystem{countingSystem: newCountingSystem(priority)}
}

func (s *hookRecordingSystem) OnAddedToEngine(*Engine)     { s.hooks = append(s.hooks, "added") }
func (s *hookRecordingSystem) OnRemovedFromEngine(*Engine) { s.hooks = append(s.hooks, "removed") }
func (s *hookRecordingSystem) OnActivated()                { s.hooks = append(s.hooks, "activated") }
func (s *hookRecordingSystem) OnDeactivated()              { s.hooks = append(s.hooks, "deactivated") }
func (s *hookRecordingSystem) OnError(err error)           { s.errs = append(s.errs, err) }

func (s *hookRecordingSystem) Run(options any, mode SystemMode) error {
	return RunSystem(s, options, mode)
}

func TestBaseSystemDefaultsToActive(t *testing.T) {
	s := NewBaseSystem(0)
	assert.True(t, s.IsActive())
}

func TestBaseSystemSetActiveFlipsFlag(t *testing.T) {
	s := NewBaseSystem(0)
	s.SetActive(false)
	assert.False(t, s.IsActive())
}

func TestBaseSystemSetPriorityChangesReportedPriority(t *testing.T) {
	s := NewBaseSystem(5)
	s.SetPriority(10)
	assert.Equal(t, int64(10), s.Priority())
}

func TestBaseSystemProcessDefaultIsNilError(t *testing.T) {
	s := NewBaseSystem(0)
	assert.NoError(t, s.Process(nil))
}

func TestConcreteSystemOverridesProcess(t *testing.T) {
	s := newCountingSystem(1)
	require.NoError(t, s.Process(nil))
	assert.Equal(t, 1, s.runs)
}

func TestConcreteSystemProcessPropagatesError(t *testing.T) {
	s := newCountingSystem(1)
	s.err = errors.New("boom")
	assert.EqualError(t, s.Process(nil), "boom")
}

func TestFuncSystemRunsSuppliedFunction(t *testing.T) {
	called := false
	s := NewFuncSystem(0, func(options any) error {
		called = true
		return nil
	})
	require.NoError(t, s.Process("opts"))
	assert.True(t, called)
}

func TestFuncSystemNilFnIsNoOp(t *testing.T) {
	s := NewFuncSystem(0, nil)
	assert.NoError(t, s.Process(nil))
}

func TestBaseSystemDefaultsToNotUpdating(t *testing.T) {
	s := NewBaseSystem(0)
	assert.False(t, s.IsUpdating())
}

func TestRunSystemMarksUpdatingDuringProcessOnly(t *testing.T) {
	s := NewFuncSystem(0, nil)
	var updatingDuringProcess bool
	s.Fn = func(options any) error {
		updatingDuringProcess = s.IsUpdating()
		return nil
	}

	require.NoError(t, RunSystem(s, nil, SYNC))
	assert.True(t, updatingDuringProcess)
	assert.False(t, s.IsUpdating())
}

func TestRunSystemRoutesErrorThroughOnError(t *testing.T) {
	s := newHookRecordingSystem(0)
	s.err = errors.New("boom")

	err := s.Run(nil, SYNC)
	assert.EqualError(t, err, "boom")
	require.Len(t, s.errs, 1)
	assert.EqualError(t, s.errs[0], "boom")
}

func TestRunSystemAsyncRunsProcessAndWaits(t *testing.T) {
	s := newCountingSystem(0)
	require.NoError(t, s.Run(nil, ASYNC))
	assert.Equal(t, 1, s.runs)
}

func TestSystemModeStringRendersKnownModes(t *testing.T) {
	assert.Equal(t, "sync", SYNC.String())
	assert.Equal(t, "async", ASYNC.String())
}
