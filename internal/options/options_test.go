package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackPushPopRestoresPriorFrame(t *testing.T) {
	s := NewStack(Default())
	before := s.Top()

	s.Push()
	mutated := s.Top()
	mutated.FunctionArgumentChecking = false
	s.SetTop(mutated)
	assert.False(t, s.Top().FunctionArgumentChecking)

	s.Pop()
	assert.Equal(t, before, s.Top())
}

func TestStackDepthInvariant(t *testing.T) {
	s := NewStack(Default())
	require.Equal(t, 1, s.Depth())
	s.Push()
	s.Push()
	assert.Equal(t, 3, s.Depth())
	s.Pop()
	s.Pop()
	assert.Equal(t, 1, s.Depth())
}

func TestSpeedPresetDisablesChecksAndEnablesInlining(t *testing.T) {
	o := Speed()
	assert.False(t, o.FunctionArgumentChecking)
	assert.False(t, o.AttributeChecking)
	assert.True(t, o.InlineBool)
	assert.True(t, o.InlineEq)
	assert.True(t, o.InlineLen)
}

func TestStrictPresetEnablesOperatorFuncsAndDescriptors(t *testing.T) {
	o := Strict()
	assert.True(t, o.OperatorFuncs)
	assert.True(t, o.Descriptors)
}

func TestPresetRejectsUnknownName(t *testing.T) {
	_, ok := Preset("Turbo")
	assert.False(t, ok)
}

func TestPresetResolvesDocumentedNames(t *testing.T) {
	for _, name := range []string{"Debug", "Speed", "Strict"} {
		_, ok := Preset(name)
		assert.True(t, ok, "preset %q should resolve", name)
	}
}
