package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStack() *Stack {
	return New("$pyjs.loaded_modules['m']",
		map[string]string{"len": "pyjslib.len"},
		map[string]string{"object": "pyjslib.object"},
		map[string]string{"True": "true", "None": "null"},
	)
}

func TestLookupFallsThroughToBuiltins(t *testing.T) {
	s := newTestStack()
	s.Push("")

	res, ok := s.Lookup("len")
	require.True(t, ok)
	assert.Equal(t, Builtin, res.Kind)
	assert.Equal(t, "pyjslib.len", res.Emitted)
	assert.False(t, res.IsLocal)
}

func TestLookupPrefersInnermostFrame(t *testing.T) {
	s := newTestStack()
	s.Push("")
	s.Add(Variable, "x", "x")
	s.Push("")
	s.Add(Variable, "x", "x")

	res, ok := s.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, 0, res.Depth)
	assert.True(t, res.IsLocal)
}

func TestPopMakesFrameUnreachable(t *testing.T) {
	s := newTestStack()
	s.Push("")
	s.Push("")
	s.Add(Variable, "inner", "inner")
	s.Pop()

	_, ok := s.Lookup("inner")
	assert.False(t, ok)
}

func TestResolveQualifiesNonLocalWithModulePrefix(t *testing.T) {
	s := newTestStack()
	s.Push("")

	assert.Equal(t, "$pyjs.loaded_modules['m'].undeclared", s.Resolve("undeclared"))
}

func TestPoppedScopePrefixFrameIsUnreachable(t *testing.T) {
	s := newTestStack()
	s.Push("")
	s.Push("$cls")
	s.Add(Method, "run", "run")
	s.Pop()
	s.Push("")

	// "run" is no longer reachable once its frame is popped; this just
	// documents that a popped frame's prefix cannot leak into resolution.
	_, ok := s.Lookup("run")
	assert.False(t, ok)
}

func TestResolveBuiltinBypassesModulePrefix(t *testing.T) {
	s := newTestStack()
	s.Push("")

	assert.Equal(t, "pyjslib.len", s.Resolve("len"))
}

func TestMangledNamesAreReservedWordSafe(t *testing.T) {
	s := newTestStack()
	s.Push("")
	s.Add(Variable, "var", "var")

	res, ok := s.Lookup("var")
	require.True(t, ok)
	assert.Equal(t, "$$var", res.Emitted)
}
