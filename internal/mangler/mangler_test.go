package mangler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMangleVariable(t *testing.T) {
	assert.Equal(t, "$$var", MangleVariable("var"))
	assert.Equal(t, "$$yield", MangleVariable("yield"))
	assert.Equal(t, "total", MangleVariable("total"))
}

func TestMangleAttr(t *testing.T) {
	assert.Equal(t, "$$prototype", MangleAttr("prototype"))
	assert.Equal(t, "$$name", MangleAttr("name"))
	assert.Equal(t, "value", MangleAttr("value"))
}

func TestJoinAttrsDotted(t *testing.T) {
	assert.Equal(t, "obj.foo.bar", JoinAttrs("obj", "foo", "bar"))
	assert.Equal(t, "obj.$$prototype", JoinAttrs("obj", "prototype"))
}

func TestJoinAttrsBracketed(t *testing.T) {
	assert.Equal(t, "obj['foo-bar']", JoinAttrs("obj", "foo-bar"))
	assert.Equal(t, "obj['it\\'s']", JoinAttrs("obj", "it's"))
}

func TestJoinAttrsUnwrapsPreQuotedSegments(t *testing.T) {
	assert.Equal(t, "obj.foo", JoinAttrs("obj", "'foo'"))
}
