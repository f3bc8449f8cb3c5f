package emitter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andreyvit/pyjstranslate/internal/pyast"
)

// A simple class with __init__ gets the standard construction IIFE,
// a bound __init__ method, and an MD5 identity stamp.
func TestClassSimpleWithInit(t *testing.T) {
	ctx := newTestContext()
	cls := &pyast.Class{
		Name: "C",
		Code: &pyast.Stmt{Nodes: []pyast.Node{
			&pyast.Function{
				Name:     "__init__",
				ArgNames: []string{"self", "v"},
				Code: &pyast.Stmt{Nodes: []pyast.Node{
					&pyast.Assign{
						Nodes: []pyast.Node{&pyast.AssAttr{Expr: &pyast.Name{Name: "self"}, Attr: "v"}},
						Expr:  &pyast.Name{Name: "v"},
					},
				}},
			},
		}},
	}

	Class(ctx, cls, nil)
	out := flush(ctx)

	assert.Contains(t, out, "C = (function(){")
	assert.Contains(t, out, "pyjslib.$pyjs__class_instance(\"C\")")
	assert.Contains(t, out, "pyjslib.$pyjs__bind_method(")
	assert.Contains(t, out, "__md5__ =")
	assert.Contains(t, out, "pyjslib.$pyjs__class_function(")
	assert.Contains(t, out, ", [pyjslib.object]);")
}
