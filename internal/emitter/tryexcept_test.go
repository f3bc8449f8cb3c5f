package emitter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andreyvit/pyjstranslate/internal/pyast"
)

// A try/except/else clause lowers onto the TryElse sentinel protocol.
func TestTryExceptElse(t *testing.T) {
	ctx := newTestContext()
	n := &pyast.TryExcept{
		Body: &pyast.Stmt{Nodes: []pyast.Node{
			&pyast.Raise{ExprType: &pyast.Name{Name: "ValueError"}},
		}},
		Handlers: []pyast.TryHandler{
			{ExprList: &pyast.Name{Name: "ValueError"}, Body: &pyast.Pass{}},
		},
		Else: &pyast.Stmt{Nodes: []pyast.Node{&pyast.Pass{}}},
	}

	Stmt(ctx, n, nil)
	out := flush(ctx)

	assert.Contains(t, out, "throw pyjslib.TryElse;")
	assert.Contains(t, out, "=== 'TryElse'")
	assert.Contains(t, out, "pyjslib.isinstance(")
}

// A sole bare `except:` handler must not be preceded by a dangling `else`,
// since JS requires `else` to directly follow an `if`.
func TestTryExceptBareHandlerAlone(t *testing.T) {
	ctx := newTestContext()
	n := &pyast.TryExcept{
		Body: &pyast.Stmt{Nodes: []pyast.Node{
			&pyast.Raise{ExprType: &pyast.Name{Name: "ValueError"}},
		}},
		Handlers: []pyast.TryHandler{
			{Body: &pyast.Pass{}},
		},
	}

	Stmt(ctx, n, nil)
	out := flush(ctx)

	assert.NotContains(t, out, "\telse {")
	assert.NotContains(t, out, "else { throw")
}

// A typed handler followed by a catch-all bare `except:` must lower to an
// if/else cascade, not an if-block followed by an unconditional rethrow.
func TestTryExceptTypedThenBareHandler(t *testing.T) {
	ctx := newTestContext()
	n := &pyast.TryExcept{
		Body: &pyast.Stmt{Nodes: []pyast.Node{
			&pyast.Raise{ExprType: &pyast.Name{Name: "ValueError"}},
		}},
		Handlers: []pyast.TryHandler{
			{ExprList: &pyast.Name{Name: "ValueError"}, Body: &pyast.Pass{}},
			{Body: &pyast.Pass{}},
		},
	}

	Stmt(ctx, n, nil)
	out := flush(ctx)

	assert.Contains(t, out, "if (pyjslib.isinstance(")
	assert.Contains(t, out, "}\n\telse {")
	assert.NotContains(t, out, "else { throw")
}

func TestTryFinallyGuardsAgainstGeneratorReentry(t *testing.T) {
	ctx := newTestContext()
	ctx.SetIsGenerator(true)
	n := &pyast.TryFinally{
		Body:  &pyast.Stmt{Nodes: []pyast.Node{&pyast.Pass{}}},
		Final: &pyast.Stmt{Nodes: []pyast.Node{&pyast.Pass{}}},
	}

	Stmt(ctx, n, nil)
	out := flush(ctx)

	assert.Contains(t, out, "if (!$yielding) {")
}
