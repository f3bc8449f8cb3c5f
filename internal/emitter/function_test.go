package emitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreyvit/pyjstranslate/internal/options"
	"github.com/andreyvit/pyjstranslate/internal/pyast"
	"github.com/andreyvit/pyjstranslate/internal/translator"
)

func newTestContext() *translator.Context {
	return translator.NewContext("m", options.Default(),
		translator.BuiltinFunctions, translator.BuiltinClasses, translator.Literals)
}

// An identity function gets an arg-count check, a bare return, and
// non-instance bind/args descriptors.
func TestFunctionIdentity(t *testing.T) {
	ctx := newTestContext()
	fn := &pyast.Function{
		Name:     "f",
		ArgNames: []string{"x"},
		Code: &pyast.Stmt{Nodes: []pyast.Node{
			&pyast.Return{Value: &pyast.Name{Name: "x"}},
		}},
	}

	Function(ctx, fn, nil)
	out := flush(ctx)

	assert.Contains(t, out, "arguments.length < 1 || (1 >= 0 && arguments.length > 1)")
	assert.Contains(t, out, "return x;")
	assert.Contains(t, out, "f.__bind_type__ = 0;")
	assert.Contains(t, out, `f.__args__ = [null, null, ["x"]];`)
}

// A default value binds to the right positional slot even with a
// trailing **kwargs parameter in the signature.
func TestFunctionDefaultAndKwargs(t *testing.T) {
	ctx := newTestContext()
	fn := &pyast.Function{
		Name:     "g",
		ArgNames: []string{"a", "b", "kw"},
		Defaults: []pyast.Node{&pyast.Const{Kind: pyast.ConstInt, Value: "2"}},
		KwArgs:   true,
		Code: &pyast.Stmt{Nodes: []pyast.Node{
			&pyast.Return{Value: &pyast.Tuple{Nodes: []pyast.Node{
				&pyast.Name{Name: "a"}, &pyast.Name{Name: "b"}, &pyast.Name{Name: "kw"},
			}}},
		}},
	}

	Function(ctx, fn, nil)
	out := flush(ctx)

	require.Contains(t, out, "var a = arguments[0];")
	assert.Contains(t, out, "var kw = pyjslib.$pyjs__pop_kwargs(arguments);")
	assert.Contains(t, out, "if (b === undefined) { b = 2; }")
	assert.Contains(t, out, `g.__args__ = [null, "kw", ["a"], ["b", 2]];`)

	// Only "a" is required: "b" has a default and "kw" is the synthetic
	// **kwargs binding, neither should count toward the minimum.
	assert.Contains(t, out, "arguments.length < 1 || (2 >= 0 && arguments.length > 2)")
}

// *args shrinks the required count to the ordinary params preceding it;
// the synthetic *args binding name must not inflate the minimum.
func TestFunctionVarArgsRequiredCount(t *testing.T) {
	ctx := newTestContext()
	fn := &pyast.Function{
		Name:     "h",
		ArgNames: []string{"a", "rest"},
		VarArgs:  true,
		Code: &pyast.Stmt{Nodes: []pyast.Node{
			&pyast.Return{Value: &pyast.Name{Name: "a"}},
		}},
	}

	Function(ctx, fn, nil)
	out := flush(ctx)

	assert.Contains(t, out, "arguments.length < 1 || (-1 >= 0 && arguments.length > -1)")
}

func flush(ctx *translator.Context) string {
	return ctx.PopBuffer()
}
