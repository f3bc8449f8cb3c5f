package emitter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andreyvit/pyjstranslate/internal/pyast"
	"github.com/andreyvit/pyjstranslate/internal/scope"
)

// Augmented assignment on a subscript target must not double-evaluate
// the head or index expressions.
func TestAugAssignOnSubscriptUsesTemporaries(t *testing.T) {
	ctx := newTestContext()
	ctx.Scope.Push("")
	ctx.Scope.Add(scope.Variable, "a", "a")
	ctx.Scope.Add(scope.Variable, "i", "i")

	n := &pyast.AugAssign{
		Target: &pyast.Subscript{
			Expr: &pyast.Name{Name: "a"},
			Subs: []pyast.Node{&pyast.Name{Name: "i"}},
		},
		Op:   "+=",
		Expr: &pyast.Const{Kind: pyast.ConstInt, Value: "1"},
	}

	Stmt(ctx, n, nil)
	out := flush(ctx)

	assert.Contains(t, out, "var $h0 = a;")
	assert.Contains(t, out, "var $i0 = i;")
	assert.Contains(t, out, "$h0.__setitem__($i0, ($h0.__getitem__($i0) + 1));")
}

func TestImportRecordsParentPackages(t *testing.T) {
	ctx := newTestContext()
	emitImport(ctx, &pyast.Import{Names: [][2]string{{"a.b.c", ""}}})

	deps := ctx.Imports()
	assert.Equal(t, []string{"a", "a.b", "a.b.c"}, deps)
}

func TestForLoopTranslatesIterationProtocol(t *testing.T) {
	ctx := newTestContext()
	n := &pyast.For{
		Assign: &pyast.AssName{Name: "x"},
		List:   &pyast.Name{Name: "xs"},
		Body:   &pyast.Stmt{Nodes: []pyast.Node{&pyast.Pass{}}},
	}

	Stmt(ctx, n, nil)
	out := flush(ctx)

	assert.Contains(t, out, ".__iter__();")
	assert.Contains(t, out, "catch ($stop) { if ($stop instanceof pyjslib.StopIteration) break; throw $stop; }")
}
