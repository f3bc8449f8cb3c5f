package emitter

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreyvit/pyjstranslate/internal/pyast"
)

// A generator function containing a for loop re-emits as the resumable
// state-machine object rather than a plain function body, and the yield
// inside the loop body must not land as a `case` label nested inside the
// for-loop's JS block — only directly under the switch.
func TestFunctionGeneratorWithFor(t *testing.T) {
	ctx := newTestContext()
	fn := &pyast.Function{
		Name:     "gen",
		ArgNames: []string{"n"},
		Code: &pyast.Stmt{Nodes: []pyast.Node{
			&pyast.For{
				Assign: &pyast.AssName{Name: "i"},
				List: &pyast.CallFunc{
					Node: &pyast.Name{Name: "range"},
					Args: []pyast.Node{&pyast.Name{Name: "n"}},
				},
				Body: &pyast.Stmt{Nodes: []pyast.Node{
					&pyast.Discard{Value: &pyast.Yield{
						Value: &pyast.BinOp{Kind: pyast.OpMul, Left: &pyast.Name{Name: "i"}, Right: &pyast.Name{Name: "i"}},
					}},
				}},
			},
		}},
	}

	Function(ctx, fn, nil)
	out := flush(ctx)

	require.Contains(t, out, "pyjslib.$pyjs__make_generator(")
	assert.Contains(t, out, "next: function()")
	assert.Contains(t, out, "send: function(v)")
	assert.Contains(t, out, "throw: function(e)")
	assert.Contains(t, out, "close: function()")
	assert.Contains(t, out, "pyjslib.StopIteration")
	assert.Contains(t, out, "$yield_value = ")
	assert.Contains(t, out, "switch ($generator_state[0])")

	assertFlatCaseLabels(t, out)
	assertUniqueCaseNumbers(t, out)
}

// Two sibling branches that each contain a yield must not mint colliding
// case numbers — each pause point gets its own number regardless of which
// branch it's in.
func TestFunctionGeneratorSiblingBranchesDontCollideCaseNumbers(t *testing.T) {
	ctx := newTestContext()
	mkYield := func(name string) *pyast.Stmt {
		return &pyast.Stmt{Nodes: []pyast.Node{
			&pyast.Discard{Value: &pyast.Yield{Value: &pyast.Name{Name: name}}},
		}}
	}
	fn := &pyast.Function{
		Name:     "gen",
		ArgNames: []string{"flag", "a", "b"},
		Code: &pyast.Stmt{Nodes: []pyast.Node{
			&pyast.If{
				Tests: [][2]pyast.Node{
					{&pyast.Name{Name: "flag"}, mkYield("a")},
				},
				Else: mkYield("b"),
			},
		}},
	}

	Function(ctx, fn, nil)
	out := flush(ctx)

	assertFlatCaseLabels(t, out)
	assertUniqueCaseNumbers(t, out)
}

// Every case label must be a direct child of the switch's body — i.e. sit
// at the same brace-nesting depth as every other case label — never one
// level deeper inside an if/while/for block that the statement emitter
// opened with a literal "{". Brace depth, not text indentation, is what
// JS syntax actually cares about here.
func assertFlatCaseLabels(t *testing.T, out string) {
	t.Helper()
	depth := 0
	var caseDepths []int
	re := regexp.MustCompile(`[{}]|case \d+:`)
	for _, tok := range re.FindAllString(out, -1) {
		switch {
		case tok == "{":
			depth++
		case tok == "}":
			depth--
		default:
			caseDepths = append(caseDepths, depth)
		}
	}
	require.NotEmpty(t, caseDepths, "expected at least one case label")
	want := caseDepths[0]
	for _, d := range caseDepths {
		assert.Equal(t, want, d, "found case labels at mismatched brace depths: %v", caseDepths)
	}
}

func assertUniqueCaseNumbers(t *testing.T, out string) {
	t.Helper()
	re := regexp.MustCompile(`case (\d+):`)
	seen := map[string]bool{}
	for _, m := range re.FindAllStringSubmatch(out, -1) {
		num := m[1]
		require.False(t, seen[num], "case %s emitted more than once", num)
		seen[num] = true
	}
}
