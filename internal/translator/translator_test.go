package translator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/andreyvit/pyjstranslate/internal/emitter"
	"github.com/andreyvit/pyjstranslate/internal/options"
	"github.com/andreyvit/pyjstranslate/internal/pyast"
	"github.com/andreyvit/pyjstranslate/internal/translator"
)

// End-to-end: statements assigning constants and printing them, the
// "pure code" shape the round-trip property is scoped to.
func TestTranslateModuleWrapsLoadedModulesShape(t *testing.T) {
	mod := &pyast.Module{
		Name: "mypkg.sub",
		Body: []pyast.Node{
			&pyast.Assign{
				Nodes: []pyast.Node{&pyast.AssName{Name: "x"}},
				Expr:  &pyast.Const{Kind: pyast.ConstInt, Value: "1"},
			},
			&pyast.Print{Nodes: []pyast.Node{&pyast.Name{Name: "x"}}},
		},
	}

	out, warnings, err := translator.TranslateModule("mypkg.sub", mod, options.Default())
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Contains(t, out, "$pyjs.loaded_modules['mypkg.sub'] = function(__mod_name__){")
	assert.Contains(t, out, "return this;\n};\n")
	assert.Contains(t, out, "// PYJS_DEPS: []")
	assert.NotContains(t, out, "var mypkg.sub;", "dotted module names get no top-level var declaration")
}

func TestTranslateModuleDeclaresTopLevelVarForDotlessName(t *testing.T) {
	mod := &pyast.Module{Name: "standalone", Body: nil}

	out, _, err := translator.TranslateModule("standalone", mod, options.Default())
	require.NoError(t, err)

	assert.Contains(t, out, "var standalone;\n")
}

func TestTranslateModuleDepsTrailerListsImportClosure(t *testing.T) {
	mod := &pyast.Module{
		Name: "m",
		Body: []pyast.Node{
			&pyast.Import{Names: [][2]string{{"a.b.c", ""}}},
		},
	}

	out, _, err := translator.TranslateModule("m", mod, options.Default())
	require.NoError(t, err)

	assert.Contains(t, out, "// PYJS_DEPS: ['a', 'a.b', 'a.b.c']")
}

func TestTranslateModuleAbortsOnTranslationError(t *testing.T) {
	mod := &pyast.Module{
		Name: "m",
		Body: []pyast.Node{
			&pyast.Compare{
				Expr: &pyast.Name{Name: "a"},
				Ops: []pyast.CompareOp{
					{Op: "<", Expr: &pyast.Name{Name: "b"}},
					{Op: "<", Expr: &pyast.Name{Name: "c"}},
				},
			},
		},
	}

	_, _, err := translator.TranslateModule("m", mod, options.Default())
	assert.Error(t, err)
}
