package pyast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalModuleDecodesFunctionReturnAndBinOp(t *testing.T) {
	doc := `{
		"kind": "Module",
		"name": "m",
		"body": [
			{
				"kind": "Function",
				"lineno": 3,
				"name": "add",
				"argnames": ["a", "b"],
				"defaults": [{"kind": "Const", "const_kind": "Int", "literal": "0"}],
				"varargs": false,
				"kwargs": false,
				"code": {
					"kind": "Stmt",
					"nodes": [
						{
							"kind": "Return",
							"value": {
								"kind": "Add",
								"left": {"kind": "Name", "name": "a"},
								"right": {"kind": "Name", "name": "b"}
							}
						}
					]
				}
			}
		]
	}`

	mod, err := UnmarshalModule([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "m", mod.Name)
	require.Len(t, mod.Body, 1)

	fn, ok := mod.Body[0].(*Function)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	assert.Equal(t, 3, fn.Line())
	assert.Equal(t, []string{"a", "b"}, fn.ArgNames)
	require.Len(t, fn.Defaults, 1)
	def, ok := fn.Defaults[0].(*Const)
	require.True(t, ok)
	assert.Equal(t, ConstInt, def.Kind)
	assert.Equal(t, "0", def.Value)

	body, ok := fn.Code.(*Stmt)
	require.True(t, ok)
	require.Len(t, body.Nodes, 1)
	ret, ok := body.Nodes[0].(*Return)
	require.True(t, ok)
	bin, ok := ret.Value.(*BinOp)
	require.True(t, ok)
	assert.Equal(t, OpAdd, bin.Kind)
}

func TestUnmarshalModuleDecodesWhileAssertAndCompare(t *testing.T) {
	doc := `{
		"kind": "Module",
		"name": "m",
		"body": [
			{
				"kind": "While",
				"test": {"kind": "Name", "name": "running"},
				"body": {"kind": "Stmt", "nodes": [{"kind": "Pass"}]}
			},
			{
				"kind": "Assert",
				"test": {
					"kind": "Compare",
					"expr": {"kind": "Name", "name": "x"},
					"ops": [{"op": "<", "expr": {"kind": "Name", "name": "y"}}]
				}
			}
		]
	}`

	mod, err := UnmarshalModule([]byte(doc))
	require.NoError(t, err)
	require.Len(t, mod.Body, 2)

	w, ok := mod.Body[0].(*While)
	require.True(t, ok)
	name, ok := w.Test.(*Name)
	require.True(t, ok)
	assert.Equal(t, "running", name.Name)

	a, ok := mod.Body[1].(*Assert)
	require.True(t, ok)
	cmp, ok := a.Test.(*Compare)
	require.True(t, ok)
	require.Len(t, cmp.Ops, 1)
	assert.Equal(t, "<", cmp.Ops[0].Op)
}

func TestUnmarshalModuleRejectsUnknownKind(t *testing.T) {
	doc := `{"kind": "Module", "name": "m", "body": [{"kind": "Bogus"}]}`
	_, err := UnmarshalModule([]byte(doc))
	assert.Error(t, err)
}

func TestUnmarshalModuleRejectsNonModuleTopLevel(t *testing.T) {
	doc := `{"kind": "Pass"}`
	_, err := UnmarshalModule([]byte(doc))
	assert.Error(t, err)
}
