package emitter

import "github.com/andreyvit/pyjstranslate/internal/translator"

// init wires Stmt into translator.Emit so internal/translator can drive the
// top-level walk without importing internal/emitter back, which
// would otherwise be a cycle: emitter already imports translator for
// Context, KlassRef and the runtime tables.
func init() {
	translator.Emit = Stmt
}
