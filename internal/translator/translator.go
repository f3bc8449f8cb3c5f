package translator

import (
	"strings"

	"github.com/andreyvit/pyjstranslate/internal/logger"
	"github.com/andreyvit/pyjstranslate/internal/options"
	"github.com/andreyvit/pyjstranslate/internal/pyast"
)

// Emit is the statement emitter's entry point, wired in by internal/emitter
// at init time to avoid an import cycle (emitter imports translator for
// Context; translator can't import emitter back). cmd/pyjstranslate and
// internal/project both go through TranslateModule, never emitter
// directly, so the indirection is invisible outside this package.
var Emit func(ctx *Context, node pyast.Node, klass KlassRef)

// KlassRef mirrors internal/emitter.KlassRef without creating the import
// cycle Emit above avoids.
type KlassRef = *Klass

// TranslateModule runs the translation flow end to end for one module: it
// walks mod's top-level body through the statement emitter, wraps the
// result in the loaded_modules closure shape, and appends the PYJS_DEPS
// trailer. Recovered translator/config errors are returned as
// *logger.Msg-backed errors; the caller should only commit the output file
// once this returns a nil error, since a partially emitted module is
// useless to a downstream bundler.
func TranslateModule(name string, mod *pyast.Module, opts options.Options) (out string, warnings []logger.Msg, err error) {
	if Emit == nil {
		panic("translator: Emit not wired — internal/emitter must be imported for its init() to run")
	}

	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()

	ctx := NewContext(name, opts, BuiltinFunctions, BuiltinClasses, Literals)
	for _, stmt := range mod.Body {
		Emit(ctx, stmt, nil)
	}
	if ctx.IndentLevel() != 0 {
		panic(logger.NewTranslationError(name, mod.Line(), "translator bug: indentation did not return to zero at module end"))
	}
	body := ctx.PopBuffer()

	var b strings.Builder
	b.WriteString("$pyjs.loaded_modules['")
	b.WriteString(name)
	b.WriteString("'] = function(__mod_name__){\n")
	b.WriteString("\tif ($pyjs.__modules__['")
	b.WriteString(name)
	b.WriteString("']) return $pyjs.__modules__['")
	b.WriteString(name)
	b.WriteString("'];\n")
	b.WriteString("\tvar self = this;\n")
	b.WriteString("\t$pyjs.__modules__['")
	b.WriteString(name)
	b.WriteString("'] = self;\n")
	b.WriteString(body)
	b.WriteString("\treturn this;\n")
	b.WriteString("};\n")
	if !strings.Contains(name, ".") {
		b.WriteString("var ")
		b.WriteString(name)
		b.WriteString(";\n")
	}
	b.WriteString(ctx.DepsTrailer())

	return b.String(), ctx.Warnings.Warnings(), nil
}
