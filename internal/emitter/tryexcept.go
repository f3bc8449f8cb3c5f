package emitter

import (
	"github.com/andreyvit/pyjstranslate/internal/pyast"
	"github.com/andreyvit/pyjstranslate/internal/translator"
)

// emitTryExcept implements the try/except (and try/except/else)
// lowering. Python's try/except/else has no native JS equivalent on a
// single catch block, so the original's TryElse sentinel is used: the try
// body ends by throwing it, and the catch handler special-cases it to run
// the else branch instead of real exception handling.
//
// A yield reachable from the try body or a handler body still needs a
// genuine JS try/catch wrapped around it to keep exception delivery
// working, so — unlike if/while/for — this isn't flattened into the
// state-machine's case sequence; the try/catch stays a real nested JS
// block. The only generator-aware output here is the resume case printed
// after the whole statement, a sibling of the try/catch rather than
// anything nested inside it, so it's still a valid direct child of the
// switch whenever this statement itself sits at the state machine's flat
// top level.
func emitTryExcept(ctx *translator.Context, n *pyast.TryExcept, klass KlassRef) {
	errVar := ctx.Uniqid("$err")

	ctx.Printf("%stry {\n", ctx.Indent())
	ctx.PushIndent()
	Stmt(ctx, n.Body, klass)
	if n.Else != nil {
		ctx.Printf("%sthrow pyjslib.TryElse;\n", ctx.Indent())
	}
	ctx.PopIndent()
	ctx.Printf("%s} catch (%s) {\n", ctx.Indent(), errVar)
	ctx.PushIndent()

	mapped := ctx.Uniqid("$e")
	ctx.Printf("%svar %s = pyjslib.$pyjs__map_error(%s);\n", ctx.Indent(), mapped, errVar)

	if n.Else != nil {
		ctx.Printf("%sif (%s.__name__ === 'TryElse') {\n", ctx.Indent(), mapped)
		ctx.PushIndent()
		Stmt(ctx, n.Else, klass)
		ctx.PopIndent()
		ctx.Printf("%s} else {\n", ctx.Indent())
		ctx.PushIndent()
		emitHandlerChain(ctx, n.Handlers, mapped, klass)
		ctx.PopIndent()
		ctx.Printf("%s}\n", ctx.Indent())
	} else {
		emitHandlerChain(ctx, n.Handlers, mapped, klass)
	}

	ctx.PopIndent()
	ctx.Printf("%s}\n", ctx.Indent())
	if ctx.IsGenerator() {
		ctx.Printf("%scase %d:\n", ctx.Indent(), ctx.GeneratorSwitchCase(true))
	}
}

// emitHandlerChain lowers the handler list to an if/else-if cascade keyed
// on pyjslib.isinstance, falling through to a rethrow of mapped when no
// handler matches. A bare `except:` (h.ExprList == nil) only ever appears
// last, same as valid Python requires, so it becomes the cascade's
// terminal `else` clause instead of another guarded branch — emitting it
// as its own unconditional `if`-less block would either strand a stray
// `else` with nothing to attach to (single bare handler) or run
// unconditionally right after a typed branch instead of only when that
// branch didn't match (typed handler followed by a catch-all).
func emitHandlerChain(ctx *translator.Context, handlers []pyast.TryHandler, mapped string, klass KlassRef) {
	first := true
	for _, h := range handlers {
		if h.ExprList == nil {
			if first {
				ctx.Printf("%s{\n", ctx.Indent())
			} else {
				ctx.Printf("%selse {\n", ctx.Indent())
			}
			ctx.PushIndent()
			if h.Name != nil {
				bindAssignTarget(ctx, h.Name, mapped)
			}
			Stmt(ctx, h.Body, klass)
			ctx.PopIndent()
			ctx.Printf("%s}\n", ctx.Indent())
			return
		}

		kw := "if"
		if !first {
			kw = "else if"
		}
		cls := Expr(ctx, h.ExprList, klass)
		ctx.Printf("%s%s (pyjslib.isinstance(%s, %s)) {\n", ctx.Indent(), kw, mapped, cls)
		ctx.PushIndent()
		if h.Name != nil {
			bindAssignTarget(ctx, h.Name, mapped)
		}
		Stmt(ctx, h.Body, klass)
		ctx.PopIndent()
		ctx.Printf("%s}\n", ctx.Indent())
		first = false
	}
	ctx.Printf("%selse { throw %s; }\n", ctx.Indent(), mapped)
}

// emitTryFinally implements the try/finally lowering: the
// try/except lowering (if any) wrapped in an outer try{...}finally{...}.
// Inside a generator, the finally block must not run again on a resumed
// re-entry, guarded by a $yielding check.
func emitTryFinally(ctx *translator.Context, n *pyast.TryFinally, klass KlassRef) {
	ctx.Printf("%stry {\n", ctx.Indent())
	ctx.PushIndent()
	Stmt(ctx, n.Body, klass)
	ctx.PopIndent()
	ctx.Printf("%s} finally {\n", ctx.Indent())
	ctx.PushIndent()
	if ctx.IsGenerator() {
		ctx.Printf("%sif (!$yielding) {\n", ctx.Indent())
		ctx.PushIndent()
		Stmt(ctx, n.Final, klass)
		ctx.PopIndent()
		ctx.Printf("%s}\n", ctx.Indent())
	} else {
		Stmt(ctx, n.Final, klass)
	}
	ctx.PopIndent()
	ctx.Printf("%s}\n", ctx.Indent())
}
