// Package genxform implements the Generator Transform: any
// function body containing a `yield` is re-emitted as a resumable state
// machine. The transform is a second pass within a function emitter: a
// buffered first emission is discarded and re-emitted if `yield` was
// observed (the "Generators" design note). A single re-emit
// suffices; nested generators fall out of the recursion naturally, since
// each nested function/lambda gets its own trial-then-maybe-discard pass
// via the same Transform call.
//
// Grounded on the original translator.py's save/restore of
// self.is_generator around nested function emission, reimplemented here
// as the explicit Context.ResetGeneratorDetection / SetEmittingGenBody
// pair rather than a mutable instance attribute ("Mutable
// global options → explicit context" note, applied the same way here).
package genxform

import (
	"fmt"
	"strings"

	"github.com/andreyvit/pyjstranslate/internal/pyast"
	"github.com/andreyvit/pyjstranslate/internal/translator"
)

// BodyEmitter is the callback the function emitter supplies: write the
// translated body of fn to ctx's active output buffer.
type BodyEmitter func(ctx *translator.Context, body pyast.Node)

// Result is what Transform reports back to the function emitter.
type Result struct {
	IsGenerator bool
	// Body is the JS source for the function's body — either the ordinary
	// trial emission (IsGenerator == false) or the wrapped state-machine
	// object construction (IsGenerator == true). Either way the function
	// emitter can drop this verbatim where the function body goes.
	Body string
}

// Transform runs the buffered trial-and-discard protocol described above.
func Transform(ctx *translator.Context, body pyast.Node, emit BodyEmitter) Result {
	saveGenerator := ctx.IsGenerator()
	ctx.ResetGeneratorDetection()

	ctx.PushBuffer()
	emit(ctx, body)
	trial := ctx.PopBuffer()

	if !ctx.IsGenerator() {
		ctx.SetIsGenerator(saveGenerator)
		return Result{IsGenerator: false, Body: trial}
	}

	// A function containing both `yield` and a raw JS return (detected via
	// a word-boundary scan over __pyjamas__.JS(...) literal content) can't
	// have source tracking on, since the two rewrites conflict under the
	// state-machine rewrite.
	hasRawReturn := containsRawJSReturn(body)
	if hasRawReturn {
		opts := ctx.Options.Top()
		opts.SourceTracking = false
		ctx.Options.SetTop(opts)
	}

	ctx.SetEmittingGenBody(true)
	ctx.PushBuffer()
	emit(ctx, body)
	caseBody := ctx.PopBuffer()
	// A fresh, never-before-issued case number for "generator exhausted" —
	// reusing the last yield's resume case here would duplicate that case
	// label.
	finalCase := ctx.GeneratorSwitchCase(true)
	ctx.SetEmittingGenBody(false)
	hoisted := ctx.TakeHoistedVars()

	wrapped := wrapStateMachine(caseBody, finalCase, hoisted)
	ctx.SetIsGenerator(saveGenerator)
	return Result{IsGenerator: true, Body: wrapped}
}

// wrapStateMachine builds the generator object:
// next/send/throw/close/__iter__, a nested $next function whose control
// flow is a single flat switch on $generator_state[0], wrapped in a
// while(true) trampoline so every resume point — however deeply the
// corresponding Python code was nested inside if/while/for — can jump
// straight to the right case with "$generator_state[0] = k; continue;"
// instead of needing a case label nested inside a JS block (illegal: a
// case is only a valid direct child of a switch's body).
func wrapStateMachine(caseBody string, finalCase int, hoisted []string) string {
	var b strings.Builder
	b.WriteString("(function(){\n")
	b.WriteString("\tvar $generator_state = [0];\n")
	b.WriteString("\tvar $yield_value = null;\n")
	b.WriteString("\tvar $yielding = false;\n")
	b.WriteString("\tvar $exc = null;\n")
	b.WriteString("\tvar $done = false;\n")
	if len(hoisted) > 0 {
		fmt.Fprintf(&b, "\tvar %s;\n", strings.Join(hoisted, ", "))
	}
	b.WriteString("\tfunction $next() {\n")
	b.WriteString("\t\t$yielding = false;\n")
	b.WriteString("\t\twhile (true) {\n")
	b.WriteString("\t\tswitch ($generator_state[0]) {\n")
	b.WriteString("\t\tcase 0:\n")
	b.WriteString(caseBody)
	fmt.Fprintf(&b, "\t\tcase %d:\n", finalCase)
	b.WriteString("\t\t\t$done = true;\n")
	b.WriteString("\t\t\tthrow pyjslib.StopIteration();\n")
	b.WriteString("\t\t}\n")
	b.WriteString("\t\t}\n")
	b.WriteString("\t}\n")
	b.WriteString("\treturn pyjslib.$pyjs__make_generator({\n")
	b.WriteString("\t\tnext: function(){ if ($done) throw pyjslib.StopIteration(); $next(); if ($yielding) return $yield_value; return undefined; },\n")
	b.WriteString("\t\tsend: function(v){ $yield_value = v; return this.next(); },\n")
	b.WriteString("\t\tthrow: function(e){ if ($done) throw e; $exc = e; return this.next(); },\n")
	b.WriteString("\t\tclose: function(){ $done = true; },\n")
	b.WriteString("\t\t__iter__: function(){ return this; }\n")
	b.WriteString("\t});\n")
	b.WriteString("})()")
	return b.String()
}

// ContainsYield reports whether body contains a yield reachable without
// crossing into a nested function/lambda (which gets its own independent
// trial-and-discard pass and thus its own generator detection). Used by the
// statement emitter to decide whether an if/while/for construct needs
// the flattened, resumable case-sequence form or can keep its ordinary
// nested-block shape.
func ContainsYield(body pyast.Node) bool {
	found := false
	pyast.Walk(body, func(n pyast.Node) bool {
		if found {
			return false
		}
		switch n.(type) {
		case *pyast.Yield:
			found = true
			return false
		case *pyast.Function, *pyast.Lambda:
			return false
		}
		return true
	})
	return found
}

// containsRawJSReturn does a simple word-boundary scan for "return" inside
// any __pyjamas__.JS("...") literal reachable from body, without needing
// to fully parse the literal's embedded text.
func containsRawJSReturn(body pyast.Node) bool {
	found := false
	pyast.Walk(body, func(n pyast.Node) bool {
		if found {
			return false
		}
		if call, ok := n.(*pyast.CallFunc); ok {
			if isJSIntrinsic(call) && len(call.Args) > 0 {
				if lit, ok := call.Args[0].(*pyast.Const); ok && lit.Kind == pyast.ConstString {
					if wordMatch(lit.Value, "return") {
						found = true
						return false
					}
				}
			}
		}
		return true
	})
	return found
}

func isJSIntrinsic(call *pyast.CallFunc) bool {
	ga, ok := call.Node.(*pyast.Getattr)
	if !ok || ga.Attr != "JS" {
		return false
	}
	name, ok := ga.Expr.(*pyast.Name)
	return ok && name.Name == "__pyjamas__"
}

func wordMatch(text, word string) bool {
	idx := 0
	for {
		i := indexFrom(text, word, idx)
		if i < 0 {
			return false
		}
		before := i == 0 || !isWordByte(text[i-1])
		after := i+len(word) >= len(text) || !isWordByte(text[i+len(word)])
		if before && after {
			return true
		}
		idx = i + 1
	}
}

func indexFrom(text, sub string, from int) int {
	if from >= len(text) {
		return -1
	}
	rel := strings.Index(text[from:], sub)
	if rel < 0 {
		return -1
	}
	return from + rel
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
