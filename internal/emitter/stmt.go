package emitter

import (
	"fmt"
	"strings"

	"github.com/andreyvit/pyjstranslate/internal/genxform"
	"github.com/andreyvit/pyjstranslate/internal/logger"
	"github.com/andreyvit/pyjstranslate/internal/mangler"
	"github.com/andreyvit/pyjstranslate/internal/pyast"
	"github.com/andreyvit/pyjstranslate/internal/scope"
	"github.com/andreyvit/pyjstranslate/internal/translator"
)

// Stmt translates one statement node, writing directly to ctx's active
// output buffer. It drives indentation and, when
// source_tracking is on, updates $pyjs.track.lineno per statement.
func Stmt(ctx *translator.Context, node pyast.Node, klass KlassRef) {
	if ctx.Options.Top().SourceTracking {
		ctx.Printf("%s$pyjs.track.lineno = %d;\n", ctx.Indent(), node.Line())
	}

	switch n := node.(type) {
	case *pyast.Stmt:
		for _, s := range n.Nodes {
			Stmt(ctx, s, klass)
		}
	case *pyast.Function:
		Function(ctx, n, klass)
	case *pyast.Class:
		Class(ctx, n, klass)
	case *pyast.Return:
		emitReturn(ctx, n)
	case *pyast.Yield:
		emitYieldStmt(ctx, n, klass)
	case *pyast.Break:
		ctx.Printf("%sbreak;\n", ctx.Indent())
	case *pyast.Continue:
		ctx.Printf("%scontinue;\n", ctx.Indent())
	case *pyast.Pass:
		// nothing to emit
	case *pyast.Global:
		for _, name := range n.Names {
			ctx.Scope.Add(scope.GlobalKind, name, name)
		}
	case *pyast.If:
		emitIf(ctx, n, klass)
	case *pyast.For:
		emitFor(ctx, n, klass)
	case *pyast.While:
		emitWhile(ctx, n, klass)
	case *pyast.TryExcept:
		emitTryExcept(ctx, n, klass)
	case *pyast.TryFinally:
		emitTryFinally(ctx, n, klass)
	case *pyast.Raise:
		emitRaise(ctx, n, klass)
	case *pyast.Assert:
		emitAssert(ctx, n, klass)
	case *pyast.Import:
		emitImport(ctx, n)
	case *pyast.From:
		emitFrom(ctx, n)
	case *pyast.Print:
		emitPrint(ctx, n, klass, false)
	case *pyast.Printnl:
		emitPrint(ctx, &pyast.Print{Nodes: n.Nodes, Dest: n.Dest}, klass, true)
	case *pyast.Discard:
		emitDiscard(ctx, n, klass)
	case *pyast.Assign:
		emitAssign(ctx, n, klass)
	case *pyast.AugAssign:
		emitAugAssign(ctx, n, klass)
	default:
		panic(logger.NewTranslationError(ctx.ModuleName, node.Line(), "unsupported statement node %T", node))
	}
}

func emitReturn(ctx *translator.Context, n *pyast.Return) {
	if ctx.IsGenerator() {
		if n.Value != nil {
			panic(logger.NewTranslationError(ctx.ModuleName, n.Line(), "'return' with value is not allowed inside a generator"))
		}
		ctx.Printf("%sreturn $pyjs__generator_stop();\n", ctx.Indent())
		return
	}
	if n.Value == nil {
		ctx.Printf("%sreturn;\n", ctx.Indent())
		return
	}
	ctx.Printf("%sreturn %s;\n", ctx.Indent(), Expr(ctx, n.Value, nil))
}

// emitYieldStmt implements the per-yield protocol. It runs in one
// of two modes, matching the function emitter's buffered trial-and-discard
// pass (see internal/genxform):
//
//   - Pass 1 (detection only): latch IsGenerator and emit nothing. The
//     trial buffer this produced gets discarded by the caller once a
//     generator is detected, so it's fine that it doesn't contain valid
//     state-machine code.
//   - Pass 2 (EmittingGenBody): write the value to $yield_value, bump the
//     state-machine case counter, set $yielding and return; the next
//     entry inspects $exc before continuing, so a pending throw()
//     delivers its exception at the yield site. The resume case label
//     this prints is always a direct child of the state-machine switch
//     (see emitIfGenerator/emitWhileGenerator/emitForGenerator below),
//     never nested inside a JS block, since a `case` is only legal there.
func emitYieldStmt(ctx *translator.Context, n *pyast.Yield, klass KlassRef) {
	ctx.SetIsGenerator(true)
	if !ctx.EmittingGenBody() {
		return
	}
	value := Expr(ctx, n.Value, klass)
	resumeCase := ctx.GeneratorSwitchCase(true)
	ctx.Printf("%s$yield_value = %s;\n", ctx.Indent(), value)
	ctx.Printf("%s$generator_state[0] = %d; $yielding = true; return;\n", ctx.Indent(), resumeCase)
	ctx.Printf("%scase %d:\n", ctx.Indent(), resumeCase)
	ctx.Printf("%sif ($exc !== null) { var $e = $exc; $exc = null; throw $e; }\n", ctx.Indent())
}

// genJump emits a jump to another case of the enclosing state-machine
// switch. Resuming into the middle of a generator body can't rely on JS
// falling through from one nested block into another, so every non-
// sequential control transfer (a loop repeating, a branch skipping its
// siblings) goes through here instead of a literal nested if/while/for.
func genJump(ctx *translator.Context, target int) {
	ctx.Printf("%s$generator_state[0] = %d; continue;\n", ctx.Indent(), target)
}

func genCaseLabel(ctx *translator.Context, n int) {
	ctx.Printf("%scase %d:\n", ctx.Indent(), n)
}

func emitIf(ctx *translator.Context, n *pyast.If, klass KlassRef) {
	if ctx.EmittingGenBody() && (genxform.ContainsYield(n.Else) || ifTestsContainYield(n)) {
		emitIfGenerator(ctx, n, klass)
		return
	}
	for i, pair := range n.Tests {
		test, body := pair[0], pair[1]
		kw := "if"
		if i > 0 {
			kw = "else if"
		}
		ctx.Printf("%s%s (%s) {\n", ctx.Indent(), kw, boolGuard(ctx, Expr(ctx, test, klass)))
		ctx.PushIndent()
		Stmt(ctx, body, klass)
		ctx.PopIndent()
		ctx.Printf("%s}\n", ctx.Indent())
	}
	if n.Else != nil {
		ctx.Printf("%selse {\n", ctx.Indent())
		ctx.PushIndent()
		Stmt(ctx, n.Else, klass)
		ctx.PopIndent()
		ctx.Printf("%s}\n", ctx.Indent())
	}
}

func ifTestsContainYield(n *pyast.If) bool {
	for _, pair := range n.Tests {
		if genxform.ContainsYield(pair[1]) {
			return true
		}
	}
	return false
}

// emitIfGenerator lowers an if/elif/else whose branches contain a yield
// into a dispatch case that jumps to one of a flat sequence of per-branch
// cases, each of which jumps to a shared merge case afterward — the
// "cascade of if ($generator_state == k) {...}" shape a resumable switch
// needs, since the branch bodies themselves can't stay nested once they
// might contain a case label.
func emitIfGenerator(ctx *translator.Context, n *pyast.If, klass KlassRef) {
	branchCases := make([]int, len(n.Tests))
	for i := range n.Tests {
		branchCases[i] = ctx.GeneratorSwitchCase(true)
	}
	elseCase := -1
	if n.Else != nil {
		elseCase = ctx.GeneratorSwitchCase(true)
	}
	mergeCase := ctx.GeneratorSwitchCase(true)

	for i, pair := range n.Tests {
		test := pair[0]
		kw := "if"
		if i > 0 {
			kw = "else if"
		}
		ctx.Printf("%s%s (%s) { $generator_state[0] = %d; continue; }\n",
			ctx.Indent(), kw, boolGuard(ctx, Expr(ctx, test, klass)), branchCases[i])
	}
	fallback := mergeCase
	if elseCase >= 0 {
		fallback = elseCase
	}
	ctx.Printf("%selse { $generator_state[0] = %d; continue; }\n", ctx.Indent(), fallback)

	for i, pair := range n.Tests {
		genCaseLabel(ctx, branchCases[i])
		Stmt(ctx, pair[1], klass)
		genJump(ctx, mergeCase)
	}
	if elseCase >= 0 {
		genCaseLabel(ctx, elseCase)
		Stmt(ctx, n.Else, klass)
		genJump(ctx, mergeCase)
	}
	genCaseLabel(ctx, mergeCase)
}

func emitWhile(ctx *translator.Context, n *pyast.While, klass KlassRef) {
	if n.Else != nil {
		panic(logger.NewTranslationError(ctx.ModuleName, n.Line(), "'while ... else' is not supported"))
	}
	if ctx.EmittingGenBody() && genxform.ContainsYield(n.Body) {
		emitWhileGenerator(ctx, n, klass)
		return
	}
	ctx.Printf("%swhile (%s) {\n", ctx.Indent(), boolGuard(ctx, Expr(ctx, n.Test, klass)))
	ctx.PushIndent()
	Stmt(ctx, n.Body, klass)
	ctx.PopIndent()
	ctx.Printf("%s}\n", ctx.Indent())
}

// emitWhileGenerator lowers a while loop containing a yield into a
// loop-test case that either jumps into the body or jumps past it, and a
// body that jumps back to the loop-test case instead of closing a JS
// while(){} block around a case label.
func emitWhileGenerator(ctx *translator.Context, n *pyast.While, klass KlassRef) {
	testCase := ctx.GeneratorSwitchCase(true)
	afterCase := ctx.GeneratorSwitchCase(true)

	genJump(ctx, testCase)
	genCaseLabel(ctx, testCase)
	ctx.Printf("%sif (!(%s)) { $generator_state[0] = %d; continue; }\n", ctx.Indent(), boolGuard(ctx, Expr(ctx, n.Test, klass)), afterCase)
	Stmt(ctx, n.Body, klass)
	genJump(ctx, testCase)
	genCaseLabel(ctx, afterCase)
}

// emitFor implements the for-loop lowering: acquire an iterator via
// __iter__(), loop while(true) calling .next() inside a try that treats
// StopIteration as a normal break. An `else` clause is unsupported here
// and reported as a translation error.
func emitFor(ctx *translator.Context, n *pyast.For, klass KlassRef) {
	if n.Else != nil {
		panic(logger.NewTranslationError(ctx.ModuleName, n.Line(), "'for ... else' is not supported"))
	}
	if ctx.EmittingGenBody() && genxform.ContainsYield(n.Body) {
		emitForGenerator(ctx, n, klass)
		return
	}
	iterVar := ctx.Uniqid("$iter")
	valVar := ctx.Uniqid("$val")
	listExpr := Expr(ctx, n.List, klass)

	ctx.Printf("%svar %s = %s.__iter__();\n", ctx.Indent(), iterVar, listExpr)
	ctx.Printf("%swhile (true) {\n", ctx.Indent())
	ctx.PushIndent()
	ctx.Printf("%svar %s;\n", ctx.Indent(), valVar)
	ctx.Printf("%stry { %s = %s.next(); } catch ($stop) { if ($stop instanceof pyjslib.StopIteration) break; throw $stop; }\n",
		ctx.Indent(), valVar, iterVar)
	bindAssignTarget(ctx, n.Assign, valVar)
	Stmt(ctx, n.Body, klass)
	ctx.PopIndent()
	ctx.Printf("%s}\n", ctx.Indent())
}

// emitForGenerator is emitFor's resumable counterpart: the iterator and
// loop value both need HoistVar treatment, since the loop-test case re-runs
// on a separate .next() call after every yield in the body and a plain
// `var` would have forgotten its value by then.
func emitForGenerator(ctx *translator.Context, n *pyast.For, klass KlassRef) {
	iterVar := ctx.Uniqid("$iter")
	valVar := ctx.Uniqid("$val")
	listExpr := Expr(ctx, n.List, klass)
	testCase := ctx.GeneratorSwitchCase(true)
	afterCase := ctx.GeneratorSwitchCase(true)

	ctx.Printf("%s%s", ctx.Indent(), ctx.VarDecl(iterVar, listExpr+".__iter__()"))
	ctx.HoistVar(valVar)
	genJump(ctx, testCase)
	genCaseLabel(ctx, testCase)
	ctx.Printf("%stry { %s = %s.next(); } catch ($stop) { if ($stop instanceof pyjslib.StopIteration) { $generator_state[0] = %d; continue; } throw $stop; }\n",
		ctx.Indent(), valVar, iterVar, afterCase)
	bindAssignTarget(ctx, n.Assign, valVar)
	Stmt(ctx, n.Body, klass)
	genJump(ctx, testCase)
	genCaseLabel(ctx, afterCase)
}

// bindAssignTarget emits the JS statements that bind a for-loop or
// assignment target, destructuring tuples/lists via __getitem__ exactly
// like the statement emitter's tuple-destructuring assignment form.
func bindAssignTarget(ctx *translator.Context, target pyast.Node, src string) {
	switch t := target.(type) {
	case *pyast.AssName:
		ctx.Scope.Add(scope.Variable, t.Name, t.Name)
		name := mangler.MangleVariable(t.Name)
		ctx.Printf("%s%s", ctx.Indent(), ctx.VarDecl(name, src))
	case *pyast.AssAttr:
		head := Expr(ctx, t.Expr, nil)
		ctx.Printf("%s%s = %s;\n", ctx.Indent(), mangler.JoinAttrs(head, t.Attr), src)
	case *pyast.AssTuple:
		for i, el := range t.Nodes {
			bindAssignTarget(ctx, el, fmt.Sprintf("%s.__getitem__(%d)", src, i))
		}
	case *pyast.AssList:
		for i, el := range t.Nodes {
			bindAssignTarget(ctx, el, fmt.Sprintf("%s.__getitem__(%d)", src, i))
		}
	}
}

func emitRaise(ctx *translator.Context, n *pyast.Raise, klass KlassRef) {
	switch {
	case n.ExprType == nil:
		ctx.Printf("%sthrow pyjslib.$pyjs__reraise();\n", ctx.Indent())
	case n.ExprValue == nil:
		ctx.Printf("%sthrow %s();\n", ctx.Indent(), Expr(ctx, n.ExprType, klass))
	default:
		cls := Expr(ctx, n.ExprType, klass)
		val := Expr(ctx, n.ExprValue, klass)
		if tup, ok := n.ExprValue.(*pyast.Tuple); ok {
			args := make([]string, len(tup.Nodes))
			for i, a := range tup.Nodes {
				args[i] = Expr(ctx, a, klass)
			}
			ctx.Printf("%sthrow %s(%s);\n", ctx.Indent(), cls, strings.Join(args, ", "))
			return
		}
		ctx.Printf("%sthrow pyjslib.$pyjs__raise_with_value(%s, %s);\n", ctx.Indent(), cls, val)
	}
}

func emitAssert(ctx *translator.Context, n *pyast.Assert, klass KlassRef) {
	test := boolGuard(ctx, Expr(ctx, n.Test, klass))
	msg := "null"
	if n.Fail != nil {
		msg = Expr(ctx, n.Fail, klass)
	}
	ctx.Printf("%sif (!(%s)) { throw pyjslib.AssertionError(%s); }\n", ctx.Indent(), test, msg)
}

func emitImport(ctx *translator.Context, n *pyast.Import) {
	for _, pair := range n.Names {
		modPath, asName := pair[0], pair[1]
		ctx.AddImport(modPath)
		binding := asName
		if binding == "" {
			binding = strings.SplitN(modPath, ".", 2)[0]
		}
		ctx.Scope.Add(scope.Imported, binding, binding)
		ctx.Printf("%svar %s = $pyjs.__import__('%s', __mod_name__);\n", ctx.Indent(), mangler.MangleVariable(binding), modPath)
	}
}

func emitFrom(ctx *translator.Context, n *pyast.From) {
	ctx.AddImport(n.ModName)
	modVar := ctx.Uniqid("$mod")
	ctx.Printf("%svar %s = $pyjs.__import__('%s', __mod_name__);\n", ctx.Indent(), modVar, n.ModName)
	for _, pair := range n.Names {
		name, asName := pair[0], pair[1]
		binding := asName
		if binding == "" {
			binding = name
		}
		ctx.Scope.Add(scope.Imported, binding, binding)
		ctx.Printf("%svar %s = %s;\n", ctx.Indent(), mangler.MangleVariable(binding), mangler.JoinAttrs(modVar, name))
	}
}

func emitPrint(ctx *translator.Context, n *pyast.Print, klass KlassRef, newline bool) {
	args := make([]string, len(n.Nodes))
	for i, v := range n.Nodes {
		args[i] = Expr(ctx, v, klass)
	}
	dest := "null"
	if n.Dest != nil {
		dest = Expr(ctx, n.Dest, klass)
	}
	ctx.Printf("%spyjslib.printFunc(%s, [%s], %t);\n", ctx.Indent(), dest, strings.Join(args, ", "), newline)
}

func emitDiscard(ctx *translator.Context, n *pyast.Discard, klass KlassRef) {
	// A bare string-literal statement is discarded rather than emitted,
	// wherever it appears: this covers class and function docstrings, and
	// also string statements later in a body.
	if lit, ok := n.Value.(*pyast.Const); ok && lit.Kind == pyast.ConstString {
		return
	}
	if y, ok := n.Value.(*pyast.Yield); ok {
		emitYieldStmt(ctx, y, klass)
		return
	}
	if name, ok := setCompilerOptionsArg(n.Value); ok {
		ApplySetCompilerOptions(ctx, ctx.ModuleName, n.Line(), name)
		return
	}
	ctx.Printf("%s%s;\n", ctx.Indent(), Expr(ctx, n.Value, klass))
}

// setCompilerOptionsArg recognizes a bare __pyjamas__.setCompilerOptions("Preset")
// expression statement and extracts the preset name literal.
func setCompilerOptionsArg(value pyast.Node) (string, bool) {
	call, ok := value.(*pyast.CallFunc)
	if !ok || len(call.Args) != 1 {
		return "", false
	}
	ga, ok := call.Node.(*pyast.Getattr)
	if !ok || ga.Attr != "setCompilerOptions" {
		return "", false
	}
	base, ok := ga.Expr.(*pyast.Name)
	if !ok || base.Name != "__pyjamas__" {
		return "", false
	}
	lit, ok := call.Args[0].(*pyast.Const)
	if !ok || lit.Kind != pyast.ConstString {
		return "", false
	}
	return lit.Value, true
}

// emitAssign implements the assignment lowering: simple-name
// declare-or-store, attribute store (direct or setattr), subscript store
// via __setitem__ (never native), multi-target via a temporary, and tuple/
// list destructuring via __getitem__.
func emitAssign(ctx *translator.Context, n *pyast.Assign, klass KlassRef) {
	rhs := Expr(ctx, n.Expr, klass)

	if len(n.Nodes) == 1 {
		assignOne(ctx, n.Nodes[0], rhs, klass)
		return
	}

	tmp := ctx.Uniqid("$multi")
	ctx.Printf("%svar %s = %s;\n", ctx.Indent(), tmp, rhs)
	for _, target := range n.Nodes {
		assignOne(ctx, target, tmp, klass)
	}
}

func assignOne(ctx *translator.Context, target pyast.Node, rhs string, klass KlassRef) {
	switch t := target.(type) {
	case *pyast.AssName:
		if _, ok := ctx.Scope.Lookup(t.Name); !ok {
			ctx.Scope.Add(scope.Variable, t.Name, t.Name)
			name := mangler.MangleVariable(t.Name)
			ctx.Printf("%s%s", ctx.Indent(), ctx.VarDecl(name, rhs))
		} else {
			ctx.Printf("%s%s = %s;\n", ctx.Indent(), ctx.Scope.Resolve(t.Name), rhs)
		}
	case *pyast.AssAttr:
		head := Expr(ctx, t.Expr, klass)
		if ctx.Options.Top().Descriptors {
			ctx.Printf("%spyjslib.setattr(%s, '%s', %s);\n", ctx.Indent(), head, t.Attr, rhs)
		} else {
			ctx.Printf("%s%s = %s;\n", ctx.Indent(), mangler.JoinAttrs(head, t.Attr), rhs)
		}
	case *pyast.Subscript:
		head := Expr(ctx, t.Expr, klass)
		args := make([]string, len(t.Subs))
		for i, s := range t.Subs {
			args[i] = Expr(ctx, s, klass)
		}
		ctx.Printf("%s%s.__setitem__(%s, %s);\n", ctx.Indent(), head, strings.Join(args, ", "), rhs)
	case *pyast.AssTuple:
		for i, el := range t.Nodes {
			assignOne(ctx, el, fmt.Sprintf("%s.__getitem__(%d)", rhs, i), klass)
		}
	case *pyast.AssList:
		for i, el := range t.Nodes {
			assignOne(ctx, el, fmt.Sprintf("%s.__getitem__(%d)", rhs, i), klass)
		}
	default:
		panic(logger.NewTranslationError(ctx.ModuleName, target.Line(), "unsupported assignment target %T", target))
	}
}

// emitAugAssign implements the augmented-assignment lowering:
// with operator_funcs on, "a op= b" becomes "a = a op b" using fresh
// temporaries for any complex side so each effect happens exactly once,
// e.g. on a subscript target like `a[i] += 1`.
func emitAugAssign(ctx *translator.Context, n *pyast.AugAssign, klass KlassRef) {
	op := strings.TrimSuffix(n.Op, "=")
	rhs := Expr(ctx, n.Expr, klass)

	switch t := n.Target.(type) {
	case *pyast.Name:
		cur := ctx.Scope.Resolve(t.Name)
		ctx.Printf("%s%s = %s;\n", ctx.Indent(), cur, applyOp(ctx, op, cur, rhs))
	case *pyast.Getattr:
		tmpHead := ctx.Uniqid("$h")
		head := Expr(ctx, t.Expr, klass)
		ctx.Printf("%svar %s = %s;\n", ctx.Indent(), tmpHead, head)
		attr := mangler.JoinAttrs(tmpHead, t.Attr)
		ctx.Printf("%s%s = %s;\n", ctx.Indent(), attr, applyOp(ctx, op, attr, rhs))
	case *pyast.Subscript:
		tmpHead := ctx.Uniqid("$h")
		tmpIdx := make([]string, len(t.Subs))
		head := Expr(ctx, t.Expr, klass)
		ctx.Printf("%svar %s = %s;\n", ctx.Indent(), tmpHead, head)
		for i, s := range t.Subs {
			tmpIdx[i] = ctx.Uniqid("$i")
			ctx.Printf("%svar %s = %s;\n", ctx.Indent(), tmpIdx[i], Expr(ctx, s, klass))
		}
		idxList := strings.Join(tmpIdx, ", ")
		cur := fmt.Sprintf("%s.__getitem__(%s)", tmpHead, idxList)
		ctx.Printf("%s%s.__setitem__(%s, %s);\n", ctx.Indent(), tmpHead, idxList, applyOp(ctx, op, cur, rhs))
	default:
		panic(logger.NewTranslationError(ctx.ModuleName, n.Line(), "unsupported augmented-assignment target %T", n.Target))
	}
}

func applyOp(ctx *translator.Context, op, left, right string) string {
	if !ctx.Options.Top().OperatorFuncs {
		return fmt.Sprintf("(%s %s %s)", left, op, right)
	}
	fn, ok := map[string]string{
		"+": "op_add", "-": "op_sub", "*": "op_mul", "/": "op_div", "%": "op_mod",
	}[op]
	if !ok {
		return fmt.Sprintf("(%s %s %s)", left, op, right)
	}
	return fmt.Sprintf("pyjslib.%s(%s, %s)", fn, left, right)
}
