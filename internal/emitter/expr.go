// Package emitter implements the Expression Emitter, Statement Emitter,
// Function/Method Emitter, Class Emitter, and Try/Except/Finally Lowering.
// One function per AST node variant, grounded on esbuild's
// internal/js_printer (one printExpr/printStmt case per js_ast node) and
// on the original translator.py's one _<NodeName> method per compiler.ast
// node.
package emitter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andreyvit/pyjstranslate/internal/logger"
	"github.com/andreyvit/pyjstranslate/internal/mangler"
	"github.com/andreyvit/pyjstranslate/internal/pyast"
	"github.com/andreyvit/pyjstranslate/internal/scope"
	"github.com/andreyvit/pyjstranslate/internal/translator"
)

// KlassRef is the enclosing class for an emission, or nil at module/function
// scope with no enclosing class. Only the qualified name is needed by the
// expression emitter (e.g. for "self" fast paths in attribute-checking).
type KlassRef = *translator.Klass

// Expr translates one expression node to a JS expression string. Only a
// lambda prints to the context's output stream (its helper function
// definition, ahead of the statement using it); call sites record no
// imports, and __pyjamas__.JS(...) calls get no special handling here.
func Expr(ctx *translator.Context, node pyast.Node, klass KlassRef) string {
	switch n := node.(type) {
	case *pyast.Name:
		return name(ctx, n)
	case *pyast.Const:
		return constant(n)
	case *pyast.Getattr:
		return getattr(ctx, n, klass)
	case *pyast.Subscript:
		return subscript(ctx, n, klass)
	case *pyast.Slice:
		return slice(ctx, n, klass)
	case *pyast.Tuple:
		return container(ctx, "Tuple", n.Nodes, klass)
	case *pyast.List:
		return container(ctx, "List", n.Nodes, klass)
	case *pyast.Dict:
		return dict(ctx, n, klass)
	case *pyast.CallFunc:
		return callFunc(ctx, n, klass)
	case *pyast.Lambda:
		return lambda(ctx, n, klass)
	case *pyast.ListComp:
		return listComp(ctx, n, klass)
	case *pyast.Compare:
		return compare(ctx, n, klass)
	case *pyast.Not:
		return "!(" + boolGuard(ctx, Expr(ctx, n.Expr, klass)) + ")"
	case *pyast.BoolOp:
		return boolOp(ctx, n, klass)
	case *pyast.BinOp:
		return binOp(ctx, n, klass)
	case *pyast.UnaryOp:
		return unaryOp(ctx, n, klass)
	default:
		panic(logger.NewTranslationError(ctx.ModuleName, node.Line(), "unsupported expression node %T", node))
	}
}

func name(ctx *translator.Context, n *pyast.Name) string {
	return ctx.Scope.Resolve(n.Name)
}

func constant(n *pyast.Const) string {
	switch n.Kind {
	case pyast.ConstNone:
		return "null"
	case pyast.ConstTrue:
		return "true"
	case pyast.ConstFalse:
		return "false"
	case pyast.ConstInt, pyast.ConstLong:
		return n.Value
	case pyast.ConstFloat:
		return n.Value
	case pyast.ConstString:
		return strconv.Quote(n.Value)
	default:
		return "null"
	}
}

// getattr implements the attribute-join plus guarded
// attribute access: when attribute_checking is on and the head isn't
// plainly a class/module reference, wrap in an IIFE that throws a runtime
// TypeError on undefined; when descriptors is on, go through getattr().
func getattr(ctx *translator.Context, n *pyast.Getattr, klass KlassRef) string {
	head := Expr(ctx, n.Expr, klass)
	opts := ctx.Options.Top()

	if opts.Descriptors {
		return fmt.Sprintf("pyjslib.getattr(%s, '%s')", head, n.Attr)
	}

	joined := mangler.JoinAttrs(head, n.Attr)
	if opts.AttributeChecking && !isObviouslySafe(ctx, n.Expr) {
		tmp := ctx.Uniqid("$a")
		return fmt.Sprintf(
			"(function(){var %s=%s; if (%s === undefined || %s === null) { pyjslib.$pyjs__exception_attr_missing('%s'); } return %s; })()",
			tmp, head, tmp, tmp, n.Attr, mangler.JoinAttrs(tmp, n.Attr))
	}
	return joined
}

// isObviouslySafe reports whether a head expression is plainly a class or
// module reference, so the attribute-checking guard (an extra IIFE) can be
// skipped for the overwhelmingly common safe case.
func isObviouslySafe(ctx *translator.Context, head pyast.Node) bool {
	n, ok := head.(*pyast.Name)
	if !ok {
		return false
	}
	res, ok := ctx.Scope.Lookup(n.Name)
	if !ok {
		return false
	}
	switch res.Kind {
	case scope.ClassKind, scope.ModuleKind, scope.RootModule, scope.Imported:
		return true
	}
	return false
}

func subscript(ctx *translator.Context, n *pyast.Subscript, klass KlassRef) string {
	head := Expr(ctx, n.Expr, klass)
	args := make([]string, len(n.Subs))
	for i, s := range n.Subs {
		args[i] = Expr(ctx, s, klass)
	}
	return fmt.Sprintf("%s.__getitem__(%s)", head, strings.Join(args, ", "))
}

func slice(ctx *translator.Context, n *pyast.Slice, klass KlassRef) string {
	head := Expr(ctx, n.Expr, klass)
	lower := "null"
	if n.Lower != nil {
		lower = Expr(ctx, n.Lower, klass)
	}
	upper := "null"
	if n.Upper != nil {
		upper = Expr(ctx, n.Upper, klass)
	}
	return fmt.Sprintf("%s.__getitem__(pyjslib.slice(%s, %s))", head, lower, upper)
}

func container(ctx *translator.Context, ctor string, nodes []pyast.Node, klass KlassRef) string {
	items := make([]string, len(nodes))
	for i, item := range nodes {
		items[i] = Expr(ctx, item, klass)
	}
	return fmt.Sprintf("new pyjslib.%s([%s])", ctor, strings.Join(items, ", "))
}

func dict(ctx *translator.Context, n *pyast.Dict, klass KlassRef) string {
	pairs := make([]string, len(n.Items))
	for i, item := range n.Items {
		pairs[i] = fmt.Sprintf("[%s, %s]", Expr(ctx, item.Key, klass), Expr(ctx, item.Value, klass))
	}
	return fmt.Sprintf("new pyjslib.Dict([%s])", strings.Join(pairs, ", "))
}

// callFunc implements the call-site construction: positional-only
// calls emit a direct call; anything with keywords/*args/**kwargs routes
// through the runtime kwarg dispatcher. When debug is on, every call gets
// wrapped in the retry shim.
func callFunc(ctx *translator.Context, n *pyast.CallFunc, klass KlassRef) string {
	callee := Expr(ctx, n.Node, klass)

	var result string
	if len(n.Keywords) == 0 && n.Star == nil && n.DStar == nil {
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = Expr(ctx, a, klass)
		}
		result = fmt.Sprintf("%s(%s)", callee, strings.Join(args, ", "))
	} else {
		result = kwargsCall(ctx, n, klass)
	}

	if ctx.Options.Top().Debug {
		line := n.Line()
		result = fmt.Sprintf("pyjslib.$pyjs__call_retry_shim(function(){ return %s; }, %d)", result, line)
	}
	return result
}

func kwargsCall(ctx *translator.Context, n *pyast.CallFunc, klass KlassRef) string {
	positional := make([]string, len(n.Args))
	for i, a := range n.Args {
		positional[i] = Expr(ctx, a, klass)
	}

	kwItems := make([]string, len(n.Keywords))
	for i, kw := range n.Keywords {
		kwItems[i] = fmt.Sprintf("[%s, %s]", strconv.Quote(kw.Name), Expr(ctx, kw.Expr, klass))
	}
	kwDict := "null"
	if len(kwItems) > 0 {
		kwDict = fmt.Sprintf("new pyjslib.Dict([%s])", strings.Join(kwItems, ", "))
	}

	star := "null"
	if n.Star != nil {
		star = Expr(ctx, n.Star, klass)
	}
	dstar := "null"
	if n.DStar != nil {
		dstar = Expr(ctx, n.DStar, klass)
	}

	// When the callee is a simple attribute access, the method name is
	// passed separately so the runtime dispatcher can rebind `self`.
	var selfExpr, methodName string
	if ga, ok := n.Node.(*pyast.Getattr); ok {
		selfExpr = Expr(ctx, ga.Expr, klass)
		methodName = strconv.Quote(ga.Attr)
	} else {
		selfExpr = "null"
		methodName = strconv.Quote("")
		// not an attribute access: the callee expression itself goes in the
		// method slot, with a null self
		return fmt.Sprintf("pyjslib.$pyjs_kwargs_call(null, %s, %s, %s, [%s, %s])",
			Expr(ctx, n.Node, klass), star, dstar, kwDict, strings.Join(positional, ", "))
	}

	return fmt.Sprintf("pyjslib.$pyjs_kwargs_call(%s, %s, %s, %s, [%s, %s])",
		selfExpr, methodName, star, dstar, kwDict, strings.Join(positional, ", "))
}

// lambda is emitted as a uniquely named helper function whose body is a
// single return statement.
func lambda(ctx *translator.Context, n *pyast.Lambda, klass KlassRef) string {
	helperName := ctx.Uniqid("$lambda")
	params := make([]string, len(n.ArgNames))
	for i, a := range n.ArgNames {
		params[i] = mangler.MangleVariable(a)
	}

	ctx.Scope.Push("")
	for _, a := range n.ArgNames {
		ctx.Scope.Add(scope.Variable, a, a)
	}
	body := Expr(ctx, n.Code, klass)
	ctx.Scope.Pop()

	ctx.Print(fmt.Sprintf("var %s = function(%s) { return %s; };\n", helperName, strings.Join(params, ", "), body))
	return helperName
}

// listComp lowers a list comprehension to an IIFE containing a nested
// for/if using the same lowering as statement-level for/if:
// comprehensions build runtime Lists via the iteration protocol, never a
// native JS array literal, to preserve Python iteration semantics.
func listComp(ctx *translator.Context, n *pyast.ListComp, klass KlassRef) string {
	result := ctx.Uniqid("$listcomp")
	var b strings.Builder
	fmt.Fprintf(&b, "(function(){ var %s = new pyjslib.List([]); ", result)

	depth := 0
	for _, q := range n.Quals {
		iterVar := ctx.Uniqid("$it")
		listExpr := Expr(ctx, q.List, klass)
		fmt.Fprintf(&b, "var %s = %s.__iter__(); while (true) { var $v; try { $v = %s.next(); } catch ($stop) { if ($stop instanceof pyjslib.StopIteration) break; throw $stop; } ", iterVar, listExpr, iterVar)
		bindTarget(ctx, &b, q.Assign, "$v")
		for _, cond := range q.Ifs {
			if ci, ok := cond.(*pyast.ListCompIf); ok {
				cond = ci.Test
			}
			test := Expr(ctx, cond, klass)
			fmt.Fprintf(&b, "if (!(%s)) continue; ", boolGuard(ctx, test))
		}
		depth++
	}

	itemExpr := Expr(ctx, n.Expr, klass)
	fmt.Fprintf(&b, "%s.append(%s); ", result, itemExpr)
	for i := 0; i < depth; i++ {
		b.WriteString("} ")
	}
	fmt.Fprintf(&b, "return %s; })()", result)
	return b.String()
}

// bindTarget writes the binding statements for a (possibly destructuring)
// comprehension/for-loop target, reading from a JS variable named src.
func bindTarget(ctx *translator.Context, b *strings.Builder, target pyast.Node, src string) {
	switch t := target.(type) {
	case *pyast.AssName:
		ctx.Scope.Add(scope.Variable, t.Name, t.Name)
		fmt.Fprintf(b, "var %s = %s; ", mangler.MangleVariable(t.Name), src)
	case *pyast.AssTuple:
		for i, el := range t.Nodes {
			bindTarget(ctx, b, el, fmt.Sprintf("%s.__getitem__(%d)", src, i))
		}
	case *pyast.AssList:
		for i, el := range t.Nodes {
			bindTarget(ctx, b, el, fmt.Sprintf("%s.__getitem__(%d)", src, i))
		}
	}
}

// compare implements the comparison lowering, and carries forward
// the original's "only one op supported" restriction for chained
// comparisons (see SPEC_FULL.md, resolving Open Question 3) rather than
// silently narrowing to the first operator.
func compare(ctx *translator.Context, n *pyast.Compare, klass KlassRef) string {
	if len(n.Ops) != 1 {
		panic(logger.NewTranslationError(ctx.ModuleName, n.Line(), "only one comparison operator supported per expression"))
	}
	left := Expr(ctx, n.Expr, klass)
	right := Expr(ctx, n.Ops[0].Expr, klass)
	op := n.Ops[0].Op
	opts := ctx.Options.Top()

	switch op {
	case "==", "!=":
		if opts.InlineEq {
			tmpL, tmpR := ctx.Uniqid("$l"), ctx.Uniqid("$r")
			guard := fmt.Sprintf(
				"(function(){ var %s=%s, %s=%s; if (%s === null && %s === null) return true; if (%s === null || %s === null) return false; if (%s && %s.__cmp__) return %s.__cmp__(%s) === 0; return %s === %s; })()",
				tmpL, left, tmpR, right, tmpL, tmpR, tmpL, tmpR, tmpL, tmpL, tmpL, tmpR, tmpL, tmpR)
			if op == "!=" {
				return "!(" + guard + ")"
			}
			return guard
		}
		if op == "==" {
			return fmt.Sprintf("pyjslib.eq(%s, %s)", left, right)
		}
		return fmt.Sprintf("!pyjslib.eq(%s, %s)", left, right)
	case "<", "<=", ">", ">=":
		return fmt.Sprintf("(pyjslib.cmp(%s, %s) %s 0)", left, right, op)
	case "in":
		return fmt.Sprintf("%s.__contains__(%s)", right, left)
	case "not in":
		return fmt.Sprintf("!%s.__contains__(%s)", right, left)
	case "is":
		return fmt.Sprintf("(%s === %s)", left, right)
	case "is not":
		return fmt.Sprintf("(%s !== %s)", left, right)
	default:
		panic(logger.NewTranslationError(ctx.ModuleName, n.Line(), "unknown comparison operator %q", op))
	}
}

func boolOp(ctx *translator.Context, n *pyast.BoolOp, klass KlassRef) string {
	joiner := " && "
	if n.Kind == pyast.BoolOr {
		joiner = " || "
	}
	parts := make([]string, len(n.Nodes))
	for i, e := range n.Nodes {
		parts[i] = Expr(ctx, e, klass)
	}
	return "(" + strings.Join(parts, joiner) + ")"
}

// binOp implements the operator lowering strategy: native JS
// operators when operator_funcs is off, guarded runtime calls with
// single-evaluation temporaries when it's on.
func binOp(ctx *translator.Context, n *pyast.BinOp, klass KlassRef) string {
	if n.Kind == pyast.OpMod {
		if s, ok := StringFormat(ctx, n.Left, n.Right, klass); ok {
			return s
		}
	}
	left := Expr(ctx, n.Left, klass)
	right := Expr(ctx, n.Right, klass)
	native, runtimeFn := binOpSymbols(n.Kind)

	if !ctx.Options.Top().OperatorFuncs {
		if native == "" {
			return fmt.Sprintf("pyjslib.%s(%s, %s)", runtimeFn, left, right)
		}
		return fmt.Sprintf("(%s %s %s)", left, native, right)
	}

	tmpL, tmpR := ctx.Uniqid("$l"), ctx.Uniqid("$r")
	fastPath := ""
	if native != "" {
		fastPath = fmt.Sprintf("(typeof %s === 'number' && typeof %s === 'number') ? (%s %s %s) : ", tmpL, tmpR, tmpL, native, tmpR)
	}
	return fmt.Sprintf("(function(){ var %s=%s, %s=%s; return %spyjslib.%s(%s, %s); })()",
		tmpL, left, tmpR, right, fastPath, runtimeFn, tmpL, tmpR)
}

func binOpSymbols(kind pyast.BinOpKind) (native, runtimeFn string) {
	switch kind {
	case pyast.OpAdd:
		return "+", "op_add"
	case pyast.OpSub:
		return "-", "op_sub"
	case pyast.OpMul:
		return "*", "op_mul"
	case pyast.OpDiv:
		return "/", "op_div"
	case pyast.OpFloorDiv:
		return "", "op_floordiv"
	case pyast.OpMod:
		return "%", "op_mod"
	case pyast.OpPower:
		return "", "op_pow"
	case pyast.OpBitand:
		return "&", ""
	case pyast.OpBitor:
		return "|", ""
	case pyast.OpBitxor:
		return "^", ""
	case pyast.OpLeftShift:
		return "<<", ""
	case pyast.OpRightShift:
		return ">>", ""
	default:
		return "", ""
	}
}

func unaryOp(ctx *translator.Context, n *pyast.UnaryOp, klass KlassRef) string {
	operand := Expr(ctx, n.Expr, klass)
	opts := ctx.Options.Top()
	switch n.Kind {
	case pyast.OpUnaryAdd:
		if !opts.OperatorFuncs {
			return "(+" + operand + ")"
		}
		return fmt.Sprintf("pyjslib.op_uadd(%s)", operand)
	case pyast.OpUnarySub:
		if !opts.OperatorFuncs {
			return "(-" + operand + ")"
		}
		return fmt.Sprintf("pyjslib.op_usub(%s)", operand)
	case pyast.OpInvert:
		return "(~" + operand + ")"
	default:
		return operand
	}
}

// boolGuard wraps an expression in the runtime truth test unless
// inline_bool is on, in which case a guarded inline form is used. This is
// the one helper shared by If/While lowering (statement emitter) and the
// Not and list-comprehension condition lowering above; BoolOp joins its
// operands without it.
func boolGuard(ctx *translator.Context, expr string) string {
	if ctx.Options.Top().InlineBool {
		return fmt.Sprintf("(%s !== null && %s !== false && %s !== 0 && %s !== '' && %s !== undefined)", expr, expr, expr, expr, expr)
	}
	return fmt.Sprintf("pyjslib.bool(%s)", expr)
}

// StringFormat implements the "%" formatting special case: when the
// left operand is a string literal, lower to a runtime sprintf call;
// otherwise the generic "%" operator path (binOp's op_mod) handles it.
func StringFormat(ctx *translator.Context, left pyast.Node, right pyast.Node, klass KlassRef) (string, bool) {
	lit, ok := left.(*pyast.Const)
	if !ok || lit.Kind != pyast.ConstString {
		return "", false
	}
	return fmt.Sprintf("pyjslib.sprintf(%s, %s)", constant(lit), Expr(ctx, right, klass)), true
}
