package emitter

import (
	"fmt"
	"strings"

	"github.com/andreyvit/pyjstranslate/internal/mangler"
	"github.com/andreyvit/pyjstranslate/internal/pyast"
	"github.com/andreyvit/pyjstranslate/internal/scope"
	"github.com/andreyvit/pyjstranslate/internal/translator"
)

// Class implements the Class Emitter: a class-creation IIFE
// that builds a $pyjs__class_instance record, binds methods onto a
// prototype object via $pyjs__bind_method, records the MD5 identity, and
// hands the whole thing to $pyjs__class_function along with the base list.
// When no base is given, the implicit base is the runtime `object`; the
// runtime (not the translator) computes MRO linearization.
func Class(ctx *translator.Context, cls *pyast.Class, enclosing KlassRef) {
	emittedName := mangler.MangleVariable(cls.Name)
	qualified := ctx.Scope.ScopeName(emittedName, 0, true)
	klass := translator.NewKlass(ctx.ModuleName, cls, qualified)

	bases := make([]string, len(cls.Bases))
	for i, b := range cls.Bases {
		bases[i] = Expr(ctx, b, enclosing)
		klass.Bases = append(klass.Bases, bases[i])
	}
	if len(bases) == 0 {
		bases = []string{"pyjslib.object"}
	}

	ctx.Scope.Add(scope.ClassKind, cls.Name, emittedName)
	ctx.Scope.Push(qualified)

	instVar := ctx.Uniqid("$inst")
	protoVar := ctx.Uniqid("$proto")

	ctx.Printf("%s%s = (function(){\n", ctx.Indent(), emittedName)
	ctx.PushIndent()
	ctx.Printf("%svar %s = pyjslib.$pyjs__class_instance(%q);\n", ctx.Indent(), instVar, cls.Name)
	ctx.Printf("%svar %s = {};\n", ctx.Indent(), protoVar)
	ctx.Printf("%s%s.__md5__ = %q;\n", ctx.Indent(), protoVar, klass.MD5)

	emitClassBody(ctx, cls.Code, klass, protoVar)

	ctx.Printf("%sreturn pyjslib.$pyjs__class_function(%s, %s, [%s]);\n", ctx.Indent(), instVar, protoVar, strings.Join(bases, ", "))
	ctx.PopIndent()
	ctx.Printf("%s})();\n", ctx.Indent())

	ctx.Scope.Pop()
}

// emitClassBody walks a class body, discarding a leading bare-string
// docstring, binding methods via $pyjs__bind_method, storing
// plain assignments as prototype properties, and routing subscript
// assignments through __setitem__.
func emitClassBody(ctx *translator.Context, body pyast.Node, klass *translator.Klass, protoVar string) {
	stmtList, ok := body.(*pyast.Stmt)
	if !ok {
		emitClassStmt(ctx, body, klass, protoVar)
		return
	}
	for i, s := range stmtList.Nodes {
		if i == 0 {
			if d, ok := s.(*pyast.Discard); ok {
				if lit, ok := d.Value.(*pyast.Const); ok && lit.Kind == pyast.ConstString {
					continue
				}
			}
		}
		emitClassStmt(ctx, s, klass, protoVar)
	}
}

func emitClassStmt(ctx *translator.Context, s pyast.Node, klass *translator.Klass, protoVar string) {
	switch n := s.(type) {
	case *pyast.Function:
		emitMethod(ctx, n, klass, protoVar)
	case *pyast.Pass:
		// nothing
	case *pyast.Assign:
		emitClassAssign(ctx, n, klass, protoVar)
	default:
		Stmt(ctx, s, klass)
	}
}

func emitMethod(ctx *translator.Context, fn *pyast.Function, klass *translator.Klass, protoVar string) {
	klass.Methods[fn.Name] = true

	helperName := ctx.Uniqid("$method")
	bindType := BindInstance
	var wrappers []string
	ctx.Options.Push()
	for i := len(fn.Decorators) - 1; i >= 0; i-- {
		dec := fn.Decorators[i]
		if name := decoratorIntrinsicName(dec); name != "" {
			switch name {
			case "staticmethod":
				bindType = BindStatic
				continue
			case "classmethod":
				bindType = BindClass
				continue
			}
			if applyCompilerFlag(ctx, name) {
				continue
			}
		}
		wrappers = append(wrappers, Expr(ctx, dec, klass))
	}

	ctx.Scope.Push("")
	for _, a := range fn.ArgNames {
		ctx.Scope.Add(scope.Variable, a, a)
	}
	params := make([]string, len(fn.ArgNames))
	for i, a := range fn.ArgNames {
		params[i] = mangler.MangleVariable(a)
	}

	result := genxformTransformMethod(ctx, fn, klass)
	ctx.Scope.Pop()
	ctx.Options.Pop()

	ctx.Printf("%svar %s = function(%s) {\n", ctx.Indent(), helperName, strings.Join(params, ", "))
	ctx.PushIndent()
	ctx.Print(result)
	ctx.PopIndent()
	ctx.Printf("%s};\n", ctx.Indent())
	ctx.Printf("%s%s.__name__ = %q;\n", ctx.Indent(), helperName, fn.Name)
	ctx.Printf("%s%s.__bind_type__ = %d;\n", ctx.Indent(), helperName, bindType)
	ctx.Printf("%s%s.__args__ = %s;\n", ctx.Indent(), helperName, argsDescriptor(ctx, fn, klass))

	target := helperName
	for _, w := range wrappers {
		target = fmt.Sprintf("%s(%s)", w, target)
	}
	ctx.Printf("%spyjslib.$pyjs__bind_method(%s, %q, %s);\n", ctx.Indent(), protoVar, fn.Name, target)
}

// genxformTransformMethod shares the same buffered trial-and-discard
// protocol as the plain Function emitter; factored out so Class doesn't
// need to import genxform directly under a different call shape.
func genxformTransformMethod(ctx *translator.Context, fn *pyast.Function, klass *translator.Klass) string {
	var body string
	runFunctionTransform(ctx, fn, klass, func(out string) { body = out })
	return body
}

func emitClassAssign(ctx *translator.Context, n *pyast.Assign, klass *translator.Klass, protoVar string) {
	rhs := Expr(ctx, n.Expr, klass)
	for _, target := range n.Nodes {
		switch t := target.(type) {
		case *pyast.AssName:
			ctx.Printf("%s%s.%s = %s;\n", ctx.Indent(), protoVar, mangler.MangleAttr(t.Name), rhs)
		case *pyast.Subscript:
			head := Expr(ctx, t.Expr, klass)
			args := make([]string, len(t.Subs))
			for i, s := range t.Subs {
				args[i] = Expr(ctx, s, klass)
			}
			ctx.Printf("%s%s.__setitem__(%s, %s);\n", ctx.Indent(), head, strings.Join(args, ", "), rhs)
		default:
			assignOne(ctx, target, rhs, klass)
		}
	}
}
