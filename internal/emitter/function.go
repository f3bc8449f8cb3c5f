package emitter

import (
	"fmt"
	"strings"

	"github.com/andreyvit/pyjstranslate/internal/genxform"
	"github.com/andreyvit/pyjstranslate/internal/logger"
	"github.com/andreyvit/pyjstranslate/internal/mangler"
	"github.com/andreyvit/pyjstranslate/internal/options"
	"github.com/andreyvit/pyjstranslate/internal/pyast"
	"github.com/andreyvit/pyjstranslate/internal/scope"
	"github.com/andreyvit/pyjstranslate/internal/translator"
)

// Bind-type tags stamped onto every emitted function (see GLOSSARY).
const (
	BindStatic   = 0
	BindInstance = 1
	BindClass    = 2
)

// Function implements the Function/Method Emitter. klass is
// non-nil when emitting a method body; decorators are applied right-to-left,
// with compiler.* decorators mutating the options stack instead of
// producing wrapper code, and staticmethod/classmethod setting the bind
// type instead of wrapping.
func Function(ctx *translator.Context, fn *pyast.Function, klass KlassRef) {
	ctx.Options.Push()
	defer ctx.Options.Pop()

	bindType := BindInstance
	if klass == nil {
		bindType = BindStatic
	}
	var wrappers []string

	// Decorators are applied right-to-left: the original code's decorator
	// list is written top-to-bottom closest-to-function-first, so walking
	// it in reverse mirrors `name = dec1(dec2(name))` nesting order.
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

	emittedName := mangler.MangleVariable(fn.Name)
	ctx.Scope.Push(emittedName)
	for i, argName := range fn.ArgNames {
		ctx.Scope.Add(scope.Variable, argName, argName)
		_ = i
	}

	params := make([]string, len(fn.ArgNames))
	for i, a := range fn.ArgNames {
		params[i] = mangler.MangleVariable(a)
	}

	result := genxform.Transform(ctx, fn.Code, func(c *translator.Context, body pyast.Node) {
		emitFunctionPrelude(c, fn, klass, bindType)
		Stmt(c, body, klass)
	})

	ctx.Scope.Pop()

	ctx.Printf("%s%s = function(%s) {\n", ctx.Indent(), emittedName, strings.Join(params, ", "))
	ctx.PushIndent()
	ctx.Print(result.Body)
	ctx.PopIndent()
	ctx.Printf("%s};\n", ctx.Indent())
	ctx.Printf("%s%s.__name__ = %q;\n", ctx.Indent(), emittedName, fn.Name)
	ctx.Printf("%s%s.__bind_type__ = %d;\n", ctx.Indent(), emittedName, bindType)
	ctx.Printf("%s%s.__args__ = %s;\n", ctx.Indent(), emittedName, argsDescriptor(ctx, fn, klass))

	target := emittedName
	for _, w := range wrappers {
		target = fmt.Sprintf("%s(%s)", w, target)
	}
	if len(wrappers) > 0 {
		ctx.Printf("%s%s = %s;\n", ctx.Indent(), emittedName, target)
	}
}

// runFunctionTransform runs the prelude-plus-body emission through
// genxform's buffered trial-and-discard protocol and hands the final body
// text to sink. The Class emitter uses it for each method (a prototype-bound
// helper); the plain Function emitter above calls genxform.Transform itself
// with the same prelude-plus-body callback. As in Function, staticmethod
// and classmethod decorators set the bind type the prelude sees.
func runFunctionTransform(ctx *translator.Context, fn *pyast.Function, klass KlassRef, sink func(string)) {
	bindType := BindInstance
	if klass == nil {
		bindType = BindStatic
	}
	for i := len(fn.Decorators) - 1; i >= 0; i-- {
		switch decoratorIntrinsicName(fn.Decorators[i]) {
		case "staticmethod":
			bindType = BindStatic
		case "classmethod":
			bindType = BindClass
		}
	}
	result := genxform.Transform(ctx, fn.Code, func(c *translator.Context, body pyast.Node) {
		emitFunctionPrelude(c, fn, klass, bindType)
		Stmt(c, body, klass)
	})
	sink(result.Body)
}

// decoratorIntrinsicName returns the bare name for decorators the
// translator treats specially (staticmethod, classmethod, compiler.*),
// or "" for an ordinary decorator expression that should just wrap the
// function.
func decoratorIntrinsicName(dec pyast.Node) string {
	switch d := dec.(type) {
	case *pyast.Name:
		switch d.Name {
		case "staticmethod", "classmethod":
			return d.Name
		}
	case *pyast.Getattr:
		if base, ok := d.Expr.(*pyast.Name); ok && base.Name == "compiler" {
			return "compiler." + d.Attr
		}
	}
	return ""
}

// applyCompilerFlag mutates the top options frame for a compiler.FlagName
// decorator. Returns false if name isn't a recognized
// compiler.* intrinsic.
func applyCompilerFlag(ctx *translator.Context, name string) bool {
	if !strings.HasPrefix(name, "compiler.") {
		return false
	}
	flag := strings.TrimPrefix(name, "compiler.")
	opts := ctx.Options.Top()
	switch flag {
	case "noDebug":
		opts.Debug = false
	case "noSourceTracking":
		opts.SourceTracking = false
	case "noLineTracking":
		opts.LineTracking = false
	case "noFunctionArgumentChecking":
		opts.FunctionArgumentChecking = false
	case "noAttributeChecking":
		opts.AttributeChecking = false
	case "noBoundMethods":
		opts.BoundMethods = false
	case "descriptors":
		opts.Descriptors = true
	case "inlineBool":
		opts.InlineBool = true
	case "inlineEq":
		opts.InlineEq = true
	case "inlineLen":
		opts.InlineLen = true
	case "operatorFuncs":
		opts.OperatorFuncs = true
	default:
		return false
	}
	ctx.Options.SetTop(opts)
	return true
}

// ApplySetCompilerOptions implements the __pyjamas__.setCompilerOptions(...)
// marker call: mutates switches at the call site and emits
// nothing. Panics with a configuration error if name isn't one of the three
// documented presets, matching the original translator's validated-argument
// behavior.
func ApplySetCompilerOptions(ctx *translator.Context, moduleName string, line int, name string) {
	preset, ok := options.Preset(name)
	if !ok {
		panic(logger.NewConfigError(moduleName, line, "setCompilerOptions invalid option %q", name))
	}
	ctx.Options.SetTop(preset)
}

// emitFunctionPrelude implements the argument-binding prelude:
// count provided arguments, branch on bound-vs-unbound call shape for
// methods, collect *args into a Tuple, pull a trailing kwarg Dict for
// **kwargs, and apply defaults.
func emitFunctionPrelude(ctx *translator.Context, fn *pyast.Function, klass KlassRef, bindType int) {
	min, max := requiredArgCount(fn)
	if ctx.Options.Top().FunctionArgumentChecking {
		maxArg := fmt.Sprintf("%d", max)
		if fn.VarArgs {
			maxArg = "-1"
		}
		ctx.Printf("%sif (arguments.length < %d || (%s >= 0 && arguments.length > %s)) { pyjslib.$pyjs__exception_arg_mismatch(%q, %d, %s, arguments.length); }\n",
			ctx.Indent(), min, maxArg, maxArg, fn.Name, min, maxArg)
	}

	if klass != nil && bindType == BindInstance {
		ctx.Printf("%svar self = (this && this.__is_instance__) ? this : arguments[0];\n", ctx.Indent())
	}

	argNames := ordinaryArgNames(fn)
	for i := 0; i < len(argNames); i++ {
		emitted := mangler.MangleVariable(argNames[i])
		if i == 0 && klass != nil && bindType == BindInstance {
			ctx.Printf("%svar %s = self;\n", ctx.Indent(), emitted)
			continue
		}
		ctx.Printf("%svar %s = arguments[%d];\n", ctx.Indent(), emitted, i)
	}

	if fn.VarArgs {
		ctx.Printf("%svar %s = new pyjslib.Tuple(Array.prototype.slice.call(arguments, %d));\n",
			ctx.Indent(), mangler.MangleVariable(varArgsName(fn)), len(argNames))
	}
	if fn.KwArgs {
		ctx.Printf("%svar %s = pyjslib.$pyjs__pop_kwargs(arguments);\n",
			ctx.Indent(), mangler.MangleVariable(kwArgsName(fn)))
	}

	defaultOffset := len(argNames) - len(fn.Defaults)
	for i, def := range fn.Defaults {
		argIdx := defaultOffset + i
		emitted := mangler.MangleVariable(argNames[argIdx])
		ctx.Printf("%sif (%s === undefined) { %s = %s; }\n", ctx.Indent(), emitted, emitted, Expr(ctx, def, klass))
	}
}

// ordinaryArgNames strips the synthetic trailing *args/**kwargs names off
// fn.ArgNames, leaving just the plain positional parameters — the same
// split argsDescriptor needs for its [arg_name, default_expr?] triples, and
// the prelude needs so defaults apply to the right parameter instead of to
// a vararg/kwarg tail slot.
func ordinaryArgNames(fn *pyast.Function) []string {
	ordinary := fn.ArgNames
	if fn.KwArgs {
		ordinary = ordinary[:len(ordinary)-1]
	}
	if fn.VarArgs {
		ordinary = ordinary[:len(ordinary)-1]
	}
	return ordinary
}

func requiredArgCount(fn *pyast.Function) (min, max int) {
	ordinary := ordinaryArgNames(fn)
	max = len(ordinary)
	min = max - len(fn.Defaults)
	return
}

// varArgsName/kwArgsName resolve the synthetic "*args"/"**kwargs" binding
// name. The AST doesn't carry separate names for these in our simplified
// model beyond the tail of ArgNames reserved for them by the parser; by
// convention the parser appends them as the last one or two entries when
// VarArgs/KwArgs are set.
func varArgsName(fn *pyast.Function) string {
	n := len(fn.ArgNames)
	if fn.KwArgs {
		return fn.ArgNames[n-2]
	}
	return fn.ArgNames[n-1]
}

func kwArgsName(fn *pyast.Function) string {
	return fn.ArgNames[len(fn.ArgNames)-1]
}

// argsDescriptor renders the __args__ descriptor:
// [vararg_name, kwarg_name, [arg_name, default_expr?]...].
func argsDescriptor(ctx *translator.Context, fn *pyast.Function, klass KlassRef) string {
	varArg, kwArg := "null", "null"
	if fn.KwArgs {
		kwArg = fmt.Sprintf("%q", kwArgsName(fn))
	}
	if fn.VarArgs {
		varArg = fmt.Sprintf("%q", varArgsName(fn))
	}
	ordinary := ordinaryArgNames(fn)

	defaultOffset := len(ordinary) - len(fn.Defaults)
	parts := make([]string, len(ordinary))
	for i, name := range ordinary {
		if i >= defaultOffset && i-defaultOffset < len(fn.Defaults) {
			def := fn.Defaults[i-defaultOffset]
			parts[i] = fmt.Sprintf("[%q, %s]", name, Expr(ctx, def, klass))
		} else {
			parts[i] = fmt.Sprintf("[%q]", name)
		}
	}
	items := append([]string{varArg, kwArg}, parts...)
	return "[" + strings.Join(items, ", ") + "]"
}
