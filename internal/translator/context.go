// Package translator orchestrates one module's translation: the statement
// emitter walks the top level, handing class and function bodies to their
// specialized emitters, consulting the scope and options stacks the whole
// way down. This file holds the Context those emitters share — the output
// stream, uniquifier, imported-modules set, and per-class bookkeeping.
//
// Grounded on esbuild's internal/js_printer "printer" struct (a byte
// buffer plus per-emission bookkeeping threaded through every print
// method) and internal/linker's import-record accumulation.
package translator

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/andreyvit/pyjstranslate/internal/logger"
	"github.com/andreyvit/pyjstranslate/internal/options"
	"github.com/andreyvit/pyjstranslate/internal/pyast"
	"github.com/andreyvit/pyjstranslate/internal/scope"
)

// Klass is the per-class-being-emitted record: qualified name, base list,
// MD5 identity, and the method names seen so far. Its lifecycle is exactly
// one class emission.
type Klass struct {
	QualifiedName string
	Bases         []string
	MD5           string
	Methods       map[string]bool
}

func NewKlass(moduleName string, node *pyast.Class, qualifiedName string) *Klass {
	h := md5.Sum([]byte(fmt.Sprintf("%s|%d|%s", moduleName, node.Line(), astRepr(node))))
	return &Klass{
		QualifiedName: qualifiedName,
		MD5:           hex.EncodeToString(h[:]),
		Methods:       map[string]bool{},
	}
}

// astRepr is a cheap, stable stand-in for the original's repr(ast_subtree):
// we only need something that changes when the class's shape changes
// between compiles, not a byte-exact structural dump.
func astRepr(node *pyast.Class) string {
	var b strings.Builder
	b.WriteString(node.Name)
	for _, base := range node.Bases {
		fmt.Fprintf(&b, "|%T", base)
	}
	return b.String()
}

// Context is threaded through every emitter function (the "inputs
// are the node and the enclosing class"). It is process-local to one
// translation: nothing here is ever shared across goroutines
// translating different modules.
type Context struct {
	ModuleName string
	Options    *options.Stack
	Scope      *scope.Stack
	Warnings   *logger.Log

	// buffers is the output-stream stack: normally length 1 (the
	// module-level stream), but genxform pushes a fresh capture buffer for
	// each trial and re-emission of a function body and pops it to get the
	// body text. Locals are declared inline with `var` as they are emitted;
	// no declaration list is spliced into a captured body afterward.
	// This must be a stack, not a flat swap, because nested function
	// definitions need their own capture buffers.
	buffers []*bytes.Buffer

	uniq    map[string]int
	imports []string
	seen    map[string]bool

	genCase         int
	isGenerator     bool
	emittingGenBody bool
	hoistedVars     []string
	hoistedSeen     map[string]bool

	indent int
}

func NewContext(moduleName string, opts options.Options, builtinFuncs, builtinClasses, literals map[string]string) *Context {
	modulePrefix := "$pyjs.loaded_modules['" + moduleName + "']"
	c := &Context{
		ModuleName: moduleName,
		Options:    options.NewStack(opts),
		Scope:      scope.New(modulePrefix, builtinFuncs, builtinClasses, literals),
		Warnings:   logger.NewLog(moduleName),
		uniq:       map[string]int{},
		seen:       map[string]bool{},
	}
	c.buffers = []*bytes.Buffer{{}}
	c.Scope.Push("") // module-level frame for top-level bindings
	return c
}

// --- output stream ---

// Print appends text to the currently active buffer.
func (c *Context) Print(text string) {
	c.buffers[len(c.buffers)-1].WriteString(text)
}

// Printf is a formatting convenience over Print.
func (c *Context) Printf(format string, args ...interface{}) {
	c.Print(fmt.Sprintf(format, args...))
}

// Indent returns the current indentation string ("\t" repeated). The
// translator's indentation counter must never go negative; PopIndent
// panics if it would, since that is defined as a translator bug.
func (c *Context) Indent() string { return strings.Repeat("\t", c.indent) }

func (c *Context) IndentLevel() int { return c.indent }

func (c *Context) PushIndent() { c.indent++ }

func (c *Context) PopIndent() {
	if c.indent == 0 {
		panic("translator bug: dedent below zero")
	}
	c.indent--
}

// PushBuffer opens a fresh capture buffer, swapping it in as the active
// output stream. Matched by PopBuffer.
func (c *Context) PushBuffer() {
	c.buffers = append(c.buffers, &bytes.Buffer{})
}

// PopBuffer closes the innermost capture buffer and returns its contents,
// restoring the previous buffer as the active stream.
func (c *Context) PopBuffer() string {
	n := len(c.buffers)
	buf := c.buffers[n-1]
	c.buffers = c.buffers[:n-1]
	return buf.String()
}

// --- uniquifier ---

// Uniqid returns a never-before-issued identifier with the given prefix,
// for this translation (the "Uniquifier counter").
func (c *Context) Uniqid(prefix string) string {
	n := c.uniq[prefix]
	c.uniq[prefix] = n + 1
	return prefix + strconv.Itoa(n)
}

// --- imported-modules set ---

// AddImport records a module dependency in the ordered unique
// imported-modules set, implicitly adding parent packages too
// ("a.b.c" implies "a", "a.b").
func (c *Context) AddImport(path string) {
	parts := strings.Split(path, ".")
	for i := 1; i <= len(parts); i++ {
		parent := strings.Join(parts[:i], ".")
		if !c.seen[parent] {
			c.seen[parent] = true
			c.imports = append(c.imports, parent)
		}
	}
}

// Imports returns the ordered unique import set accumulated so far.
func (c *Context) Imports() []string {
	out := make([]string, len(c.imports))
	copy(out, c.imports)
	return out
}

// DepsTrailer renders the "PYJS_DEPS: [...]" comment appended at the end
// of every emitted module, listing its import closure for a downstream
// bundler to compute a load order from.
func (c *Context) DepsTrailer() string {
	sorted := append([]string(nil), c.imports...)
	sort.Strings(sorted)
	return "// PYJS_DEPS: [" + strings.Join(quoteAll(sorted), ", ") + "]\n"
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = "'" + s + "'"
	}
	return out
}

// --- generator state ---

// GeneratorSwitchCase mints resume-point case numbers from a single
// function-wide monotonic counter: when increment is true and the function
// being emitted is a generator, bumps the counter and returns the new case
// number; with increment false it returns the current number unchanged.
// Outside a generator it leaves the counter alone and returns 0.
// The counter is never reset by nesting depth, so two independent branches
// (e.g. two sibling while loops each containing a yield) can never collide
// on the same case number — every pause point in the function gets exactly
// one case label, however deeply it's nested in the source.
func (c *Context) GeneratorSwitchCase(increment bool) int {
	if !c.isGenerator {
		return 0
	}
	if increment {
		c.genCase++
	}
	return c.genCase
}

func (c *Context) SetIsGenerator(v bool) { c.isGenerator = v }
func (c *Context) IsGenerator() bool     { return c.isGenerator }

// ResetGeneratorDetection clears the latched generator flag and case
// counter, used before the function emitter's trial (pass 1) body emission
// so detection starts fresh for each function.
func (c *Context) ResetGeneratorDetection() {
	c.isGenerator = false
	c.genCase = 0
}

// SetEmittingGenBody toggles whether emitYieldStmt is in its pass-2, full
// state-machine emission mode (true) or its pass-1 detection-only mode
// (false). See internal/genxform for the two-pass buffer/discard protocol
// this supports.
func (c *Context) SetEmittingGenBody(v bool) { c.emittingGenBody = v }
func (c *Context) EmittingGenBody() bool     { return c.emittingGenBody }

// HoistVar registers name to be declared once in the generator's outer
// closure rather than with `var` inside the state-machine's $next
// function. $next runs as a fresh call on every .next()/.send(), so a
// `var` re-declared inside it forgets its value between calls; anything
// that needs to survive a yield pause — a for loop's iterator, an
// accumulator assigned before a loop and read after it resumes — has to
// live outside. A no-op outside a generator body.
func (c *Context) HoistVar(name string) {
	if !c.emittingGenBody {
		return
	}
	if c.hoistedSeen == nil {
		c.hoistedSeen = map[string]bool{}
	}
	if c.hoistedSeen[name] {
		return
	}
	c.hoistedSeen[name] = true
	c.hoistedVars = append(c.hoistedVars, name)
}

// TakeHoistedVars returns the vars accumulated by HoistVar since the last
// call and clears the list, called once by genxform right after the
// generator body's pass-2 emission completes.
func (c *Context) TakeHoistedVars() []string {
	out := c.hoistedVars
	c.hoistedVars = nil
	c.hoistedSeen = nil
	return out
}

// VarDecl renders a local-variable declaration whose value must keep
// crossing yield pauses: a plain `var name = expr;` outside a generator
// body, or (see HoistVar) a bare assignment with the declaration hoisted
// out of $next when emitting one.
func (c *Context) VarDecl(name, expr string) string {
	if c.emittingGenBody {
		c.HoistVar(name)
		return fmt.Sprintf("%s = %s;\n", name, expr)
	}
	return fmt.Sprintf("var %s = %s;\n", name, expr)
}
