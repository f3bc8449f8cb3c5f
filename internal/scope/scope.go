// Package scope implements the translator's lexical scope/name-resolution
// engine: an ordered stack of frames searched innermost-out,
// falling through to built-in function/class/literal tables when nothing
// user-defined matches. Grounded on esbuild's internal/js_ast Scope tree
// and internal/renamer symbol resolution, simplified from a tree (esbuild
// needs parent/child links for hoisting and cross-scope renaming) to a
// stack, since this translator resolves names single-pass as it walks
// rather than in a second renaming pass.
package scope

import "github.com/andreyvit/pyjstranslate/internal/mangler"

// Kind classifies what a resolved name refers to.
type Kind uint8

const (
	Builtin Kind = iota
	ModuleKind
	RootModule
	ClassKind
	FunctionKind
	Method
	Attribute
	Variable
	GlobalKind
	Imported
	Pyjamas     // the __pyjamas__ intrinsic namespace
	JavaScript  // the __javascript__ intrinsic namespace
)

// Entry is one scope-frame binding: the (name_kind, python_name,
// emitted_name) triple.
type Entry struct {
	Kind      Kind
	PyName    string
	Emitted   string
}

// Frame is one lexical scope. prefix is the scope-prefix token
// used to synthesize fully-qualified emitted names when resolution falls
// through to the module root.
type Frame struct {
	names  map[string]Entry
	prefix string
}

// Result is what Lookup returns: the resolved entry plus the depth it was
// found at (0 = innermost) and whether the hit was local (depth 0).
type Result struct {
	Kind    Kind
	PyName  string
	Emitted string
	Depth   int
	IsLocal bool
}

// Stack is an ordered sequence of frames, innermost last (i.e. the stack
// grows by appending, and Lookup walks it back to front).
type Stack struct {
	frames []*Frame

	// modulePrefix qualifies names that never resolve to any frame:
	// unresolved names are emitted as prefix + name rather than rejected,
	// since a name may be bound by a sibling module not yet translated.
	modulePrefix string

	builtinFuncs  map[string]string
	builtinClasses map[string]string
	literals      map[string]string
}

// New creates a scope stack for one module translation. builtinFuncs and
// builtinClasses are runtime entry-point tables; literals maps
// True/False/None (and any other reserved constant names) to their
// emitted JS form.
func New(modulePrefix string, builtinFuncs, builtinClasses, literals map[string]string) *Stack {
	return &Stack{
		modulePrefix:   modulePrefix,
		builtinFuncs:   builtinFuncs,
		builtinClasses: builtinClasses,
		literals:       literals,
	}
}

// Push opens a new innermost frame. An empty prefix means "no scope prefix
// set at this depth", .
func (s *Stack) Push(prefix string) {
	s.frames = append(s.frames, &Frame{names: map[string]Entry{}, prefix: prefix})
}

// Pop closes the innermost frame and returns it. Per the invariant,
// entries bound inside the popped frame become unreachable immediately:
// the frame is simply dropped, never retained.
func (s *Stack) Pop() *Frame {
	n := len(s.frames)
	f := s.frames[n-1]
	s.frames = s.frames[:n-1]
	return f
}

// Depth reports how many frames are currently open.
func (s *Stack) Depth() int { return len(s.frames) }

// Add binds a name in the innermost frame. The emitted name is mangled
// through the Name Mangler's variable channel unless the kind is Attribute
// (attribute-channel names are mangled at the point of access, via
// mangler.JoinAttrs, not at binding time).
func (s *Stack) Add(kind Kind, pyName, emitted string) {
	if kind != Attribute {
		emitted = mangler.MangleVariable(emitted)
	}
	f := s.frames[len(s.frames)-1]
	f.names[pyName] = Entry{Kind: kind, PyName: pyName, Emitted: emitted}
}

// Lookup resolves a name from the innermost frame outward, then the
// built-in function table, then the built-in class table, then the
// literal-constant map (the resolution order). It never returns a
// stale frame: popped frames are gone from s.frames entirely, so a search
// can only ever see frames that are still open.
func (s *Stack) Lookup(pyName string) (Result, bool) {
	for depth := 0; depth < len(s.frames); depth++ {
		f := s.frames[len(s.frames)-1-depth]
		if e, ok := f.names[pyName]; ok {
			return Result{
				Kind:    e.Kind,
				PyName:  e.PyName,
				Emitted: e.Emitted,
				Depth:   depth,
				IsLocal: depth == 0,
			}, true
		}
	}
	if emitted, ok := s.builtinFuncs[pyName]; ok {
		return Result{Kind: Builtin, PyName: pyName, Emitted: emitted, Depth: len(s.frames), IsLocal: false}, true
	}
	if emitted, ok := s.builtinClasses[pyName]; ok {
		return Result{Kind: Builtin, PyName: pyName, Emitted: emitted, Depth: len(s.frames), IsLocal: false}, true
	}
	if emitted, ok := s.literals[pyName]; ok {
		return Result{Kind: Builtin, PyName: pyName, Emitted: emitted, Depth: len(s.frames), IsLocal: false}, true
	}
	return Result{}, false
}

// ScopeName implements the scopeName(name, depth, is_local): if the
// hit was local, the bare (mangled) name is used; else if a non-default
// scope-prefix was recorded at the resolved depth, it's prepended; else the
// module prefix qualifies the name.
func (s *Stack) ScopeName(emitted string, depth int, isLocal bool) string {
	if isLocal {
		return emitted
	}
	if depth < len(s.frames) {
		f := s.frames[len(s.frames)-1-depth]
		if f.prefix != "" {
			return f.prefix + "." + emitted
		}
	}
	return s.modulePrefix + "." + emitted
}

// Resolve is the common case: look a name up and immediately qualify it
// with ScopeName, falling back to a module-prefixed deferred reference
// when nothing in any frame or built-in table matches.
func (s *Stack) Resolve(pyName string) string {
	mangled := mangler.MangleVariable(pyName)
	res, ok := s.Lookup(pyName)
	if !ok {
		return s.modulePrefix + "." + mangled
	}
	if res.Kind == Builtin {
		// Builtin table entries are already fully qualified runtime
		// references (e.g. "pyjslib.range"), not module-local bindings, so
		// they bypass the scope-prefix/module-prefix qualification rule
		// entirely (the resolution order treats the tables as a
		// distinct final fallback, not another frame).
		return res.Emitted
	}
	return s.ScopeName(res.Emitted, res.Depth, res.IsLocal)
}
