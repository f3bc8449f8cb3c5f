// Package options implements the translator's compile-options stack:
// thirteen boolean switches pushed on entry to a function and popped on
// exit, mutated in place by decorators and by the setCompilerOptions(...)
// marker call. Grounded on esbuild's internal/config.Options pattern of a
// plain struct threaded by value through the parser, adapted to an
// explicit stack since function-local option scoping needs push/pop
// semantics rather than one process-wide options value.
package options

// Options is one frame: the thirteen switches a function body's emission
// consults while walking its body.
type Options struct {
	Debug                    bool
	PrintStatements          bool
	FunctionArgumentChecking bool
	AttributeChecking        bool
	BoundMethods             bool
	Descriptors              bool
	SourceTracking           bool
	LineTracking             bool
	StoreSource              bool
	InlineBool               bool
	InlineEq                 bool
	InlineLen                bool
	OperatorFuncs            bool
}

// Default matches the original translator's un-decorated defaults: checks
// on, tracking on, inlining and operator lowering off.
func Default() Options {
	return Options{
		FunctionArgumentChecking: true,
		AttributeChecking:        true,
		BoundMethods:             true,
		Descriptors:              false,
		SourceTracking:           true,
		LineTracking:             true,
		StoreSource:              true,
	}
}

// Speed disables every check and enables the inline fast paths, at the
// cost of Python-exact semantics for overloaded operators.
func Speed() Options {
	o := Default()
	o.FunctionArgumentChecking = false
	o.AttributeChecking = false
	o.SourceTracking = false
	o.LineTracking = false
	o.InlineBool = true
	o.InlineEq = true
	o.InlineLen = true
	o.OperatorFuncs = false
	return o
}

// Strict enables Python-semantics checks (operator lowering, descriptors)
// at the cost of speed.
func Strict() Options {
	o := Default()
	o.OperatorFuncs = true
	o.Descriptors = true
	o.AttributeChecking = true
	return o
}

// Debug turns on wrapping and tracking for maximal diagnosability.
func Debug() Options {
	o := Default()
	o.Debug = true
	o.SourceTracking = true
	o.LineTracking = true
	o.StoreSource = true
	return o
}

// Preset resolves a setCompilerOptions(name) argument to a
// bundle. ok is false for any name other than the three documented
// presets; the caller is expected to turn that into a configuration error,
// matching the original translator's validated-argument behavior.
func Preset(name string) (Options, bool) {
	switch name {
	case "Debug":
		return Debug(), true
	case "Speed":
		return Speed(), true
	case "Strict":
		return Strict(), true
	default:
		return Options{}, false
	}
}

// Stack is a push/pop stack of option frames. The top frame is mutated in
// place by decorator parsing before a function body is walked; Pop
// restores whatever frame was active before Push.
type Stack struct {
	frames []Options
}

// NewStack seeds the stack with one module-level frame.
func NewStack(initial Options) *Stack {
	return &Stack{frames: []Options{initial}}
}

// Push snapshots the current top frame as the starting point for a nested
// function/method/decorator scope.
func (s *Stack) Push() {
	top := s.frames[len(s.frames)-1]
	s.frames = append(s.frames, top)
}

// Pop restores the options in effect before the matching Push. Every Push
// must be matched by exactly one Pop by the time the enclosing function's
// body has been emitted.
func (s *Stack) Pop() Options {
	n := len(s.frames)
	f := s.frames[n-1]
	s.frames = s.frames[:n-1]
	return f
}

// Depth reports how many frames are open; used to assert that
// depth-at-entry equals depth-at-exit for every function node.
func (s *Stack) Depth() int { return len(s.frames) }

// Top returns the currently active options frame.
func (s *Stack) Top() Options { return s.frames[len(s.frames)-1] }

// SetTop replaces the currently active frame, used by decorator application
// and by setCompilerOptions(...) to mutate in place without pushing.
func (s *Stack) SetTop(o Options) { s.frames[len(s.frames)-1] = o }
