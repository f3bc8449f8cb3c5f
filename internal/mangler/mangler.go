// Package mangler implements the translator's Name Mangler:
// two disjoint remap tables that keep emitted identifiers from colliding
// with JS reserved words or with the fixed attribute-remap set, plus the
// attribute-join helper that decides between dotted and bracketed member
// access. Grounded on esbuild's internal/js_lexer reserved-word tables
// and internal/renamer's reserved-name bookkeeping, adapted to this
// compiler's single always-on "$$" remap instead of a minifier-driven
// renaming pass.
package mangler

import "strings"

// reservedWords are JS/ECMAScript reserved words plus "arguments", which
// the translator treats the same way since every emitted function already
// has its own synthesized "arguments"-shaped array.
var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true,
	"do": true, "else": true, "enum": true, "export": true, "extends": true,
	"false": true, "finally": true, "for": true, "function": true, "if": true,
	"import": true, "in": true, "instanceof": true, "new": true, "null": true,
	"return": true, "super": true, "switch": true, "this": true, "throw": true,
	"true": true, "try": true, "typeof": true, "var": true, "void": true,
	"while": true, "with": true, "implements": true, "interface": true,
	"let": true, "package": true, "private": true, "protected": true,
	"public": true, "static": true, "yield": true, "arguments": true,
}

// reservedAttrs is the fixed attribute-remap set: these names collide
// with properties JS places on every function/object
// (Function.prototype, Function.call/apply, Object.constructor) or that the
// emitted class machinery itself uses.
var reservedAttrs = map[string]bool{
	"prototype": true, "call": true, "apply": true, "constructor": true,
	"name": true,
}

// MangleVariable prefixes an identifier with "$$" if it collides with a JS
// reserved word, else returns it unchanged. Applied on every declaration
// and every use of a variable-channel name.
func MangleVariable(name string) string {
	if reservedWords[name] {
		return "$$" + name
	}
	return name
}

// MangleAttr prefixes an attribute-channel identifier with "$$" if it's in
// the fixed remap set, else returns it unchanged.
func MangleAttr(name string) string {
	if reservedAttrs[name] {
		return "$$" + name
	}
	return name
}

// JoinAttrs composes a head expression with a tail of attribute segments
// into either dotted form ("a.b.c") when every segment is a simple
// mangled identifier, or bracketed form ("a['b']['c']") when any segment
// must be quoted (e.g. it isn't a valid identifier, or the caller already
// decided it needs quoting). Segments that arrive pre-quoted (wrapped in
// single quotes) are unwrapped before the decision is made, so repeated
// joins don't accumulate quote layers.
func JoinAttrs(head string, segments ...string) string {
	unwrapped := make([]string, len(segments))
	simple := true
	for i, seg := range segments {
		s := unwrapSingleQuoted(seg)
		unwrapped[i] = s
		if !isSimpleIdent(s) {
			simple = false
		}
	}

	var b strings.Builder
	b.WriteString(head)
	if simple {
		for _, s := range unwrapped {
			b.WriteByte('.')
			b.WriteString(MangleAttr(s))
		}
	} else {
		for _, s := range unwrapped {
			b.WriteString("['")
			b.WriteString(strings.ReplaceAll(s, "'", "\\'"))
			b.WriteString("']")
		}
	}
	return b.String()
}

func unwrapSingleQuoted(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}

func isSimpleIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}
