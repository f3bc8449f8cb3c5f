package translator

// BuiltinFunctions, BuiltinClasses and Literals are the runtime contract
// tables the scope stack falls through to once no user-defined frame
// resolves a name. Each maps the Python-visible name to the JS expression
// the runtime library exposes it as.
var (
	BuiltinFunctions = map[string]string{
		"len": "pyjslib.len", "range": "pyjslib.range", "enumerate": "pyjslib.enumerate",
		"map": "pyjslib.map", "filter": "pyjslib.filter", "isinstance": "pyjslib.isinstance",
		"hasattr": "pyjslib.hasattr", "getattr": "pyjslib.getattr", "setattr": "pyjslib.setattr",
		"delattr": "pyjslib.delattr", "repr": "pyjslib.repr", "str": "pyjslib.str",
		"int": "pyjslib.int", "float": "pyjslib.float", "hash": "pyjslib.hash",
		"cmp": "pyjslib.cmp", "bool": "pyjslib.bool", "print": "pyjslib.printFunc",
	}

	BuiltinClasses = map[string]string{
		"list": "pyjslib.List", "tuple": "pyjslib.Tuple", "dict": "pyjslib.Dict",
		"object": "pyjslib.object", "Exception": "pyjslib.Exception",
		"BaseException": "pyjslib.BaseException", "AttributeError": "pyjslib.AttributeError",
		"TypeError": "pyjslib.TypeError", "ValueError": "pyjslib.ValueError",
		"KeyError": "pyjslib.KeyError", "IndexError": "pyjslib.IndexError",
		"ImportError": "pyjslib.ImportError", "NotImplementedError": "pyjslib.NotImplementedError",
		"AssertionError": "pyjslib.AssertionError", "RuntimeError": "pyjslib.RuntimeError",
		"StopIteration": "pyjslib.StopIteration", "GeneratorExit": "pyjslib.GeneratorExit",
	}

	Literals = map[string]string{
		"True": "true", "False": "false", "None": "null",
	}
)
