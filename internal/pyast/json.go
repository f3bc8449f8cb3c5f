package pyast

import (
	"encoding/json"
	"fmt"
)

// raw is the on-disk shape of one node: a "kind" discriminator plus
// whatever fields that kind needs, decoded lazily via json.RawMessage so
// a single generic envelope can drive every concrete type below. A real
// Python parser lives outside this repository: a batch driver feeds the
// translator pre-parsed ASTs serialized this way
// instead of source text.
type raw struct {
	Kind     string            `json:"kind"`
	Lineno   int               `json:"lineno"`
	Name     string            `json:"name"`
	Names    json.RawMessage   `json:"names"`
	Body     json.RawMessage   `json:"body"`
	Value    json.RawMessage   `json:"value"`
	Expr     json.RawMessage   `json:"expr"`
	ArgNames []string          `json:"argnames"`
	Defaults json.RawMessage   `json:"defaults"`
	VarArgs  bool              `json:"varargs"`
	KwArgs   bool              `json:"kwargs"`
	Decorators json.RawMessage `json:"decorators"`
	Code     json.RawMessage   `json:"code"`
	Doc      string            `json:"doc"`
	Bases    json.RawMessage   `json:"bases"`
	Tests    json.RawMessage   `json:"tests"`
	Else     json.RawMessage   `json:"else"`
	Assign   json.RawMessage   `json:"assign"`
	List     json.RawMessage   `json:"list"`
	Handlers json.RawMessage   `json:"handlers"`
	ExprList json.RawMessage   `json:"exprlist"`
	Final    json.RawMessage   `json:"final"`
	ExprType json.RawMessage   `json:"exprtype"`
	ExprValue json.RawMessage  `json:"exprvalue"`
	Fail     json.RawMessage   `json:"fail"`
	ModName  string            `json:"modname"`
	Dest     json.RawMessage   `json:"dest"`
	Nodes    json.RawMessage   `json:"nodes"`
	Target   json.RawMessage   `json:"target"`
	Op       string            `json:"op"`
	Flags    string            `json:"flags"`
	Attr     string            `json:"attr"`
	ConstKindStr string        `json:"const_kind"`
	Subs     json.RawMessage   `json:"subs"`
	Lower    json.RawMessage   `json:"lower"`
	Upper    json.RawMessage   `json:"upper"`
	Items    json.RawMessage   `json:"items"`
	Node     json.RawMessage   `json:"node"`
	Args     json.RawMessage   `json:"args"`
	Keywords json.RawMessage   `json:"keywords"`
	Star     json.RawMessage   `json:"star"`
	DStar    json.RawMessage   `json:"dstar"`
	Quals    json.RawMessage   `json:"quals"`
	Ops      json.RawMessage   `json:"ops"`
	Ifs      json.RawMessage   `json:"ifs"`
	Key      json.RawMessage   `json:"key"`
	Left     json.RawMessage   `json:"left"`
	Right    json.RawMessage   `json:"right"`
	Test     json.RawMessage   `json:"test"`
	Literal  string            `json:"literal"`
}

// UnmarshalModule decodes one top-level translation unit serialized with
// Kind "Module" from its JSON AST form (the raw envelope above).
func UnmarshalModule(data []byte) (*Module, error) {
	n, err := decodeNode(data)
	if err != nil {
		return nil, err
	}
	mod, ok := n.(*Module)
	if !ok {
		return nil, fmt.Errorf("pyast: top-level node is %T, not Module", n)
	}
	return mod, nil
}

func decodeNode(data []byte) (Node, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("pyast: %w", err)
	}
	b := base{Lineno: r.Lineno}

	switch r.Kind {
	case "Module":
		body, err := decodeNodeList(r.Body)
		if err != nil {
			return nil, err
		}
		return &Module{base: b, Name: r.Name, Body: body}, nil
	case "Stmt":
		nodes, err := decodeNodeList(r.Nodes)
		if err != nil {
			return nil, err
		}
		return &Stmt{base: b, Nodes: nodes}, nil
	case "Function":
		defaults, err := decodeNodeList(r.Defaults)
		if err != nil {
			return nil, err
		}
		decorators, err := decodeNodeList(r.Decorators)
		if err != nil {
			return nil, err
		}
		code, err := decodeNode(r.Code)
		if err != nil {
			return nil, err
		}
		return &Function{base: b, Name: r.Name, ArgNames: r.ArgNames, Defaults: defaults,
			VarArgs: r.VarArgs, KwArgs: r.KwArgs, Decorators: decorators, Code: code, Doc: r.Doc}, nil
	case "Class":
		bases, err := decodeNodeList(r.Bases)
		if err != nil {
			return nil, err
		}
		code, err := decodeNode(r.Code)
		if err != nil {
			return nil, err
		}
		return &Class{base: b, Name: r.Name, Bases: bases, Code: code, Doc: r.Doc}, nil
	case "Return":
		v, err := decodeNode(r.Value)
		if err != nil {
			return nil, err
		}
		return &Return{base: b, Value: v}, nil
	case "Yield":
		v, err := decodeNode(r.Value)
		if err != nil {
			return nil, err
		}
		return &Yield{base: b, Value: v}, nil
	case "Break":
		return &Break{base: b}, nil
	case "Continue":
		return &Continue{base: b}, nil
	case "Pass":
		return &Pass{base: b}, nil
	case "Global":
		var names []string
		if err := unmarshalIfPresent(r.Names, &names); err != nil {
			return nil, err
		}
		return &Global{base: b, Names: names}, nil
	case "If":
		var rawTests [][2]json.RawMessage
		if err := unmarshalIfPresent(r.Tests, &rawTests); err != nil {
			return nil, err
		}
		tests := make([][2]Node, len(rawTests))
		for i, pair := range rawTests {
			cond, err := decodeNode(pair[0])
			if err != nil {
				return nil, err
			}
			body, err := decodeNode(pair[1])
			if err != nil {
				return nil, err
			}
			tests[i] = [2]Node{cond, body}
		}
		elseN, err := decodeNode(r.Else)
		if err != nil {
			return nil, err
		}
		return &If{base: b, Tests: tests, Else: elseN}, nil
	case "For":
		assign, err := decodeNode(r.Assign)
		if err != nil {
			return nil, err
		}
		list, err := decodeNode(r.List)
		if err != nil {
			return nil, err
		}
		body, err := decodeNode(r.Body)
		if err != nil {
			return nil, err
		}
		elseN, err := decodeNode(r.Else)
		if err != nil {
			return nil, err
		}
		return &For{base: b, Assign: assign, List: list, Body: body, Else: elseN}, nil
	case "While":
		testN, err := decodeNode(r.Test)
		if err != nil {
			return nil, err
		}
		body, err := decodeNode(r.Body)
		if err != nil {
			return nil, err
		}
		elseN, err := decodeNode(r.Else)
		if err != nil {
			return nil, err
		}
		return &While{base: b, Test: testN, Body: body, Else: elseN}, nil
	case "TryExcept":
		body, err := decodeNode(r.Body)
		if err != nil {
			return nil, err
		}
		var rawHandlers []struct {
			ExprList json.RawMessage `json:"exprlist"`
			Name     json.RawMessage `json:"name"`
			Body     json.RawMessage `json:"body"`
		}
		if err := unmarshalIfPresent(r.Handlers, &rawHandlers); err != nil {
			return nil, err
		}
		handlers := make([]TryHandler, len(rawHandlers))
		for i, h := range rawHandlers {
			exprList, err := decodeNode(h.ExprList)
			if err != nil {
				return nil, err
			}
			name, err := decodeNode(h.Name)
			if err != nil {
				return nil, err
			}
			hbody, err := decodeNode(h.Body)
			if err != nil {
				return nil, err
			}
			handlers[i] = TryHandler{ExprList: exprList, Name: name, Body: hbody}
		}
		elseN, err := decodeNode(r.Else)
		if err != nil {
			return nil, err
		}
		return &TryExcept{base: b, Body: body, Handlers: handlers, Else: elseN}, nil
	case "TryFinally":
		body, err := decodeNode(r.Body)
		if err != nil {
			return nil, err
		}
		final, err := decodeNode(r.Final)
		if err != nil {
			return nil, err
		}
		return &TryFinally{base: b, Body: body, Final: final}, nil
	case "Raise":
		et, err := decodeNode(r.ExprType)
		if err != nil {
			return nil, err
		}
		ev, err := decodeNode(r.ExprValue)
		if err != nil {
			return nil, err
		}
		return &Raise{base: b, ExprType: et, ExprValue: ev}, nil
	case "Assert":
		test, err := decodeNode(r.Test)
		if err != nil {
			return nil, err
		}
		fail, err := decodeNode(r.Fail)
		if err != nil {
			return nil, err
		}
		return &Assert{base: b, Test: test, Fail: fail}, nil
	case "Import":
		var names [][2]string
		if err := unmarshalIfPresent(r.Names, &names); err != nil {
			return nil, err
		}
		return &Import{base: b, Names: names}, nil
	case "From":
		var names [][2]string
		if err := unmarshalIfPresent(r.Names, &names); err != nil {
			return nil, err
		}
		return &From{base: b, ModName: r.ModName, Names: names}, nil
	case "Print", "Printnl":
		nodes, err := decodeNodeList(r.Nodes)
		if err != nil {
			return nil, err
		}
		dest, err := decodeNode(r.Dest)
		if err != nil {
			return nil, err
		}
		if r.Kind == "Printnl" {
			return &Printnl{base: b, Nodes: nodes, Dest: dest}, nil
		}
		return &Print{base: b, Nodes: nodes, Dest: dest}, nil
	case "Discard":
		v, err := decodeNode(r.Value)
		if err != nil {
			return nil, err
		}
		return &Discard{base: b, Value: v}, nil
	case "Assign":
		nodes, err := decodeNodeList(r.Nodes)
		if err != nil {
			return nil, err
		}
		expr, err := decodeNode(r.Expr)
		if err != nil {
			return nil, err
		}
		return &Assign{base: b, Nodes: nodes, Expr: expr}, nil
	case "AugAssign":
		target, err := decodeNode(r.Target)
		if err != nil {
			return nil, err
		}
		expr, err := decodeNode(r.Expr)
		if err != nil {
			return nil, err
		}
		return &AugAssign{base: b, Target: target, Op: r.Op, Expr: expr}, nil
	case "AssName":
		return &AssName{base: b, Name: r.Name, Flags: r.Flags}, nil
	case "AssAttr":
		expr, err := decodeNode(r.Expr)
		if err != nil {
			return nil, err
		}
		return &AssAttr{base: b, Expr: expr, Attr: r.Attr, Flags: r.Flags}, nil
	case "AssTuple":
		nodes, err := decodeNodeList(r.Nodes)
		if err != nil {
			return nil, err
		}
		return &AssTuple{base: b, Nodes: nodes}, nil
	case "AssList":
		nodes, err := decodeNodeList(r.Nodes)
		if err != nil {
			return nil, err
		}
		return &AssList{base: b, Nodes: nodes}, nil
	case "Name":
		return &Name{base: b, Name: r.Name}, nil
	case "Const":
		kind, err := constKindFromString(r.ConstKindStr)
		if err != nil {
			return nil, err
		}
		return &Const{base: b, Kind: kind, Value: r.Literal}, nil
	case "Getattr":
		expr, err := decodeNode(r.Expr)
		if err != nil {
			return nil, err
		}
		return &Getattr{base: b, Expr: expr, Attr: r.Attr}, nil
	case "Subscript":
		expr, err := decodeNode(r.Expr)
		if err != nil {
			return nil, err
		}
		subs, err := decodeNodeList(r.Subs)
		if err != nil {
			return nil, err
		}
		return &Subscript{base: b, Expr: expr, Subs: subs, Flags: r.Flags}, nil
	case "Slice":
		expr, err := decodeNode(r.Expr)
		if err != nil {
			return nil, err
		}
		lower, err := decodeNode(r.Lower)
		if err != nil {
			return nil, err
		}
		upper, err := decodeNode(r.Upper)
		if err != nil {
			return nil, err
		}
		return &Slice{base: b, Expr: expr, Lower: lower, Upper: upper, Flags: r.Flags}, nil
	case "Tuple":
		nodes, err := decodeNodeList(r.Nodes)
		if err != nil {
			return nil, err
		}
		return &Tuple{base: b, Nodes: nodes}, nil
	case "List":
		nodes, err := decodeNodeList(r.Nodes)
		if err != nil {
			return nil, err
		}
		return &List{base: b, Nodes: nodes}, nil
	case "Dict":
		var rawItems []struct {
			Key   json.RawMessage `json:"key"`
			Value json.RawMessage `json:"value"`
		}
		if err := unmarshalIfPresent(r.Items, &rawItems); err != nil {
			return nil, err
		}
		items := make([]DictItem, len(rawItems))
		for i, it := range rawItems {
			k, err := decodeNode(it.Key)
			if err != nil {
				return nil, err
			}
			v, err := decodeNode(it.Value)
			if err != nil {
				return nil, err
			}
			items[i] = DictItem{Key: k, Value: v}
		}
		return &Dict{base: b, Items: items}, nil
	case "Keyword":
		expr, err := decodeNode(r.Expr)
		if err != nil {
			return nil, err
		}
		return &Keyword{base: b, Name: r.Name, Expr: expr}, nil
	case "CallFunc":
		node, err := decodeNode(r.Node)
		if err != nil {
			return nil, err
		}
		args, err := decodeNodeList(r.Args)
		if err != nil {
			return nil, err
		}
		var rawKeywords []struct {
			Name string          `json:"name"`
			Expr json.RawMessage `json:"expr"`
		}
		if err := unmarshalIfPresent(r.Keywords, &rawKeywords); err != nil {
			return nil, err
		}
		keywords := make([]Keyword, len(rawKeywords))
		for i, kw := range rawKeywords {
			e, err := decodeNode(kw.Expr)
			if err != nil {
				return nil, err
			}
			keywords[i] = Keyword{Name: kw.Name, Expr: e}
		}
		star, err := decodeNode(r.Star)
		if err != nil {
			return nil, err
		}
		dstar, err := decodeNode(r.DStar)
		if err != nil {
			return nil, err
		}
		return &CallFunc{base: b, Node: node, Args: args, Keywords: keywords, Star: star, DStar: dstar}, nil
	case "Lambda":
		defaults, err := decodeNodeList(r.Defaults)
		if err != nil {
			return nil, err
		}
		code, err := decodeNode(r.Code)
		if err != nil {
			return nil, err
		}
		return &Lambda{base: b, ArgNames: r.ArgNames, Defaults: defaults, VarArgs: r.VarArgs, KwArgs: r.KwArgs, Code: code}, nil
	case "ListComp":
		expr, err := decodeNode(r.Expr)
		if err != nil {
			return nil, err
		}
		var rawQuals []struct {
			Assign json.RawMessage `json:"assign"`
			List   json.RawMessage `json:"list"`
			Ifs    json.RawMessage `json:"ifs"`
		}
		if err := unmarshalIfPresent(r.Quals, &rawQuals); err != nil {
			return nil, err
		}
		quals := make([]ListCompFor, len(rawQuals))
		for i, q := range rawQuals {
			assign, err := decodeNode(q.Assign)
			if err != nil {
				return nil, err
			}
			list, err := decodeNode(q.List)
			if err != nil {
				return nil, err
			}
			ifs, err := decodeNodeList(q.Ifs)
			if err != nil {
				return nil, err
			}
			quals[i] = ListCompFor{Assign: assign, List: list, Ifs: ifs}
		}
		return &ListComp{base: b, Expr: expr, Quals: quals}, nil
	case "Compare":
		expr, err := decodeNode(r.Expr)
		if err != nil {
			return nil, err
		}
		var rawOps []struct {
			Op   string          `json:"op"`
			Expr json.RawMessage `json:"expr"`
		}
		if err := unmarshalIfPresent(r.Ops, &rawOps); err != nil {
			return nil, err
		}
		ops := make([]CompareOp, len(rawOps))
		for i, o := range rawOps {
			e, err := decodeNode(o.Expr)
			if err != nil {
				return nil, err
			}
			ops[i] = CompareOp{Op: o.Op, Expr: e}
		}
		return &Compare{base: b, Expr: expr, Ops: ops}, nil
	case "Not":
		expr, err := decodeNode(r.Expr)
		if err != nil {
			return nil, err
		}
		return &Not{base: b, Expr: expr}, nil
	case "And", "Or":
		nodes, err := decodeNodeList(r.Nodes)
		if err != nil {
			return nil, err
		}
		kind := BoolAnd
		if r.Kind == "Or" {
			kind = BoolOr
		}
		return &BoolOp{base: b, Kind: kind, Nodes: nodes}, nil
	case "Add", "Sub", "Mul", "Div", "FloorDiv", "Mod", "Power",
		"Bitand", "Bitor", "Bitxor", "LeftShift", "RightShift":
		left, err := decodeNode(r.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeNode(r.Right)
		if err != nil {
			return nil, err
		}
		kind, err := binOpKindFromString(r.Kind)
		if err != nil {
			return nil, err
		}
		return &BinOp{base: b, Kind: kind, Left: left, Right: right}, nil
	case "UnaryAdd", "UnarySub", "Invert":
		expr, err := decodeNode(r.Expr)
		if err != nil {
			return nil, err
		}
		kind := OpUnaryAdd
		switch r.Kind {
		case "UnarySub":
			kind = OpUnarySub
		case "Invert":
			kind = OpInvert
		}
		return &UnaryOp{base: b, Kind: kind, Expr: expr}, nil
	default:
		return nil, fmt.Errorf("pyast: unknown node kind %q at line %d", r.Kind, r.Lineno)
	}
}

func decodeNodeList(data json.RawMessage) ([]Node, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("pyast: %w", err)
	}
	nodes := make([]Node, len(items))
	for i, item := range items {
		n, err := decodeNode(item)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return nodes, nil
}

func unmarshalIfPresent(data json.RawMessage, v interface{}) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("pyast: %w", err)
	}
	return nil
}

func constKindFromString(s string) (ConstKind, error) {
	switch s {
	case "", "None":
		return ConstNone, nil
	case "True":
		return ConstTrue, nil
	case "False":
		return ConstFalse, nil
	case "Int":
		return ConstInt, nil
	case "Float":
		return ConstFloat, nil
	case "String":
		return ConstString, nil
	case "Long":
		return ConstLong, nil
	default:
		return 0, fmt.Errorf("pyast: unknown const kind %q", s)
	}
}

func binOpKindFromString(s string) (BinOpKind, error) {
	switch s {
	case "Add":
		return OpAdd, nil
	case "Sub":
		return OpSub, nil
	case "Mul":
		return OpMul, nil
	case "Div":
		return OpDiv, nil
	case "FloorDiv":
		return OpFloorDiv, nil
	case "Mod":
		return OpMod, nil
	case "Power":
		return OpPower, nil
	case "Bitand":
		return OpBitand, nil
	case "Bitor":
		return OpBitor, nil
	case "Bitxor":
		return OpBitxor, nil
	case "LeftShift":
		return OpLeftShift, nil
	case "RightShift":
		return OpRightShift, nil
	default:
		return 0, fmt.Errorf("pyast: unknown binop kind %q", s)
	}
}
