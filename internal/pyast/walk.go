package pyast

// Walk recursively visits node and its children, depth-first. visit is
// called for every node including the root; if it returns false, Walk does
// not descend into that node's children (but continues with siblings at
// the caller's level). Used by internal/genxform to scan a function body
// for __pyjamas__.JS(...) literals without a full second AST pass.
func Walk(node Node, visit func(Node) bool) {
	if node == nil || !visit(node) {
		return
	}
	switch n := node.(type) {
	case *Module:
		walkAll(n.Body, visit)
	case *Stmt:
		walkAll(n.Nodes, visit)
	case *Function:
		walkAll(n.Defaults, visit)
		walkAll(n.Decorators, visit)
		Walk(n.Code, visit)
	case *Class:
		walkAll(n.Bases, visit)
		Walk(n.Code, visit)
	case *Return:
		Walk(n.Value, visit)
	case *Yield:
		Walk(n.Value, visit)
	case *If:
		for _, pair := range n.Tests {
			Walk(pair[0], visit)
			Walk(pair[1], visit)
		}
		Walk(n.Else, visit)
	case *For:
		Walk(n.Assign, visit)
		Walk(n.List, visit)
		Walk(n.Body, visit)
		Walk(n.Else, visit)
	case *While:
		Walk(n.Test, visit)
		Walk(n.Body, visit)
		Walk(n.Else, visit)
	case *TryExcept:
		Walk(n.Body, visit)
		for _, h := range n.Handlers {
			Walk(h.ExprList, visit)
			Walk(h.Name, visit)
			Walk(h.Body, visit)
		}
		Walk(n.Else, visit)
	case *TryFinally:
		Walk(n.Body, visit)
		Walk(n.Final, visit)
	case *Raise:
		Walk(n.ExprType, visit)
		Walk(n.ExprValue, visit)
	case *Assert:
		Walk(n.Test, visit)
		Walk(n.Fail, visit)
	case *Print:
		walkAll(n.Nodes, visit)
		Walk(n.Dest, visit)
	case *Printnl:
		walkAll(n.Nodes, visit)
		Walk(n.Dest, visit)
	case *Discard:
		Walk(n.Value, visit)
	case *Assign:
		walkAll(n.Nodes, visit)
		Walk(n.Expr, visit)
	case *AugAssign:
		Walk(n.Target, visit)
		Walk(n.Expr, visit)
	case *AssAttr:
		Walk(n.Expr, visit)
	case *AssTuple:
		walkAll(n.Nodes, visit)
	case *AssList:
		walkAll(n.Nodes, visit)
	case *Getattr:
		Walk(n.Expr, visit)
	case *Subscript:
		Walk(n.Expr, visit)
		walkAll(n.Subs, visit)
	case *Slice:
		Walk(n.Expr, visit)
		Walk(n.Lower, visit)
		Walk(n.Upper, visit)
	case *Tuple:
		walkAll(n.Nodes, visit)
	case *List:
		walkAll(n.Nodes, visit)
	case *Dict:
		for _, item := range n.Items {
			Walk(item.Key, visit)
			Walk(item.Value, visit)
		}
	case *Keyword:
		Walk(n.Expr, visit)
	case *CallFunc:
		Walk(n.Node, visit)
		walkAll(n.Args, visit)
		for _, kw := range n.Keywords {
			Walk(kw.Expr, visit)
		}
		Walk(n.Star, visit)
		Walk(n.DStar, visit)
	case *Lambda:
		walkAll(n.Defaults, visit)
		Walk(n.Code, visit)
	case *ListComp:
		Walk(n.Expr, visit)
		for _, q := range n.Quals {
			Walk(q.Assign, visit)
			Walk(q.List, visit)
			for _, i := range q.Ifs {
				Walk(i, visit)
			}
		}
	case *Compare:
		Walk(n.Expr, visit)
		for _, op := range n.Ops {
			Walk(op.Expr, visit)
		}
	case *Not:
		Walk(n.Expr, visit)
	case *BoolOp:
		walkAll(n.Nodes, visit)
	case *BinOp:
		Walk(n.Left, visit)
		Walk(n.Right, visit)
	case *UnaryOp:
		Walk(n.Expr, visit)
	case *ListCompIf:
		Walk(n.Test, visit)
	// Leaf nodes with nothing further to walk.
	case *Name, *Const, *Break, *Continue, *Pass, *Global, *Import, *From, *AssName:
	}
}

func walkAll(nodes []Node, visit func(Node) bool) {
	for _, n := range nodes {
		Walk(n, visit)
	}
}
