package yamlsrc

import (
	goyaml "gopkg.in/yaml.v3"

	"github.com/JoshDreamland/yamlet/ast"
	"github.com/JoshDreamland/yamlet/errors"
	"github.com/JoshDreamland/yamlet/internal/parser"
	"github.com/JoshDreamland/yamlet/token"
)

// Decode runs the preprocessor and parses src as a single YAML document,
// returning the expression-AST form of its top-level node (spec.md
// §6.1). The returned Expr is almost always an *ast.MapLit (a document
// whose root is a mapping becomes the root tuple); a document whose root
// is a scalar or sequence decodes to the matching node type instead, as
// yaml.v3 happily permits either at the top level.
func Decode(filename string, src []byte) (ast.Expr, errors.List) {
	var errs errors.List

	var doc goyaml.Node
	if err := goyaml.Unmarshal(Preprocess(src), &doc); err != nil {
		errs.Add(errors.Newf(errors.YamlError, token.Position{Filename: filename}, "%v", err))
		return &ast.BadExpr{From: token.Position{Filename: filename}}, errs
	}
	if len(doc.Content) == 0 {
		return &ast.MapLit{Elts: nil}, errs
	}
	root := doc.Content[0]
	return decodeNode(filename, root, &errs), errs
}

func pos(filename string, n *goyaml.Node) token.Position {
	return token.Position{Filename: filename, Line: n.Line, Column: n.Column}
}

func decodeNode(filename string, n *goyaml.Node, errs *errors.List) ast.Expr {
	if n.Kind == goyaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	switch {
	case n.Tag == "!expr":
		return parseScalarExpr(filename, n, errs)
	case n.Tag == "!fmt":
		return parseScalarFmt(filename, n, errs)
	case n.Tag == "!lambda":
		return parseScalarLambda(filename, n, errs)
	case n.Tag == "!import":
		return &ast.ImportExpr{PathPos: pos(filename, n), Path: n.Value}
	case n.Tag == "!composite":
		return decodeComposite(filename, n, errs)
	}

	switch n.Kind {
	case goyaml.MappingNode:
		return decodeMapping(filename, n, errs)
	case goyaml.SequenceNode:
		return decodeSequence(filename, n, errs)
	case goyaml.ScalarNode:
		return decodeScalar(filename, n, errs)
	default:
		errs.Add(errors.Newf(errors.YamlError, pos(filename, n), "unsupported YAML node kind %d", n.Kind))
		return &ast.BadExpr{From: pos(filename, n)}
	}
}

func parseScalarExpr(filename string, n *goyaml.Node, errs *errors.List) ast.Expr {
	p := pos(filename, n)
	e, perrs := parser.ParseExpr(filename, p, []byte(n.Value))
	errs.Extend(perrs)
	return e
}

func parseScalarFmt(filename string, n *goyaml.Node, errs *errors.List) ast.Expr {
	p := pos(filename, n)
	e, perrs := parser.ParseFormatString(filename, p, n.Value)
	errs.Extend(perrs)
	return e
}

func parseScalarLambda(filename string, n *goyaml.Node, errs *errors.List) ast.Expr {
	p := pos(filename, n)
	e, perrs := parser.ParseLambdaSource(filename, p, []byte(n.Value))
	errs.Extend(perrs)
	if e == nil {
		return &ast.BadExpr{From: p}
	}
	return e
}

// decodeScalar turns an untagged YAML scalar into a literal expression.
// Plain-string scalars are not format-interpolated: only !fmt nodes and
// quoted string literals inside expressions (quoted mapping-literal keys
// included) undergo interpolation (spec.md §4.1, §4.6).
func decodeScalar(filename string, n *goyaml.Node, errs *errors.List) ast.Expr {
	p := pos(filename, n)
	switch n.Tag {
	case "!!null":
		return &ast.Ident{NamePos: p, Name: "null"}
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			if b {
				return &ast.Ident{NamePos: p, Name: "true"}
			}
			return &ast.Ident{NamePos: p, Name: "false"}
		}
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return &ast.IntLit{ValuePos: p, Value: i}
		}
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil {
			return &ast.FloatLit{ValuePos: p, Value: f}
		}
	}
	return &ast.StringLit{ValuePos: p, Raw: n.Value, Parts: []ast.FormatPart{{Literal: n.Value}}}
}

func decodeMapping(filename string, n *goyaml.Node, errs *errors.List) ast.Expr {
	elts := make([]ast.MapEntry, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode := n.Content[i]
		valNode := n.Content[i+1]
		entry := ast.MapEntry{
			KeyPos: pos(filename, keyNode),
			Key:    keyNode.Value,
			Value:  decodeNode(filename, valNode, errs),
		}
		elts = append(elts, entry)
	}
	return &ast.MapLit{Lbrace: pos(filename, n), Elts: elts}
}

func decodeSequence(filename string, n *goyaml.Node, errs *errors.List) ast.Expr {
	elts := make([]ast.Expr, 0, len(n.Content))
	for _, c := range n.Content {
		elts = append(elts, decodeNode(filename, c, errs))
	}
	return &ast.ListLit{Lbrack: pos(filename, n), Elts: elts}
}

// decodeComposite decodes a !composite sequence (spec.md §4.3, §6.1).
// Plain items become single-branch unconditional elements; a run of
// !if, then zero or more !elif, then an optional !else forms a single
// CompositeElement whose branches are tried in order.
func decodeComposite(filename string, n *goyaml.Node, errs *errors.List) ast.Expr {
	if n.Kind != goyaml.SequenceNode {
		errs.Add(errors.Newf(errors.YamlError, pos(filename, n), "!composite requires a sequence"))
		return &ast.BadExpr{From: pos(filename, n)}
	}
	items := n.Content
	var elements []ast.CompositeElement
	i := 0
	for i < len(items) {
		item := items[i]
		if item.Tag == "!if" {
			var branches []ast.CompositeBranch
			branches = append(branches, guardedBranch(filename, item, errs))
			i++
			for i < len(items) && items[i].Tag == "!elif" {
				branches = append(branches, guardedBranch(filename, items[i], errs))
				i++
			}
			if i < len(items) && items[i].Tag == "!else" {
				branches = append(branches, ast.CompositeBranch{Guard: nil, Body: decodeMapping(filename, items[i], errs)})
				i++
			}
			elements = append(elements, ast.CompositeElement{Branches: branches})
			continue
		}
		elements = append(elements, ast.CompositeElement{Branches: []ast.CompositeBranch{{
			Guard: nil,
			Body:  decodeNode(filename, item, errs),
		}}})
		i++
	}
	return &ast.CompositeExpr{StartPos: pos(filename, n), Elements: elements}
}

// guardedBranch decodes a !if/!elif item: a mapping with exactly one
// entry whose key is the guard expression's source text and whose value
// is the branch body.
func guardedBranch(filename string, n *goyaml.Node, errs *errors.List) ast.CompositeBranch {
	if n.Kind != goyaml.MappingNode || len(n.Content) != 2 {
		errs.Add(errors.Newf(errors.YamlError, pos(filename, n), "%s requires a single `guard: body` entry", n.Tag))
		return ast.CompositeBranch{Guard: &ast.BadExpr{From: pos(filename, n)}, Body: &ast.BadExpr{From: pos(filename, n)}}
	}
	guardNode, bodyNode := n.Content[0], n.Content[1]
	guardPos := pos(filename, guardNode)
	guard, perrs := parser.ParseExpr(filename, guardPos, []byte(guardNode.Value))
	errs.Extend(perrs)
	return ast.CompositeBranch{Guard: guard, Body: decodeNode(filename, bodyNode, errs)}
}
