package sfc

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// importQuery captures the module specifier of static imports and
// re-exports. Both the typescript and javascript grammars name the field
// "source".
const importQuery = `
(import_statement source: (string) @source)
(export_statement source: (string) @source)
`

// Import is a module specifier found in a script.
type Import struct {
	Specifier string
	Point     sitter.Point
}

// ScriptInfo is what the engine extracts from one script.
type ScriptInfo struct {
	Errors  []SyntaxError
	Imports []Import
}

// AnalyzeScript parses src as lang and returns its syntax errors and
// imports. Positions are relative to src.
func AnalyzeScript(ctx context.Context, lang string, src []byte) (*ScriptInfo, error) {
	grammar, ok := ScriptGrammar(lang)
	if !ok {
		return nil, fmt.Errorf("sfc: unsupported script language %q", lang)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("sfc: parse script: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	imports, err := queryImports(root, grammar, src)
	if err != nil {
		return nil, err
	}
	return &ScriptInfo{
		Errors:  syntaxErrors(root, src),
		Imports: imports,
	}, nil
}

func queryImports(root *sitter.Node, grammar *sitter.Language, src []byte) ([]Import, error) {
	q, err := sitter.NewQuery([]byte(importQuery), grammar)
	if err != nil {
		return nil, fmt.Errorf("sfc: import query: %w", err)
	}
	defer q.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q, root)

	var out []Import
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, src)
		for _, capture := range match.Captures {
			spec := strings.Trim(capture.Node.Content(src), "\"'`")
			if spec == "" {
				continue
			}
			out = append(out, Import{Specifier: spec, Point: capture.Node.StartPoint()})
		}
	}
	return out, nil
}

// shift moves a position inside a block to the component file. Only the
// first line of the block is offset by the block's starting column.
func shift(p, start sitter.Point) sitter.Point {
	if p.Row == 0 {
		return sitter.Point{Row: start.Row, Column: start.Column + p.Column}
	}
	return sitter.Point{Row: start.Row + p.Row, Column: p.Column}
}
