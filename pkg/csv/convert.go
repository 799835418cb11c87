// Package csv provides conversion from AST nodes to records.
package csv

import (
	"fmt"

	"github.com/shapestone/shape-core/pkg/ast"
)

// NodeToRecords converts an AST produced by Parse or ToAST back to rows.
//
// The node must be an *ast.ArrayDataNode of *ast.ArrayDataNode rows whose
// elements are *ast.LiteralNode holding strings.
//
// Example:
//
//	node, _ := csv.Parse("name,age\nAlice,30\n")
//	rows, _ := csv.NodeToRecords(node)
//	// rows is [][]string{{"name","age"}, {"Alice","30"}}
func NodeToRecords(node ast.SchemaNode) ([][]string, error) {
	file, ok := node.(*ast.ArrayDataNode)
	if !ok {
		return nil, fmt.Errorf("expected *ast.ArrayDataNode, got %T", node)
	}

	elements := file.Elements()
	records := make([][]string, 0, len(elements))
	for _, elem := range elements {
		row, ok := elem.(*ast.ArrayDataNode)
		if !ok {
			return nil, fmt.Errorf("expected record to be *ast.ArrayDataNode, got %T", elem)
		}

		fields := make([]string, 0, row.Len())
		for _, fieldNode := range row.Elements() {
			literal, ok := fieldNode.(*ast.LiteralNode)
			if !ok {
				return nil, fmt.Errorf("expected field to be *ast.LiteralNode, got %T", fieldNode)
			}
			value, ok := literal.Value().(string)
			if !ok {
				return nil, fmt.Errorf("expected field value to be string, got %T", literal.Value())
			}
			fields = append(fields, value)
		}
		records = append(records, fields)
	}
	return records, nil
}
