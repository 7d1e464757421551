// Package wheresql translates the small WHERE-clause dialect a SyncConfig
// carries (equality, greater-than, LIKE, IS NULL, AND-chains of those) into
// the jsonsql.Where shapes the core emits on the wire. Rather than
// hand-rolling a parser for this mini-grammar, it reuses the TiDB SQL parser
// already in the dependency graph to recognize the fragment's structure.
package wheresql

import (
	"fmt"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/opcode"
	driver "github.com/pingcap/tidb/pkg/parser/test_driver"

	"jsonsqlmirror/internal/jsonsql"
)

// ErrUnsupportedShape is wrapped into the returned error whenever the
// fragment is syntactically valid SQL but not one of the recognized
// shapes (col = literal, col > literal, col LIKE pattern, col IS NULL,
// AND-chains of those).
var ErrUnsupportedShape = fmt.Errorf("wheresql: unsupported where clause shape")

// Parse translates a sync_config.where fragment (`status = 'active'`,
// `name LIKE '%x%' AND age = 3`, `deleted_at IS NULL`) into a jsonsql.Where
// tree. Anything outside the supported subset returns ErrUnsupportedShape.
func Parse(where string) (jsonsql.Where, error) {
	if where == "" {
		return jsonsql.Where{}, nil
	}

	p := parser.New()
	stmtNodes, _, err := p.Parse("SELECT 1 FROM t WHERE "+where, "", "")
	if err != nil || len(stmtNodes) != 1 {
		return jsonsql.Where{}, fmt.Errorf("%w: %q is not a recognizable condition", ErrUnsupportedShape, where)
	}

	sel, ok := stmtNodes[0].(*ast.SelectStmt)
	if !ok || sel.Where == nil {
		return jsonsql.Where{}, fmt.Errorf("%w: %q", ErrUnsupportedShape, where)
	}

	return walk(sel.Where)
}

func walk(expr ast.ExprNode) (jsonsql.Where, error) {
	switch e := expr.(type) {
	case *ast.BinaryOperationExpr:
		switch e.Op {
		case opcode.LogicAnd:
			left, err := walk(e.L)
			if err != nil {
				return jsonsql.Where{}, err
			}
			right, err := walk(e.R)
			if err != nil {
				return jsonsql.Where{}, err
			}
			return jsonsql.And(left, right), nil
		case opcode.EQ:
			col, val, err := columnLiteral(e.L, e.R)
			if err != nil {
				return jsonsql.Where{}, err
			}
			return jsonsql.Eq(col, val), nil
		case opcode.GT:
			if _, ok := e.L.(*ast.ColumnNameExpr); !ok {
				return jsonsql.Where{}, fmt.Errorf("%w: > expects the column on the left", ErrUnsupportedShape)
			}
			col, val, err := columnLiteral(e.L, e.R)
			if err != nil {
				return jsonsql.Where{}, err
			}
			return jsonsql.Gt(col, val), nil
		default:
			return jsonsql.Where{}, fmt.Errorf("%w: operator %v", ErrUnsupportedShape, e.Op)
		}
	case *ast.PatternLikeExpr:
		if e.Not {
			return jsonsql.Where{}, fmt.Errorf("%w: NOT LIKE", ErrUnsupportedShape)
		}
		if _, ok := e.Expr.(*ast.ColumnNameExpr); !ok {
			return jsonsql.Where{}, fmt.Errorf("%w: LIKE expects the column on the left", ErrUnsupportedShape)
		}
		col, val, err := columnLiteral(e.Expr, e.Pattern)
		if err != nil {
			return jsonsql.Where{}, err
		}
		return jsonsql.Like(col, val), nil
	case *ast.IsNullExpr:
		if e.Not {
			return jsonsql.Where{}, fmt.Errorf("%w: IS NOT NULL", ErrUnsupportedShape)
		}
		col, ok := e.Expr.(*ast.ColumnNameExpr)
		if !ok {
			return jsonsql.Where{}, fmt.Errorf("%w: IS NULL expects a column operand", ErrUnsupportedShape)
		}
		return jsonsql.IsNull(col.Name.Name.O), nil
	default:
		return jsonsql.Where{}, fmt.Errorf("%w: expression of type %T", ErrUnsupportedShape, expr)
	}
}

// columnLiteral recognizes the two orderings `col OP literal` and `literal
// OP col` and returns the column name and the literal's native Go value.
// Only `=` accepts both orderings; the `>` and LIKE cases of walk reject a
// literal on the left before calling it.
func columnLiteral(a, b ast.ExprNode) (column string, value any, err error) {
	if col, ok := a.(*ast.ColumnNameExpr); ok {
		if lit, ok := literalValue(b); ok {
			return col.Name.Name.O, lit, nil
		}
	}
	if col, ok := b.(*ast.ColumnNameExpr); ok {
		if lit, ok := literalValue(a); ok {
			return col.Name.Name.O, lit, nil
		}
	}
	return "", nil, fmt.Errorf("%w: expected column compared to a literal", ErrUnsupportedShape)
}

func literalValue(expr ast.ExprNode) (any, bool) {
	v, ok := expr.(*driver.ValueExpr)
	if !ok {
		return nil, false
	}
	return v.Datum.GetValue(), true
}
