package jsonsql

import "context"

// Method is the JSONSQL operation kind.
type Method string

const (
	MethodSelect Method = "select"
	MethodInsert Method = "insert"
	MethodUpdate Method = "update"
	MethodDelete Method = "delete"
)

// Where is a discriminated union over the where-expression shapes the core
// emits: equality, LIKE, greater-than, is-null, and AND-conjunctions of
// those. Exactly one field is populated.
type Where struct {
	Eq     *BinaryPredicate
	Like   *BinaryPredicate
	Gt     *BinaryPredicate
	IsNull *string
	And    []Where
}

// BinaryPredicate pairs a column name with a literal operand.
type BinaryPredicate struct {
	Column string
	Value  any
}

func Eq(column string, value any) Where   { return Where{Eq: &BinaryPredicate{column, value}} }
func Like(column string, value any) Where { return Where{Like: &BinaryPredicate{column, value}} }
func Gt(column string, value any) Where   { return Where{Gt: &BinaryPredicate{column, value}} }
func IsNull(column string) Where          { return Where{IsNull: &column} }
func And(terms ...Where) Where            { return Where{And: terms} }

// Params is the params object of a JSONSQL request document.
type Params struct {
	Data    []string `json:"data,omitempty"`
	From    string   `json:"from,omitempty"`
	Where   *Where   `json:"where,omitempty"`
	Limit   *int     `json:"limit,omitempty"`
	Offset  *int     `json:"offset,omitempty"`
	OrderBy *string  `json:"order_by,omitempty"`
}

// Request is a JSONSQL request document.
type Request struct {
	Method Method
	Params Params
}

// SelectStar builds the introspector's sampling request: SELECT * FROM
// table LIMIT limit.
func SelectStar(table string, limit int) Request {
	l := limit
	return Request{Method: MethodSelect, Params: Params{Data: []string{"*"}, From: table, Limit: &l}}
}

// Aggregate builds a single-row aggregate SELECT, e.g. COUNT(*) or
// MIN(col),MAX(col).
func Aggregate(table string, exprs ...string) Request {
	return Request{Method: MethodSelect, Params: Params{Data: exprs, From: table}}
}

// Result is what Execute returns: a positional list of rows. Aggregate
// queries return a single row whose positions correspond to the requested
// expressions, in order.
type Result []Row

// Client is the abstraction the core calls to execute a JSONSQL request and
// receive a result. Transport, authentication, retry policy, and timeouts
// are entirely the collaborator's responsibility; the core observes no side
// effect beyond the returned Result or error.
type Client interface {
	Execute(ctx context.Context, req Request) (Result, error)
}
