// Package query compiles article filters, sort requests and trending
// timeframes into parameterized PostgreSQL statements.
//
// User-supplied values only ever reach the database as bound parameters.
// Column names and expressions come from constants in this package.
package query

import (
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// Args is an ordered parameter vector. Bind appends a value and returns its
// ordinal placeholder.
type Args struct {
	values []interface{}
}

// Bind appends v and returns the placeholder that refers to it ($1, $2, ...)
func (a *Args) Bind(v interface{}) string {
	a.values = append(a.values, v)
	return "$" + strconv.Itoa(len(a.values))
}

// Values returns a copy of the bound values
func (a *Args) Values() []interface{} {
	out := make([]interface{}, len(a.values))
	copy(out, a.values)
	return out
}

// Predicate is a single WHERE condition that binds its own parameters
type Predicate interface {
	SQL(args *Args) string
}

// Eq matches column = value
type Eq struct {
	Column string
	Value  interface{}
}

func (p Eq) SQL(args *Args) string {
	return p.Column + " = " + args.Bind(p.Value)
}

// Gt matches column > value
type Gt struct {
	Column string
	Value  interface{}
}

func (p Gt) SQL(args *Args) string {
	return p.Column + " > " + args.Bind(p.Value)
}

// AtLeast matches column >= value
type AtLeast struct {
	Column string
	Value  interface{}
}

func (p AtLeast) SQL(args *Args) string {
	return p.Column + " >= " + args.Bind(p.Value)
}

// ContainsAny matches a JSONB array column holding at least one of Values
type ContainsAny struct {
	Column string
	Values []string
}

func (p ContainsAny) SQL(args *Args) string {
	return p.Column + " ?| " + args.Bind(pq.Array(p.Values)) + "::text[]"
}

// TextMatch is a natural-language full-text match over the article title and body
type TextMatch struct {
	Query string
}

func (p TextMatch) SQL(args *Args) string {
	return searchDocument + " @@ plainto_tsquery('simple', " + args.Bind(p.Query) + ")"
}

// TextRank orders by full-text relevance for the given query
func TextRank(query string, args *Args) string {
	return "ts_rank(" + searchDocument + ", plainto_tsquery('simple', " + args.Bind(query) + "))"
}

const searchDocument = "to_tsvector('simple', coalesce(a.title, '') || ' ' || coalesce(a.content, ''))"

// Predicates is a conjunction of conditions
type Predicates []Predicate

// Where renders the conjunction as a WHERE clause, or "" when empty
func (ps Predicates) Where(args *Args) string {
	if len(ps) == 0 {
		return ""
	}
	clauses := make([]string, len(ps))
	for i, p := range ps {
		clauses[i] = p.SQL(args)
	}
	return "WHERE " + strings.Join(clauses, " AND ")
}
