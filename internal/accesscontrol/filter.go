package accesscontrol

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// DeniedSentinel is the value used by the impossible filter returned when no
// ALLOW rule matches. No record carries this id, so queries merging the
// sentinel return zero rows. Callers must not treat an absent ALLOW rule as
// "no restriction".
const DeniedSentinel = "__ACCESS_DENIED__"

// Filter is a record-visibility restriction derived from an ALLOW rule,
// merged into an organization-scoped query by the caller. The concrete
// variants form a closed set so condition handling stays exhaustive.
type Filter interface {
	Apply(tx *gorm.DB) *gorm.DB
	expr() clause.Expression
}

// All imposes no restriction beyond the caller's organization scope.
type All struct{}

func (All) Apply(tx *gorm.DB) *gorm.DB { return tx }
func (All) expr() clause.Expression    { return clause.Expr{SQL: "1 = 1"} }

// Equals restricts to rows where column = value.
type Equals struct {
	Column string
	Value  any
}

func (f Equals) Apply(tx *gorm.DB) *gorm.DB { return tx.Where(f.expr()) }
func (f Equals) expr() clause.Expression {
	return clause.Eq{Column: clause.Column{Name: f.Column}, Value: f.Value}
}

// NotEquals restricts to rows where column <> value.
type NotEquals struct {
	Column string
	Value  any
}

func (f NotEquals) Apply(tx *gorm.DB) *gorm.DB { return tx.Where(f.expr()) }
func (f NotEquals) expr() clause.Expression {
	return clause.Neq{Column: clause.Column{Name: f.Column}, Value: f.Value}
}

// In restricts to rows where column is one of the given values. An empty
// value list matches nothing.
type In struct {
	Column string
	Values []any
}

func (f In) Apply(tx *gorm.DB) *gorm.DB { return tx.Where(f.expr()) }
func (f In) expr() clause.Expression {
	return clause.IN{Column: clause.Column{Name: f.Column}, Values: f.Values}
}

// Contains restricts to rows where column contains the substring.
type Contains struct {
	Column string
	Value  string
}

func (f Contains) Apply(tx *gorm.DB) *gorm.DB { return tx.Where(f.expr()) }
func (f Contains) expr() clause.Expression {
	return clause.Like{Column: clause.Column{Name: f.Column}, Value: "%" + f.Value + "%"}
}

// AnyOf matches rows satisfying at least one of the inner filters.
type AnyOf struct {
	Filters []Filter
}

func (f AnyOf) Apply(tx *gorm.DB) *gorm.DB { return tx.Where(f.expr()) }
func (f AnyOf) expr() clause.Expression {
	exprs := make([]clause.Expression, 0, len(f.Filters))
	for _, inner := range f.Filters {
		exprs = append(exprs, inner.expr())
	}
	return clause.Or(exprs...)
}

// MatchNone returns the sentinel filter guaranteed to select zero records.
func MatchNone() Filter {
	return Equals{Column: "id", Value: DeniedSentinel}
}

// StringsIn builds an In filter from string values.
func StringsIn(column string, values []string) In {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return In{Column: column, Values: vals}
}

var namer = schema.NamingStrategy{}

type customParams struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// parseCustomCondition interprets a CUSTOM rule's condition params.
// Malformed params degrade to no restriction rather than a denial; this
// mirrors the historical behavior and is called out in DESIGN.md. Authoring
// paths reject malformed params up front via ValidateCustomParams, so the
// lenient branch only fires for rows written before that validation existed.
func parseCustomCondition(raw datatypes.JSON, ctx Context) Filter {
	if len(raw) == 0 {
		return All{}
	}
	var p customParams
	if err := json.Unmarshal(raw, &p); err != nil || p.Field == "" || p.Operator == "" || p.Value == nil {
		return All{}
	}

	column := namer.ColumnName("", p.Field)
	value := substitutePlaceholders(p.Value, ctx)

	switch p.Operator {
	case "eq":
		return Equals{Column: column, Value: value}
	case "neq":
		return NotEquals{Column: column, Value: value}
	case "in":
		values, ok := value.([]any)
		if !ok {
			values = []any{value}
		}
		return In{Column: column, Values: values}
	case "contains":
		return Contains{Column: column, Value: fmt.Sprint(value)}
	default:
		// Unrecognized operator falls back to direct equality.
		return Equals{Column: column, Value: value}
	}
}

func substitutePlaceholders(v any, ctx Context) any {
	switch v {
	case "$userId":
		return ctx.UserID
	case "$organizationId":
		return ctx.OrganizationID
	}
	return v
}

// ValidateCustomParams checks CUSTOM condition params at policy-authoring
// time so malformed configuration is rejected early instead of silently
// degrading to "unrestricted" during evaluation.
func ValidateCustomParams(raw []byte) error {
	if len(raw) == 0 {
		return fmt.Errorf("CUSTOM condition requires params {field, operator, value}")
	}
	var p customParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("condition params are not valid JSON: %w", err)
	}
	if p.Field == "" || p.Operator == "" || p.Value == nil {
		return fmt.Errorf("condition params require field, operator and value")
	}
	switch p.Operator {
	case "eq", "neq", "in", "contains":
	default:
		return fmt.Errorf("unknown operator %q (want eq, neq, in or contains)", p.Operator)
	}
	if p.Operator == "in" {
		if _, ok := p.Value.([]any); !ok {
			return fmt.Errorf(`operator "in" requires a list value`)
		}
	}
	return nil
}
