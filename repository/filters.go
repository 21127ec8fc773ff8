package repository

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrInvalidFilter is returned for filter keys or values outside the allow-list.
var ErrInvalidFilter = errors.New("invalid filter")

// Op is a comparison operator a filter field may allow.
type Op string

const (
	OpExact       Op = "exact"
	OpIExact      Op = "iexact"
	OpIContains   Op = "icontains"
	OpIStartsWith Op = "istartswith"
	OpGt          Op = "gt"
	OpLt          Op = "lt"
	OpGte         Op = "gte"
	OpLte         Op = "lte"
	OpDate        Op = "date"
	OpYear        Op = "year"
	OpMonth       Op = "month"
	OpDay         Op = "day"
)

// ValueKind is the type a filter argument is coerced to.
type ValueKind int

const (
	TextValue ValueKind = iota
	DecimalValue
	IntValue
	TimeValue
	DateValue
	BoolValue
)

// Filter holds raw filter arguments keyed by API name, e.g. "name_Icontains".
type Filter map[string]interface{}

// Predicate is one compiled SQL condition.
type Predicate struct {
	Query string
	Args  []interface{}
}

// Input describes one accepted filter argument.
type Input struct {
	Name string
	Kind ValueKind
}

type fieldSpec struct {
	name   string
	column string
	kind   ValueKind
	ops    []Op
}

// methodFn builds a predicate from a coerced value; ok=false means no-op.
type methodFn func(v interface{}) (p Predicate, ok bool)

type methodSpec struct {
	name  string
	kind  ValueKind
	build methodFn
}

// FilterSet is the allow-list of filterable fields, operators, custom
// filters and sortable columns of one entity.
type FilterSet struct {
	fields       []fieldSpec
	methods      []methodSpec
	orderable    map[string]string
	defaultOrder []string
}

// Inputs lists every accepted filter argument in a stable order.
func (fs *FilterSet) Inputs() []Input {
	var inputs []Input
	for _, f := range fs.fields {
		for _, op := range f.ops {
			inputs = append(inputs, Input{Name: inputName(f.name, op), Kind: opKind(f.kind, op)})
		}
	}
	for _, m := range fs.methods {
		inputs = append(inputs, Input{Name: m.name, Kind: m.kind})
	}
	return inputs
}

// OrderableFields lists the names accepted by OrderClauses, sorted.
func (fs *FilterSet) OrderableFields() []string {
	names := make([]string, 0, len(fs.orderable))
	for name := range fs.orderable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compile turns f into predicates. Nil values are skipped, unknown keys and
// uncoercible values fail with ErrInvalidFilter.
func (fs *FilterSet) Compile(f Filter) ([]Predicate, error) {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var preds []Predicate
	for _, key := range keys {
		raw := f[key]
		if raw == nil {
			continue
		}
		if m, ok := fs.method(key); ok {
			v, err := coerce(m.kind, raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFilter, key, err)
			}
			if p, ok := m.build(v); ok {
				preds = append(preds, p)
			}
			continue
		}

		field, op, ok := fs.lookup(key)
		if !ok {
			return nil, fmt.Errorf("%w: unknown filter %q", ErrInvalidFilter, key)
		}
		v, err := coerce(opKind(field.kind, op), raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFilter, key, err)
		}
		preds = append(preds, fieldPredicate(field.column, op, v))
	}
	return preds, nil
}

// OrderClauses maps API sort keys ("name", "-orderDate") to ORDER BY terms.
func (fs *FilterSet) OrderClauses(orderBy []string) ([]string, error) {
	if len(orderBy) == 0 {
		return fs.defaultOrder, nil
	}
	clauses := make([]string, 0, len(orderBy))
	for _, key := range orderBy {
		dir := "ASC"
		name := strings.TrimSpace(key)
		if strings.HasPrefix(name, "-") {
			dir = "DESC"
			name = name[1:]
		}
		column, ok := fs.orderable[name]
		if !ok {
			return nil, fmt.Errorf("%w: cannot order by %q", ErrInvalidFilter, key)
		}
		clauses = append(clauses, column+" "+dir)
	}
	return clauses, nil
}

// Scope compiles filter and ordering into a single gorm scope.
func (fs *FilterSet) Scope(f Filter, orderBy []string) (func(*gorm.DB) *gorm.DB, error) {
	preds, err := fs.Compile(f)
	if err != nil {
		return nil, err
	}
	order, err := fs.OrderClauses(orderBy)
	if err != nil {
		return nil, err
	}
	return func(db *gorm.DB) *gorm.DB {
		for _, p := range preds {
			db = db.Where(p.Query, p.Args...)
		}
		for _, o := range order {
			db = db.Order(o)
		}
		return db
	}, nil
}

func (fs *FilterSet) method(key string) (methodSpec, bool) {
	for _, m := range fs.methods {
		if m.name == key {
			return m, true
		}
	}
	return methodSpec{}, false
}

func (fs *FilterSet) lookup(key string) (fieldSpec, Op, bool) {
	name, suffix, hasOp := strings.Cut(key, "_")
	op := OpExact
	if hasOp {
		op = Op(strings.ToLower(suffix))
		if op == OpExact {
			// exact is spelled without a suffix
			return fieldSpec{}, "", false
		}
	}
	for _, f := range fs.fields {
		if f.name != name {
			continue
		}
		for _, allowed := range f.ops {
			if allowed == op {
				return f, op, true
			}
		}
	}
	return fieldSpec{}, "", false
}

func inputName(field string, op Op) string {
	if op == OpExact {
		return field
	}
	s := string(op)
	return field + "_" + strings.ToUpper(s[:1]) + s[1:]
}

func opKind(kind ValueKind, op Op) ValueKind {
	switch op {
	case OpDate:
		return DateValue
	case OpYear, OpMonth, OpDay:
		return IntValue
	}
	return kind
}

func fieldPredicate(column string, op Op, v interface{}) Predicate {
	switch op {
	case OpIExact:
		return Predicate{Query: fmt.Sprintf("LOWER(%s) = LOWER(?)", column), Args: []interface{}{v}}
	case OpIContains:
		return Predicate{Query: column + " ILIKE ?", Args: []interface{}{containsPattern(v.(string))}}
	case OpIStartsWith:
		return Predicate{Query: column + " ILIKE ?", Args: []interface{}{escapeLike(v.(string)) + "%"}}
	case OpGt:
		return Predicate{Query: column + " > ?", Args: []interface{}{v}}
	case OpLt:
		return Predicate{Query: column + " < ?", Args: []interface{}{v}}
	case OpGte:
		return Predicate{Query: column + " >= ?", Args: []interface{}{v}}
	case OpLte:
		return Predicate{Query: column + " <= ?", Args: []interface{}{v}}
	case OpDate:
		return Predicate{Query: fmt.Sprintf("DATE(%s) = ?", column), Args: []interface{}{v}}
	case OpYear, OpMonth, OpDay:
		return Predicate{Query: fmt.Sprintf("EXTRACT(%s FROM %s) = ?", strings.ToUpper(string(op)), column), Args: []interface{}{v}}
	default:
		return Predicate{Query: column + " = ?", Args: []interface{}{v}}
	}
}

// escapeLike escapes LIKE metacharacters; backslash is the Postgres default escape.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func containsPattern(s string) string {
	return "%" + escapeLike(s) + "%"
}

// anyContains ORs an ILIKE over every column; blank terms are a no-op.
func anyContains(columns ...string) methodFn {
	return func(v interface{}) (Predicate, bool) {
		term := strings.TrimSpace(v.(string))
		if term == "" {
			return Predicate{}, false
		}
		parts := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, c := range columns {
			parts[i] = c + " ILIKE ?"
			args[i] = containsPattern(term)
		}
		return Predicate{Query: "(" + strings.Join(parts, " OR ") + ")", Args: args}, true
	}
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func coerce(kind ValueKind, raw interface{}) (interface{}, error) {
	switch kind {
	case TextValue:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", raw)
		}
		return s, nil
	case DecimalValue:
		switch v := raw.(type) {
		case decimal.Decimal:
			return v, nil
		case string:
			return decimal.NewFromString(strings.TrimSpace(v))
		case float64:
			return decimal.NewFromFloat(v), nil
		case int:
			return decimal.NewFromInt(int64(v)), nil
		case int64:
			return decimal.NewFromInt(v), nil
		}
	case IntValue:
		switch v := raw.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			if v == float64(int(v)) {
				return int(v), nil
			}
		}
	case TimeValue:
		switch v := raw.(type) {
		case time.Time:
			return v, nil
		case string:
			return parseTime(v)
		}
	case DateValue:
		switch v := raw.(type) {
		case time.Time:
			return v.Format("2006-01-02"), nil
		case string:
			t, err := parseTime(v)
			if err != nil {
				return nil, err
			}
			return t.Format("2006-01-02"), nil
		}
	case BoolValue:
		if b, ok := raw.(bool); ok {
			return b, nil
		}
	}
	return nil, fmt.Errorf("unsupported value %v (%T)", raw, raw)
}
