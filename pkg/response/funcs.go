package response

import (
	"fmt"
	"html/template"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/meliosu/onyx-core-builders/internal/models"
	"github.com/meliosu/onyx-core-builders/pkg/optional"
)

// Funcs are the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"date":     formatDate,
		"money":    formatMoney,
		"text":     text,
		"field":    field,
		"label":    label,
		"value":    value,
		"humanize": humanize,
		"selected": selected,
		"dict":     dict,
		"add":      func(a, b int) int { return a + b },
		"join":     strings.Join,
		"pageURL":  pageURL,
		"sortURL":  sortURL,

		"siteTypes":      models.SiteTypes,
		"riskLevels":     models.RiskLevels,
		"statuses":       models.Statuses,
		"genders":        models.Genders,
		"professions":    models.Professions,
		"qualifications": models.Qualifications,
		"positions":      models.Positions,
		"fuelTypes":      models.FuelTypes,
	}
}

func formatDate(v interface{}) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format(optional.DateLayout)
	case *time.Time:
		if t == nil {
			return ""
		}
		return formatDate(*t)
	case optional.Value[time.Time]:
		return t.String()
	}
	return text(v)
}

func formatMoney(v interface{}) string {
	switch d := v.(type) {
	case decimal.Decimal:
		return d.StringFixed(2)
	case decimal.NullDecimal:
		if !d.Valid {
			return ""
		}
		return d.Decimal.StringFixed(2)
	case *decimal.Decimal:
		if d == nil {
			return ""
		}
		return d.StringFixed(2)
	case optional.Value[decimal.Decimal]:
		if value, ok := d.Get(); ok {
			return value.StringFixed(2)
		}
		return ""
	}
	return text(v)
}

// text prints v, following pointers; nil prints as an empty string.
func text(v interface{}) string {
	if v == nil {
		return ""
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.String {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = rv.Index(i).String()
		}
		return strings.Join(parts, ", ")
	}
	value := rv.Interface()
	if t, ok := value.(time.Time); ok {
		return formatDate(t)
	}
	if s, ok := value.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(value)
}

// field reads a named field of a struct or struct pointer as text. A nil
// item yields an empty string so create forms can share edit templates.
func field(item interface{}, name string) string {
	rv := reflect.ValueOf(item)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return ""
	}
	f := rv.FieldByName(name)
	if !f.IsValid() {
		return ""
	}
	return text(f.Interface())
}

// value formats a satellite column for the details view.
func value(v interface{}) string {
	switch x := v.(type) {
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case []string:
		return strings.Join(x, ", ")
	case pq.StringArray:
		return strings.Join(x, ", ")
	}
	return text(v)
}

// humanize turns a column name such as energy_output into "Energy output".
func humanize(key string) string {
	s := strings.ReplaceAll(key, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func label(v interface{}) string {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	if rv.IsValid() {
		v = rv.Interface()
	}
	if l, ok := v.(interface{ Label() string }); ok {
		return l.Label()
	}
	return text(v)
}

func selected(current, option interface{}) bool {
	return text(current) == text(option)
}

func dict(pairs ...interface{}) (map[string]interface{}, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict expects key/value pairs")
	}
	out := make(map[string]interface{}, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
		}
		out[key] = pairs[i+1]
	}
	return out, nil
}

// pageURL keeps the current query and moves to page.
func pageURL(base string, query url.Values, page int) string {
	q := cloneQuery(query)
	q.Set("page_number", strconv.Itoa(page))
	return base + "?" + q.Encode()
}

// sortURL sorts by key, flipping the direction when key is already active.
func sortURL(base string, query url.Values, key string) string {
	q := cloneQuery(query)
	direction := "asc"
	if q.Get("sort_by") == key && q.Get("sort_direction") != "desc" {
		direction = "desc"
	}
	q.Set("sort_by", key)
	q.Set("sort_direction", direction)
	q.Del("page_number")
	return base + "?" + q.Encode()
}

func cloneQuery(query url.Values) url.Values {
	q := make(url.Values, len(query))
	for k, v := range query {
		q[k] = append([]string(nil), v...)
	}
	return q
}
