/**
 * @description
 * This file derives a plain-language description of the finance profile schema
 * from the domain struct itself, used to build the extraction prompt. Deriving
 * the field list by reflection keeps the prompt and the validator from
 * drifting apart when fields change.
 */

package schema

import (
	"reflect"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wo-aiml-user/finance-agent/internal/domain"
)

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})
)

// FieldDescription pairs a schema field name with its declared type, phrased
// for the analysis prompt.
type FieldDescription struct {
	Name string
	Type string
}

// FieldDescriptions returns every recognized profile field with its type, in
// declaration order.
func FieldDescriptions() []FieldDescription {
	t := reflect.TypeOf(domain.FinanceProfile{})
	out := make([]FieldDescription, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := jsonFieldName(f)
		if name == "" {
			continue
		}
		out = append(out, FieldDescription{Name: name, Type: describeType(f.Type)})
	}
	return out
}

func describeType(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch {
	case t == decimalType:
		return "number (currency amount)"
	case t == timeType:
		return "string (ISO 8601 timestamp)"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int64:
		return "integer"
	case reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.String:
		return "string"
	case reflect.Slice:
		return "list of strings"
	default:
		return t.Kind().String()
	}
}
