/**
 * @description
 * This package implements the profile schema validator. It takes an arbitrary
 * mapping (typically parsed from an LLM's JSON output) and attempts to coerce it
 * into a strictly typed domain.FinanceProfile: numeric strings become numbers,
 * ISO 8601 strings become timestamps, currency amounts become decimals. Keys that
 * do not match a recognized field are ignored; they are the caller's business
 * (additional insights), not a validation error.
 *
 * The outcome is a tagged CoercionResult. On any type-coercion failure the
 * result carries the raw, uncoerced mapping plus the failure reason, and the
 * caller decides whether to degrade to storing the raw data. The validator
 * itself has no side effects and no fallback policy.
 *
 * @dependencies
 * - github.com/mitchellh/mapstructure: weakly typed decoding with custom hooks.
 * - github.com/shopspring/decimal: arbitrary-precision currency amounts.
 */

package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"

	"github.com/wo-aiml-user/finance-agent/internal/domain"
)

// CoercionResult is the tagged outcome of a schema validation attempt.
// Exactly one of the two shapes is populated: a coerced profile, or the raw
// input mapping with the reason coercion failed.
type CoercionResult struct {
	Profile *domain.FinanceProfile
	Raw     map[string]any
	Reason  string
}

// Coerced reports whether validation produced a typed profile.
func (r CoercionResult) Coerced() bool {
	return r.Profile != nil
}

// Coerce validates an arbitrary mapping against the finance profile schema.
// Recognized fields are converted to their declared types; unrecognized keys
// are silently ignored. A conversion failure on any field fails the whole
// mapping and returns the raw input instead.
func Coerce(raw map[string]any) CoercionResult {
	var profile domain.FinanceProfile

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &profile,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			decimalDecodeHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return CoercionResult{Raw: raw, Reason: fmt.Sprintf("decoder init failed: %v", err)}
	}

	if err := decoder.Decode(raw); err != nil {
		return CoercionResult{Raw: raw, Reason: err.Error()}
	}

	return CoercionResult{Profile: &profile}
}

// decimalDecodeHook converts JSON-compatible scalar values into decimal.Decimal.
// Non-numeric strings fail, which fails coercion for the whole mapping.
func decimalDecodeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(decimal.Decimal{}) {
		return data, nil
	}

	switch v := data.(type) {
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as a decimal amount", v)
		}
		return d, nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as a decimal amount", v)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	default:
		return nil, fmt.Errorf("cannot convert %T to a decimal amount", data)
	}
}

// StorageMap flattens a typed profile into the mapping persisted by the store.
// Every recognized field is present, nil when unset. Decimal amounts are
// converted to float64 at this boundary; very large or high-precision monetary
// values can lose precision here.
func StorageMap(p *domain.FinanceProfile) map[string]any {
	out := make(map[string]any)
	if p == nil {
		return out
	}

	v := reflect.ValueOf(*p)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		key := jsonFieldName(t.Field(i))
		if key == "" {
			continue
		}
		out[key] = storageValue(v.Field(i))
	}
	return out
}

func jsonFieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return ""
	}
	if idx := strings.Index(tag, ","); idx >= 0 {
		tag = tag[:idx]
	}
	return tag
}

func storageValue(f reflect.Value) any {
	switch f.Kind() {
	case reflect.Pointer:
		if f.IsNil() {
			return nil
		}
		return storageValue(f.Elem())
	case reflect.Slice:
		if f.IsNil() {
			return nil
		}
		return f.Interface()
	default:
		if d, ok := f.Interface().(decimal.Decimal); ok {
			fl, _ := d.Float64()
			return fl
		}
		return f.Interface()
	}
}

// NormalizeValue recursively converts decimal values inside arbitrary
// mappings and sequences to float64 so raw-fallback payloads and insights
// persist in the same numeric representation as coerced profiles.
func NormalizeValue(v any) any {
	switch val := v.(type) {
	case decimal.Decimal:
		fl, _ := val.Float64()
		return fl
	case *decimal.Decimal:
		if val == nil {
			return nil
		}
		fl, _ := val.Float64()
		return fl
	case json.Number:
		if fl, err := val.Float64(); err == nil {
			return fl
		}
		return val.String()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = NormalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = NormalizeValue(item)
		}
		return out
	default:
		return v
	}
}
