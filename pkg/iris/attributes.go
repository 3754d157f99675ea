package iris

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Attributes is the raw response object a model was built from. Models keep
// it so callers can read fields the SDK does not type yet.
type Attributes map[string]any

// Get returns the raw value for key.
func (a Attributes) Get(key string) (any, bool) {
	v, ok := a[key]
	return v, ok
}

// String returns key as a string; numbers and booleans are formatted.
func (a Attributes) String(key string) string {
	switch v := a[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	}
	return ""
}

// Int returns key as an int, accepting numeric strings.
func (a Attributes) Int(key string) int {
	switch v := a[key].(type) {
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	}
	return 0
}

// Float returns key as a float64.
func (a Attributes) Float(key string) float64 {
	switch v := a[key].(type) {
	case float64:
		return v
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	case json.Number:
		f, _ := v.Float64()
		return f
	}
	return 0
}

// Bool returns key as a bool. Truthy strings and non-zero numbers count.
func (a Attributes) Bool(key string) bool {
	b, _ := asBool(a[key])
	return b
}

// asBool accepts true/false, 0/1 style numbers and strconv.ParseBool strings.
func asBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case float64:
		return t != 0, true
	case json.Number:
		f, err := t.Float64()
		return f != 0, err == nil
	case string:
		if strings.TrimSpace(t) == "" {
			return false, true
		}
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return b, err == nil
	}
	return false, false
}

// Clone deep-copies the bag.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	return Attributes(cloneMap(a))
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// ID is a resource identifier. The API sends ids as numbers on some
// endpoints and strings on others; both decode. Any other shape decodes as
// the empty id and stays readable through Attributes.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*id = ""
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*id = ID(n.String())
	}
	return nil
}

func (id ID) String() string { return string(id) }

// model is embedded by every response type to carry its raw attributes.
type model struct {
	attrs Attributes
}

func (m *model) attach(a Attributes) { m.attrs = a }

// Attributes returns a copy of the raw response object.
func (m *model) Attributes() Attributes { return m.attrs.Clone() }

// ToMap returns the raw response object as a plain map.
func (m *model) ToMap() map[string]any {
	if m.attrs == nil {
		return map[string]any{}
	}
	return cloneMap(m.attrs)
}

type attacher[T any] interface {
	*T
	attach(Attributes)
}

// decodeModel builds a typed model from a response object. Typed fields are
// decoded from a copy with loose scalars (0/1 booleans, numeric strings)
// coerced first. A field that still has the wrong type is left zero; its raw
// value stays in the attributes bag.
func decodeModel[T any, PT attacher[T]](raw map[string]any) (*T, error) {
	obj := cloneMap(raw)
	coerceObject(obj, reflect.TypeFor[T]())
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("encoding response object: %w", err)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return nil, fmt.Errorf("decoding response object: %w", err)
		}
	}
	PT(&v).attach(Attributes(cloneMap(raw)))
	return &v, nil
}

var jsonUnmarshalerType = reflect.TypeFor[json.Unmarshaler]()

// coerceObject rewrites obj in place so scalar values match the kinds of the
// struct fields they decode into.
func coerceObject(obj map[string]any, t reflect.Type) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		if v, ok := obj[name]; ok {
			obj[name] = coerceValue(v, f.Type)
		}
	}
}

func coerceValue(v any, t reflect.Type) any {
	if v == nil || reflect.PointerTo(t).Implements(jsonUnmarshalerType) {
		return v
	}
	switch t.Kind() {
	case reflect.Pointer:
		return coerceValue(v, t.Elem())
	case reflect.Bool:
		if b, ok := asBool(v); ok {
			return b
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if f, ok := asFloat(v); ok {
			return math.Trunc(f)
		}
	case reflect.Float32, reflect.Float64:
		if f, ok := asFloat(v); ok {
			return f
		}
	case reflect.String:
		switch s := v.(type) {
		case float64:
			return strconv.FormatFloat(s, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(s)
		}
	case reflect.Slice:
		if items, ok := v.([]any); ok {
			for i := range items {
				items[i] = coerceValue(items[i], t.Elem())
			}
		}
	case reflect.Struct:
		if m, ok := v.(map[string]any); ok {
			coerceObject(m, t)
		}
	}
	return v
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	return 0, false
}

func decodeModels[T any, PT attacher[T]](raws []map[string]any) ([]T, error) {
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		v, err := decodeModel[T, PT](raw)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

// extractPayload returns the first candidate path that resolves to an
// object, or the body itself. Paths are dotted ("data.product").
//
// The API wraps payloads inconsistently across endpoints; every resource
// goes through here instead of repeating its own fallback chain.
func extractPayload(body map[string]any, paths ...string) map[string]any {
	for _, p := range paths {
		if m, ok := lookupPath(body, p).(map[string]any); ok {
			return m
		}
	}
	return body
}

// extractList returns the first candidate path that resolves to an array of
// objects. Non-object elements are skipped.
func extractList(body map[string]any, paths ...string) []map[string]any {
	for _, p := range paths {
		arr, ok := lookupPath(body, p).([]any)
		if !ok {
			continue
		}
		out := make([]map[string]any, 0, len(arr))
		for _, e := range arr {
			if m, ok := e.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func lookupPath(body map[string]any, path string) any {
	var cur any = body
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[part]
		if !ok {
			return nil
		}
	}
	return cur
}

// PageMeta is pagination metadata from list endpoints.
type PageMeta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// HasMore reports whether pages follow the current one.
func (m PageMeta) HasMore() bool { return m.CurrentPage < m.LastPage }

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items []T      `json:"items"`
	Meta  PageMeta `json:"meta"`
}

func extractMeta(body map[string]any, count int) PageMeta {
	src := Attributes(extractPayload(body, "meta", "data.meta", "pagination"))
	meta := PageMeta{
		CurrentPage: src.Int("current_page"),
		LastPage:    src.Int("last_page"),
		PerPage:     src.Int("per_page"),
		Total:       src.Int("total"),
	}
	if meta.CurrentPage == 0 {
		meta.CurrentPage = 1
	}
	if meta.LastPage == 0 {
		meta.LastPage = meta.CurrentPage
	}
	if meta.Total == 0 {
		meta.Total = count
	}
	return meta
}

func decodePage[T any, PT attacher[T]](body map[string]any, paths ...string) (*Page[T], error) {
	items, err := decodeModels[T, PT](extractList(body, paths...))
	if err != nil {
		return nil, err
	}
	return &Page[T]{Items: items, Meta: extractMeta(body, len(items))}, nil
}
