package iris

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// resource is embedded by every façade. It holds the shared HTTP layer and
// Config; nothing else is kept between calls.
type resource struct {
	http *HTTPClient
	cfg  *Config
}

func (r resource) getObject(ctx context.Context, path string, query url.Values) (map[string]any, error) {
	var body map[string]any
	if err := r.http.Get(ctx, path, query, &body); err != nil {
		return nil, err
	}
	return body, nil
}

func (r resource) postObject(ctx context.Context, path string, payload any) (map[string]any, error) {
	var body map[string]any
	if err := r.http.Post(ctx, path, payload, &body); err != nil {
		return nil, err
	}
	return body, nil
}

func (r resource) putObject(ctx context.Context, path string, payload any) (map[string]any, error) {
	var body map[string]any
	if err := r.http.Put(ctx, path, payload, &body); err != nil {
		return nil, err
	}
	return body, nil
}

func (r resource) patchObject(ctx context.Context, path string, payload any) (map[string]any, error) {
	var body map[string]any
	if err := r.http.Patch(ctx, path, payload, &body); err != nil {
		return nil, err
	}
	return body, nil
}

// userPath formats a path under /api/v1/users/{uid}.
func userPath(uid int, format string, args ...any) string {
	return fmt.Sprintf("/api/v1/users/%d", uid) + fmt.Sprintf(format, args...)
}

func esc(s string) string { return url.PathEscape(s) }

func requireArg(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("iris: %s is required", name)
	}
	return nil
}

// params is a flat request parameter map. set skips zero values so callers
// can pass option structs straight through.
type params map[string]any

func (p params) set(key string, v any) params {
	switch t := v.(type) {
	case nil:
		return p
	case string:
		if t == "" {
			return p
		}
	case ID:
		if t == "" {
			return p
		}
	case int:
		if t == 0 {
			return p
		}
	case float64:
		if t == 0 {
			return p
		}
	case Amount:
		if t == 0 {
			return p
		}
	case bool:
		if !t {
			return p
		}
	case *bool:
		if t == nil {
			return p
		}
		v = *t
	case []string:
		if len(t) == 0 {
			return p
		}
	case []ID:
		if len(t) == 0 {
			return p
		}
	case map[string]any:
		if len(t) == 0 {
			return p
		}
	}
	p[key] = v
	return p
}

// merge copies extra into p without overwriting keys already set.
func (p params) merge(extra map[string]any) params {
	for k, v := range extra {
		if _, ok := p[k]; !ok {
			p[k] = v
		}
	}
	return p
}

func (p params) query() url.Values {
	q := url.Values{}
	for k, v := range p {
		switch t := v.(type) {
		case []string:
			for _, s := range t {
				q.Add(k+"[]", s)
			}
		case bool:
			q.Set(k, strconv.FormatBool(t))
		default:
			q.Set(k, fmt.Sprint(t))
		}
	}
	return q
}

// Amount is a money value. Some endpoints send decimals as strings; a value
// that is not a number decodes as zero.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*a = 0
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			*a = Amount(f)
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*a = Amount(f)
	}
	return nil
}

// String formats the amount with two decimals.
func (a Amount) String() string { return strconv.FormatFloat(float64(a), 'f', 2, 64) }
