package binding

import (
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mcncl/jsonbean/internal/coerce"
	"github.com/mcncl/jsonbean/internal/models"
)

// RoundTrip decodes obj as className and encodes the result again.
func (r *Registry) RoundTrip(className string, obj *models.JSONObject) (*models.JSONObject, error) {
	inst, err := r.Decode(className, obj)
	if err != nil {
		return nil, err
	}
	return r.Encode(inst)
}

// Verify round-trips sample through className and returns a diff between the
// sample and the encoded result, empty when they match. For a root array only
// the first element is checked, since that is the element the classes were
// inferred from.
func (r *Registry) Verify(className string, sample models.JSONValue) (string, error) {
	switch v := sample.(type) {
	case *models.JSONObject:
		out, err := r.RoundTrip(className, v)
		if err != nil {
			return "", err
		}
		return cmp.Diff(v, out), nil
	case models.JSONArray:
		if len(v) == 0 {
			return "", nil
		}
		if obj, ok := v[0].(*models.JSONObject); ok {
			return r.Verify(className, obj)
		}
	}
	return "", nil
}

// Coercer returns a coercion registry whose class targets decode through r.
func (r *Registry) Coercer() *coerce.Registry {
	c := coerce.NewRegistry()
	for _, name := range r.order {
		className := name
		c.Register(className, func(obj *models.JSONObject) (any, error) {
			return r.Decode(className, obj)
		})
	}
	return c
}

// Export turns a coerced or decoded value back into plain JSON values.
// Instances are encoded through their class, date-times become RFC 3339.
func (r *Registry) Export(v any) (models.JSONValue, error) {
	switch x := v.(type) {
	case *Instance:
		return r.Encode(x)
	case []any:
		out := make(models.JSONArray, len(x))
		for i, item := range x {
			e, err := r.Export(item)
			if err != nil {
				return nil, err
			}
			out[i] = e
		}
		return out, nil
	case time.Time:
		return x.Format(time.RFC3339Nano), nil
	default:
		return v, nil
	}
}
