package homework

import (
	"encoding/json"
	"math"
)

// ValidateResponse checks the payload shape and returns the submissions list unchanged.
// A payload without the homeworks key fails with KindEmptyAnswer.
func ValidateResponse(payload any) ([]any, error) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, NewError(KindShapeError, "not an object")
	}
	raw, ok := obj[FieldHomeworks]
	if !ok {
		return nil, Errorf(KindEmptyAnswer, "response has no %q key", FieldHomeworks)
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, NewError(KindShapeError, "homeworks not a list")
	}
	return list, nil
}

// ExtractCursor reads current_date from the payload.
// ok is false when the field is absent, in which case the cursor must stay as it is.
func ExtractCursor(payload any) (Cursor, bool, error) {
	obj, isObj := payload.(map[string]any)
	if !isObj {
		return 0, false, nil
	}
	raw, present := obj[FieldCurrentDate]
	if !present || raw == nil {
		return 0, false, nil
	}
	switch v := raw.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false, Errorf(KindShapeError, "current_date %q is not an integer", v.String())
		}
		return Cursor(n), true, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, false, Errorf(KindShapeError, "current_date %v is not an integer", v)
		}
		if v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, false, Errorf(KindShapeError, "current_date %v is out of range", v)
		}
		return Cursor(int64(v)), true, nil
	case int64:
		return Cursor(v), true, nil
	case int:
		return Cursor(v), true, nil
	default:
		return 0, false, Errorf(KindShapeError, "current_date has unexpected type %T", raw)
	}
}
