package statsapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Payload is a decoded top-level JSON object. Accessors validate the shape of
// one field and return *ShapeError on mismatch.
type Payload map[string]json.RawMessage

// errorMessage reports a truthy "error" field. false, 0, "" and null mean no error.
func (p Payload) errorMessage() (string, bool) {
	raw, ok := p["error"]
	if !ok {
		return "", false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw), true
	}
	switch e := v.(type) {
	case nil:
		return "", false
	case string:
		return e, e != ""
	case bool:
		return string(raw), e
	case float64:
		return string(raw), e != 0
	default:
		return string(raw), true
	}
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null"
}

// Has reports whether field is present and not null.
func (p Payload) Has(field string) bool {
	raw, ok := p[field]
	return ok && !isNull(raw)
}

// Keys returns the field names, sorted.
func (p Payload) Keys() []string {
	out := make([]string, 0, len(p))
	for k := range p {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (p Payload) field(name string) (json.RawMessage, error) {
	raw, ok := p[name]
	if !ok || isNull(raw) {
		return nil, &ShapeError{Field: name, Reason: "missing"}
	}
	return raw, nil
}

// Decode unmarshals field into v.
func (p Payload) Decode(field string, v any) error {
	raw, err := p.field(field)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &ShapeError{Field: field, Reason: "wrong type", Err: err}
	}
	return nil
}

// Strings reads an array of labels. Numbers are accepted and formatted
// without exponent, so year axes sent as integers work.
func (p Payload) Strings(field string) ([]string, error) {
	raw, err := p.field(field)
	if err != nil {
		return nil, err
	}
	out, err := ParseLabels(raw)
	if err != nil {
		return nil, &ShapeError{Field: field, Reason: "not a label array", Err: err}
	}
	return out, nil
}

// Floats reads an array of numbers; null elements become NaN.
func (p Payload) Floats(field string) ([]float64, error) {
	raw, err := p.field(field)
	if err != nil {
		return nil, err
	}
	out, err := ParseNumbers(raw)
	if err != nil {
		return nil, &ShapeError{Field: field, Reason: "not a numeric array", Err: err}
	}
	return out, nil
}

// Matrix reads an array of numeric arrays.
func (p Payload) Matrix(field string) ([][]float64, error) {
	raw, err := p.field(field)
	if err != nil {
		return nil, err
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, &ShapeError{Field: field, Reason: "not an array", Err: err}
	}
	out := make([][]float64, len(rows))
	for i, r := range rows {
		vals, err := ParseNumbers(r)
		if err != nil {
			return nil, &ShapeError{Field: fmt.Sprintf("%s[%d]", field, i), Reason: "not a numeric array", Err: err}
		}
		out[i] = vals
	}
	return out, nil
}

// ParseLabels decodes a JSON array whose elements are strings or numbers.
func ParseLabels(raw json.RawMessage) ([]string, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, err
	}
	out := make([]string, len(elems))
	for i, e := range elems {
		if isNull(e) {
			return nil, fmt.Errorf("element %d: null label", i)
		}
		var s string
		if err := json.Unmarshal(e, &s); err == nil {
			out[i] = s
			continue
		}
		var n json.Number
		dec := json.NewDecoder(bytes.NewReader(e))
		dec.UseNumber()
		if err := dec.Decode(&n); err != nil {
			return nil, fmt.Errorf("element %d: want string or number, got %s", i, string(e))
		}
		out[i] = formatNumber(n)
	}
	return out, nil
}

func formatNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParseNumbers decodes a JSON array of numbers; null elements become NaN.
func ParseNumbers(raw json.RawMessage) ([]float64, error) {
	var elems []*float64
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, err
	}
	out := make([]float64, len(elems))
	for i, e := range elems {
		if e == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *e
	}
	return out, nil
}
