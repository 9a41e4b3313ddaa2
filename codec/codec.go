package codec

import (
	"bytes"
	"encoding"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
)

const (
	markerType     = "Buffer"
	markerTypeKey  = "type"
	markerFlagKey  = "buffer"
	markerDataKey  = "data"
	markerValueKey = "value"
)

var (
	// ErrMalformed is returned when an encoded value cannot be decoded.
	ErrMalformed = errors.New("codec: malformed encoded value")
	// ErrUnsupportedValue is returned when a value cannot be encoded.
	ErrUnsupportedValue = errors.New("codec: unsupported value")
	// ErrReservedShape is returned when an ordinary map has the shape of the
	// binary marker and would decode as bytes.
	ErrReservedShape = errors.New("codec: map collides with binary marker")
)

// Buffer is a byte slice that encodes as the binary marker object.
type Buffer []byte

type marker struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// MarshalJSON implements json.Marshaler.
func (b Buffer) MarshalJSON() ([]byte, error) {
	return json.Marshal(marker{
		Type: markerType,
		Data: base64.StdEncoding.EncodeToString(b),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Buffer) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*b = nil
		return nil
	}
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !isMarker(raw) {
		return fmt.Errorf("%w: not a binary marker", ErrMalformed)
	}
	out, err := markerBytes(raw)
	if err != nil {
		return err
	}
	*b = out
	return nil
}

// Null is the encoded form of nil, nil pointers, nil maps and nil non-byte
// slices.
const Null = "null"

// Encode serializes v to its stored string form.
func Encode(v any) (string, error) {
	prepared, err := prepare(v)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(prepared)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
	}
	return string(data), nil
}

// Decode parses a stored string produced by [Encode] or by an existing
// deployment.
func Decode(s string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data", ErrMalformed)
	}
	return revive(v)
}

// Unmarshal decodes s into dst. Binary fields of dst must be [Buffer].
func Unmarshal(s string, dst any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, ErrMalformed) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// Clone deep-copies v by encoding and decoding it.
func Clone(v any) (any, error) {
	s, err := Encode(v)
	if err != nil {
		return nil, err
	}
	return Decode(s)
}

func prepare(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case Buffer:
		return t, nil
	case []byte:
		return Buffer(t), nil
	case json.Number, string, bool:
		return t, nil
	case json.Marshaler:
		return t, nil
	case map[string]any:
		if t == nil {
			return nil, nil
		}
		if isMarker(t) {
			return nil, ErrReservedShape
		}
		out := make(map[string]any, len(t))
		for k, elem := range t {
			p, err := prepare(elem)
			if err != nil {
				return nil, err
			}
			out[k] = p
		}
		return out, nil
	case []any:
		if t == nil {
			return nil, nil
		}
		out := make([]any, len(t))
		for i, elem := range t {
			p, err := prepare(elem)
			if err != nil {
				return nil, err
			}
			out[i] = p
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return prepare(rv.Elem().Interface())
	case reflect.Map:
		if rv.IsNil() {
			return nil, nil
		}
		generic := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k, err := mapKey(iter.Key())
			if err != nil {
				return nil, err
			}
			generic[k] = iter.Value().Interface()
		}
		return prepare(generic)
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			out := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(out), rv)
			return Buffer(out), nil
		}
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, nil
		}
		generic := make([]any, rv.Len())
		for i := range generic {
			generic[i] = rv.Index(i).Interface()
		}
		return prepare(generic)
	case reflect.Struct:
		fields := make(map[string]any, rv.NumField())
		if err := structFields(rv, fields); err != nil {
			return nil, err
		}
		if isMarker(fields) {
			return nil, ErrReservedShape
		}
		return fields, nil
	}
	return v, nil
}

// structFields flattens the exported fields of rv into out under their json
// names, preparing each value on the way. Fields declared directly on rv win
// over fields promoted from exported embedded structs.
func structFields(rv reflect.Value, out map[string]any) error {
	rt := rv.Type()
	var embedded []reflect.Value
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" || !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		fv := rv.Field(i)

		if f.Anonymous && name == "" {
			ev := fv
			if ev.Kind() == reflect.Pointer {
				if ev.IsNil() {
					continue
				}
				ev = ev.Elem()
			}
			if ev.Kind() == reflect.Struct {
				embedded = append(embedded, ev)
				continue
			}
		}

		if name == "" {
			name = f.Name
		}
		if hasOption(opts, "omitempty") && isEmptyValue(fv) {
			continue
		}
		p, err := prepare(fv.Interface())
		if err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		out[name] = p
	}

	for _, ev := range embedded {
		promoted := make(map[string]any)
		if err := structFields(ev, promoted); err != nil {
			return err
		}
		for k, p := range promoted {
			if _, taken := out[k]; !taken {
				out[k] = p
			}
		}
	}
	return nil
}

func hasOption(opts, want string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == want {
			return true
		}
	}
	return false
}

// isEmptyValue mirrors the omitempty rule of encoding/json.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}
	return false
}

// mapKey names a map key the way encoding/json does.
func mapKey(k reflect.Value) (string, error) {
	if k.Kind() == reflect.String {
		return k.String(), nil
	}
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		if k.Kind() == reflect.Pointer && k.IsNil() {
			return "", nil
		}
		text, err := tm.MarshalText()
		if err != nil {
			return "", fmt.Errorf("%w: map key: %v", ErrUnsupportedValue, err)
		}
		return string(text), nil
	}
	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	}
	return "", fmt.Errorf("%w: map key of type %s", ErrUnsupportedValue, k.Type())
}

func revive(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		if isMarker(t) {
			return markerBytes(t)
		}
		for k, elem := range t {
			r, err := revive(elem)
			if err != nil {
				return nil, err
			}
			t[k] = r
		}
		return t, nil
	case []any:
		for i, elem := range t {
			r, err := revive(elem)
			if err != nil {
				return nil, err
			}
			t[i] = r
		}
		return t, nil
	}
	return v, nil
}

func isMarker(m map[string]any) bool {
	typ, _ := m[markerTypeKey].(string)
	flag, _ := m[markerFlagKey].(bool)
	return typ == markerType || flag
}

func markerBytes(m map[string]any) ([]byte, error) {
	payload, ok := m[markerDataKey]
	if !ok || payload == nil {
		payload = m[markerValueKey]
	}

	switch p := payload.(type) {
	case nil:
		return []byte{}, nil
	case string:
		out, err := base64.StdEncoding.DecodeString(p)
		if err != nil {
			return nil, fmt.Errorf("%w: binary marker: %v", ErrMalformed, err)
		}
		return out, nil
	case []any:
		out := make([]byte, len(p))
		for i, elem := range p {
			n, ok := elem.(json.Number)
			if !ok {
				return nil, fmt.Errorf("%w: binary marker element %d is not a number", ErrMalformed, i)
			}
			b, err := n.Int64()
			if err != nil || b < 0 || b > 255 {
				return nil, fmt.Errorf("%w: binary marker element %d out of range", ErrMalformed, i)
			}
			out[i] = byte(b)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: binary marker payload has type %T", ErrMalformed, payload)
	}
}
