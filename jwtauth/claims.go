package jwtauth

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Registered claim names recognized by the claim set
const (
	ClaimNameSubject    = "sub"
	ClaimNameIssuer     = "iss"
	ClaimNameAudience   = "aud"
	ClaimNameExpiration = "exp"
	ClaimNameNotBefore  = "nbf"
	ClaimNameIssuedAt   = "iat"
	ClaimNameJWTID      = "jti"
)

// timestampClaims are decoded back into time.Time from their NumericDate form
var timestampClaims = map[string]bool{
	ClaimNameExpiration: true,
	ClaimNameNotBefore:  true,
	ClaimNameIssuedAt:   true,
}

// Claim is a single name/value assertion
type Claim struct {
	Name  string
	Value any
}

// ClaimSet is an immutable, ordered mapping of claim names to values.
// The zero value is an empty set. Every operation that changes the
// contents returns a new ClaimSet and leaves the receiver untouched.
//
// Values are normalized on insertion to the form they decode back to:
// integers become int64, floats become float64 and string slices become
// []any. exp, nbf and iat hold time.Time truncated to whole seconds;
// a timestamp under any other name is stored as int64 Unix seconds.
type ClaimSet struct {
	names  []string
	values map[string]any
}

// NewClaimSet builds a claim set from the given claims in order.
// A repeated name keeps its first position and takes the last value.
func NewClaimSet(claims ...Claim) ClaimSet {
	cs := ClaimSet{
		names:  make([]string, 0, len(claims)),
		values: make(map[string]any, len(claims)),
	}
	for _, c := range claims {
		cs.set(c.Name, c.Value)
	}
	return cs
}

// set mutates in place; only used while a set is still under construction
func (cs *ClaimSet) set(name string, value any) {
	if cs.values == nil {
		cs.values = make(map[string]any)
	}
	if _, exists := cs.values[name]; !exists {
		cs.names = append(cs.names, name)
	}
	cs.values[name] = normalizeValue(name, value)
}

func (cs ClaimSet) clone(extra int) ClaimSet {
	out := ClaimSet{
		names:  make([]string, len(cs.names), len(cs.names)+extra),
		values: make(map[string]any, len(cs.values)+extra),
	}
	copy(out.names, cs.names)
	for k, v := range cs.values {
		out.values[k] = v
	}
	return out
}

// With returns a new claim set with name set to value
func (cs ClaimSet) With(name string, value any) ClaimSet {
	out := cs.clone(1)
	out.set(name, value)
	return out
}

// Merge returns a new claim set holding the claims of both sets.
// On a name collision the value from other wins; the name keeps the
// position it had in cs. Names only present in other are appended in
// the order other lists them.
func (cs ClaimSet) Merge(other ClaimSet) ClaimSet {
	out := cs.clone(len(other.names))
	for _, name := range other.names {
		out.set(name, other.values[name])
	}
	return out
}

// Len returns the number of claims
func (cs ClaimSet) Len() int {
	return len(cs.names)
}

// Names returns the claim names in insertion order
func (cs ClaimSet) Names() []string {
	names := make([]string, len(cs.names))
	copy(names, cs.names)
	return names
}

// Get returns the value stored under name
func (cs ClaimSet) Get(name string) (any, bool) {
	v, ok := cs.values[name]
	return v, ok
}

// Has reports whether name is present
func (cs ClaimSet) Has(name string) bool {
	_, ok := cs.values[name]
	return ok
}

// String returns the claim as a string, or false if absent or not a string
func (cs ClaimSet) String(name string) (string, bool) {
	s, ok := cs.values[name].(string)
	return s, ok
}

// Time returns the claim as a timestamp, or false if absent or not a timestamp
func (cs ClaimSet) Time(name string) (time.Time, bool) {
	t, ok := cs.values[name].(time.Time)
	return t, ok
}

// Subject returns the sub claim or an empty string
func (cs ClaimSet) Subject() string {
	s, _ := cs.String(ClaimNameSubject)
	return s
}

// Issuer returns the iss claim or an empty string
func (cs ClaimSet) Issuer() string {
	s, _ := cs.String(ClaimNameIssuer)
	return s
}

// Expiration returns the exp claim
func (cs ClaimSet) Expiration() (time.Time, bool) {
	return cs.Time(ClaimNameExpiration)
}

// IssuedAt returns the iat claim
func (cs ClaimSet) IssuedAt() (time.Time, bool) {
	return cs.Time(ClaimNameIssuedAt)
}

// Audience returns the aud claim as a list, accepting both the single
// string and the array form.
func (cs ClaimSet) Audience() []string {
	switch v := cs.values[ClaimNameAudience].(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Equal reports whether both sets hold the same claims in the same order.
// Numbers compare by value regardless of int64/float64 representation.
func (cs ClaimSet) Equal(other ClaimSet) bool {
	if len(cs.names) != len(other.names) {
		return false
	}
	for i, name := range cs.names {
		if other.names[i] != name {
			return false
		}
		if !valuesEqual(cs.values[name], other.values[name]) {
			return false
		}
	}
	return true
}

// Map returns a copy of the claims as a plain map
func (cs ClaimSet) Map() map[string]any {
	out := make(map[string]any, len(cs.values))
	for k, v := range cs.values {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the claims as a JSON object preserving order.
// Timestamps are written as NumericDate seconds.
func (cs ClaimSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range cs.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		value := cs.values[name]
		if t, ok := value.(time.Time); ok {
			value = t.Unix()
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("claim %q: %w", name, err)
		}
		buf.Write(encoded)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the claim set, keeping the
// order in which names appear. Registered claims are type checked:
// sub, iss and jti must be strings and exp, nbf, iat must be numbers.
func (cs *ClaimSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("claim set must be a JSON object")
	}

	out := ClaimSet{values: make(map[string]any)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("claim name must be a string")
		}

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("claim %q: %w", name, err)
		}
		value, err := decodeClaimValue(name, raw)
		if err != nil {
			return err
		}
		out.set(name, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after claim set")
	}

	*cs = out
	return nil
}

func decodeClaimValue(name string, raw any) (any, error) {
	value := fromJSONNumbers(raw)

	switch name {
	case ClaimNameSubject, ClaimNameIssuer, ClaimNameJWTID:
		if _, ok := value.(string); !ok {
			return nil, fmt.Errorf("claim %q must be a string", name)
		}
	}

	if timestampClaims[name] {
		t, ok := toNumericDate(value)
		if !ok {
			return nil, fmt.Errorf("claim %q must be a numeric date", name)
		}
		return t, nil
	}
	return value, nil
}

// toNumericDate reads a NumericDate number as a whole-second time
func toNumericDate(v any) (time.Time, bool) {
	switch n := v.(type) {
	case int64:
		return time.Unix(n, 0), true
	case float64:
		return time.Unix(int64(math.Floor(n)), 0), true
	}
	return time.Time{}, false
}

// fromJSONNumbers converts json.Number leaves into int64 or float64
func fromJSONNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case []any:
		for i := range t {
			t[i] = fromJSONNumbers(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = fromJSONNumbers(t[k])
		}
		return t
	}
	return v
}

// normalizeValue stores v the way the named claim decodes from a token
func normalizeValue(name string, v any) any {
	v = normalizeJSONValue(v)
	if timestampClaims[name] {
		if t, ok := toNumericDate(v); ok {
			return t
		}
	}
	return v
}

func normalizeJSONValue(v any) any {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint:
		if uint64(t) <= math.MaxInt64 {
			return int64(t)
		}
		return float64(t)
	case uint64:
		if t <= math.MaxInt64 {
			return int64(t)
		}
		return float64(t)
	case float32:
		return float64(t)
	case time.Time:
		return t.Unix()
	case *jwt.NumericDate:
		if t == nil {
			return nil
		}
		return t.Unix()
	case json.Number:
		return fromJSONNumbers(t)
	case []string:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = item
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeJSONValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = normalizeJSONValue(item)
		}
		return out
	}

	// Other slices and string-keyed maps decode as []any and map[string]any
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice {
			if rv.IsNil() {
				return nil
			}
			if rv.Type().Elem().Kind() == reflect.Uint8 {
				return base64.StdEncoding.EncodeToString(rv.Bytes())
			}
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalizeJSONValue(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = normalizeJSONValue(iter.Value().Interface())
		}
		return out
	}
	return v
}

func valuesEqual(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	if fa, ok := asFloat(a); ok {
		fb, ok := asFloat(b)
		return ok && fa == fb
	}
	switch ta := a.(type) {
	case []any:
		tb, ok := b.([]any)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for i := range ta {
			if !valuesEqual(ta[i], tb[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		tb, ok := b.(map[string]any)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for k, va := range ta {
			vb, ok := tb[k]
			if !ok || !valuesEqual(va, vb) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// jwt.Claims implementation so a ClaimSet can be handed to golang-jwt

func (cs ClaimSet) GetExpirationTime() (*jwt.NumericDate, error) {
	return cs.numericDate(ClaimNameExpiration)
}

func (cs ClaimSet) GetIssuedAt() (*jwt.NumericDate, error) {
	return cs.numericDate(ClaimNameIssuedAt)
}

func (cs ClaimSet) GetNotBefore() (*jwt.NumericDate, error) {
	return cs.numericDate(ClaimNameNotBefore)
}

func (cs ClaimSet) GetIssuer() (string, error) {
	return cs.Issuer(), nil
}

func (cs ClaimSet) GetSubject() (string, error) {
	return cs.Subject(), nil
}

func (cs ClaimSet) GetAudience() (jwt.ClaimStrings, error) {
	return jwt.ClaimStrings(cs.Audience()), nil
}

func (cs ClaimSet) numericDate(name string) (*jwt.NumericDate, error) {
	t, ok := cs.Time(name)
	if !ok {
		if cs.Has(name) {
			return nil, jwt.ErrInvalidType
		}
		return nil, nil
	}
	return jwt.NewNumericDate(t), nil
}

var _ jwt.Claims = ClaimSet{}
