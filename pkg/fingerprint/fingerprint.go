// Package fingerprint computes content-addressed identifiers for snapshot
// parts.
//
// Values are marshalled to JSON before hashing. encoding/json writes map keys
// in sorted order, so two structurally equal values always produce the same
// fingerprint regardless of map iteration order.
package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// Of returns the hex-encoded SHA-256 of the JSON encoding of v.
func Of(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshalling fingerprint input: %w", err)
	}

	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:]), nil
}

// MustOf is Of for values that are known to be JSON encodable.
func MustOf(v any) string {
	fp, err := Of(v)
	if err != nil {
		panic(err)
	}
	return fp
}

// Normalize round-trips a config map through JSON so that values decoded from
// YAML (ints, typed slices) and values read back from storage compare equal.
// Integers keep full precision as canonical json.Number values; other numbers
// become float64.
func Normalize(m map[string]any) (map[string]any, error) {
	if m == nil {
		return map[string]any{}, nil
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("normalizing config: %w", err)
	}

	out := map[string]any{}
	if err := Decode(data, &out); err != nil {
		return nil, fmt.Errorf("normalizing config: %w", err)
	}
	Canonicalize(out)
	return out, nil
}

// Decode unmarshals data into v, keeping numbers as json.Number.
func Decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// Canonicalize rewrites the numbers in a decoded JSON tree in place. Integral
// values become base-10 json.Number, so 5 and 5.0 compare equal; the rest
// become float64.
func Canonicalize(m map[string]any) {
	for k, v := range m {
		m[k] = canonical(v)
	}
}

func canonical(v any) any {
	switch t := v.(type) {
	case map[string]any:
		Canonicalize(t)
		return t
	case []any:
		for i, e := range t {
			t[i] = canonical(e)
		}
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return json.Number(strconv.FormatInt(i, 10))
		}
		if n, ok := new(big.Int).SetString(t.String(), 10); ok {
			return json.Number(n.String())
		}
		if f, err := t.Float64(); err == nil {
			if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
				return json.Number(strconv.FormatInt(int64(f), 10))
			}
			return f
		}
		return t
	default:
		return v
	}
}
