package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/go-playground/validator/v10"
)

func malformed(op string, format string, args ...any) error {
	return fmt.Errorf("%s: %s: %w", op, fmt.Sprintf(format, args...), ErrMalformedInput)
}

func rawArg(args []json.RawMessage, i int) (json.RawMessage, bool) {
	if i >= len(args) || len(bytes.TrimSpace(args[i])) == 0 {
		return nil, false
	}
	return args[i], true
}

func decodeAny(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func stringArg(args []json.RawMessage, i int) (string, bool) {
	raw, ok := rawArg(args, i)
	if !ok {
		return "", false
	}
	v, err := decodeAny(raw)
	if err != nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// integerArg accepts JSON numbers with an integral value.
func integerArg(args []json.RawMessage, i int) (int64, bool) {
	raw, ok := rawArg(args, i)
	if !ok {
		return 0, false
	}
	v, err := decodeAny(raw)
	if err != nil {
		return 0, false
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}

	if v, err := n.Int64(); err == nil {
		return v, true
	}

	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("truthy", func(fl validator.FieldLevel) bool {
		return isTruthyJSON(fl.Field().Bytes())
	})
	return v
}

// isTruthyJSON rejects the JSON values a JavaScript client would treat as falsy.
func isTruthyJSON(raw []byte) bool {
	s := bytes.TrimSpace(raw)
	if len(s) == 0 {
		return false
	}

	switch string(s) {
	case "null", "false", `""`:
		return false
	}

	if f, err := strconv.ParseFloat(string(s), 64); err == nil {
		return f != 0
	}
	return true
}
