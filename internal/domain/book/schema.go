package book

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Input locations.
const (
	LocBody  = "body"
	LocQuery = "query"
	LocPath  = "path"
)

// Parameter names as they appear in error locations.
const (
	ParamBookID = "book_id"
	ParamPrice  = "price"
)

// stringFields lists the required string members of the body, in report order.
var stringFields = []string{"name", "author", "isbn"}

// DecodeDraft checks body against the book schema and returns the draft.
// Every failing field is reported, not just the first.
func DecodeDraft(body []byte) (Draft, error) {
	verr := &ValidationError{}

	if len(bytes.TrimSpace(body)) == 0 {
		verr.add(msgMissing, typeMissing, LocBody)
		return Draft{}, verr
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			verr.add(syntaxErr.Error(), typeJSONDecode, LocBody, syntaxErr.Offset)
			return Draft{}, verr
		}
		verr.add(msgDict, typeDict, LocBody)
		return Draft{}, verr
	}
	if fields == nil {
		// literal null
		verr.add(msgMissing, typeMissing, LocBody)
		return Draft{}, verr
	}

	values := make(map[string]string, len(stringFields))
	for _, name := range stringFields {
		raw, ok := fields[name]
		switch {
		case !ok:
			verr.add(msgMissing, typeMissing, LocBody, name)
		case isNull(raw):
			verr.add(msgNone, typeNone, LocBody, name)
		default:
			s, err := jsonString(raw)
			if err != nil {
				verr.add(msgStr, typeStr, LocBody, name)
				continue
			}
			values[name] = s
		}
	}

	var price float64
	raw, ok := fields[ParamPrice]
	switch {
	case !ok:
		verr.add(msgMissing, typeMissing, LocBody, ParamPrice)
	case isNull(raw):
		verr.add(msgNone, typeNone, LocBody, ParamPrice)
	default:
		p, err := jsonFloat(raw)
		if err != nil {
			verr.add(msgFloat, typeFloat, LocBody, ParamPrice)
		}
		price = p
	}

	if err := verr.orNil(); err != nil {
		return Draft{}, err
	}
	return Draft{
		Name:   values["name"],
		Author: values["author"],
		ISBN:   values["isbn"],
		Price:  price,
	}, nil
}

// ParsePrice validates the price query parameter of an update.
func ParsePrice(raw string, present bool) (float64, error) {
	verr := &ValidationError{}
	if !present {
		verr.add(msgMissing, typeMissing, LocQuery, ParamPrice)
		return 0, verr
	}
	p, err := parseFloat(raw)
	if err != nil {
		verr.add(msgFloat, typeFloat, LocQuery, ParamPrice)
		return 0, verr
	}
	return p, nil
}

// ParseID validates the book id path parameter.
func ParseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		verr := &ValidationError{}
		verr.add(msgInteger, typeInteger, LocPath, ParamBookID)
		return 0, verr
	}
	return id, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// jsonFloat accepts a JSON number, a string holding one, or a boolean
// (true is 1, false is 0).
func jsonFloat(raw json.RawMessage) (float64, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return parseFloat(n.String())
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return 1, nil
		}
		return 0, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, ErrValidation
	}
	return parseFloat(s)
}

// jsonString accepts a JSON string. Numbers and booleans are coerced to
// the text Python's str() gives them: 10 -> "10", 1.0 -> "1.0",
// 1e20 -> "1e+20", true -> "True". Anything else is rejected.
func jsonString(raw json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		if t {
			return "True", nil
		}
		return "False", nil
	case json.Number:
		return pyNumber(t)
	default:
		return "", ErrValidation
	}
}

// pyNumber renders a JSON number as Python would after json.loads: integer
// literals stay arbitrary precision ints, everything else is a float in
// repr form.
func pyNumber(n json.Number) (string, error) {
	lit := n.String()
	if !strings.ContainsAny(lit, ".eE") {
		i, ok := new(big.Int).SetString(lit, 10)
		if !ok {
			return "", ErrValidation
		}
		return i.String(), nil
	}

	f, err := strconv.ParseFloat(lit, 64)
	if err != nil && !math.IsInf(f, 0) {
		return "", err
	}
	switch {
	case math.IsInf(f, 1):
		return "inf", nil
	case math.IsInf(f, -1):
		return "-inf", nil
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if err != nil {
		return "", err
	}
	if exp < -4 || exp >= 16 {
		return sci, nil
	}
	fixed := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(fixed, ".") {
		fixed += ".0"
	}
	return fixed, nil
}

// parseFloat rejects values that cannot be served back as JSON.
func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrValidation
	}
	return f, nil
}
