package orders

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ActivationCodeNotFound is returned when no line item carries an activation code.
const ActivationCodeNotFound = "N/A"

// ActivationKeyAliases are the metadata keys under which stores have been seen to keep
// license codes, in priority order. New product types may need new aliases.
var ActivationKeyAliases = []string{
	"_activation_keys",
	"activation_key",
	"key_code",
	"chave",
	"license",
	"license_key",
}

// ExtractActivationCode scans line items in order and returns the first activation code
// found: first item that has one, first alias in priority order, first element when the
// value is a list. Values that are empty (null, "", []) do not count. Without a hit it
// returns ActivationCodeNotFound.
func ExtractActivationCode(order *Order) string {
	if order == nil {
		return ActivationCodeNotFound
	}

	for _, item := range order.LineItems {
		for _, alias := range ActivationKeyAliases {
			raw, ok := item.MetaData.Lookup(alias)
			if !ok {
				continue
			}
			if code, ok := metaValueText(raw); ok {
				return code
			}
		}
	}
	return ActivationCodeNotFound
}

// metaValueText renders a metadata value as text, taking the first element of lists.
func metaValueText(raw json.RawMessage) (string, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", false
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", false
	}
	return renderValue(v)
}

func renderValue(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, val != ""
	case json.Number:
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	case []any:
		if len(val) == 0 {
			return "", false
		}
		return renderValue(val[0])
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}
