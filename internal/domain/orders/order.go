package orders

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DefaultProductName is used when an order has no line items.
const DefaultProductName = "Produto"

// ID is an order identifier as the caller supplies it. It decodes from a JSON string
// or number.
type ID string

// UnmarshalJSON accepts "123", 123 and null.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("order id must be a string or number: %w", err)
		}
		*id = ID(n.String())
		return nil
	}
}

func (id ID) String() string { return string(id) }

// Empty reports whether the id carries no value.
func (id ID) Empty() bool { return strings.TrimSpace(string(id)) == "" }

// Billing is the order's billing contact.
type Billing struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// MetaEntry is one line-item metadata pair. Value keeps the raw JSON since stores put
// strings, numbers, arrays and objects there.
type MetaEntry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Metadata is the ordered metadata of a line item. It decodes from the WooCommerce
// array form ([{"key":..,"value":..}]) and from a plain JSON object, keeping
// document order in both cases.
type Metadata []MetaEntry

func (m *Metadata) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*m = nil
		return nil
	}

	switch b[0] {
	case '[':
		var entries []MetaEntry
		if err := json.Unmarshal(b, &entries); err != nil {
			return err
		}
		*m = entries
		return nil
	case '{':
		entries, err := decodeOrderedObject(b)
		if err != nil {
			return err
		}
		*m = entries
		return nil
	default:
		return errors.New("line item metadata must be an array or object")
	}
}

// decodeOrderedObject decodes a JSON object into entries in document order.
func decodeOrderedObject(b []byte) ([]MetaEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	if _, err := dec.Token(); err != nil { // opening brace
		return nil, err
	}

	var entries []MetaEntry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected metadata key %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		entries = append(entries, MetaEntry{Key: key, Value: value})
	}
	return entries, nil
}

// Lookup returns the value of the first entry named key.
func (m Metadata) Lookup(key string) (json.RawMessage, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// LineItem is one purchased product.
type LineItem struct {
	Name     string   `json:"name"`
	MetaData Metadata `json:"meta_data"`
}

// Order is the subset of a WooCommerce order the relay reads. It is fetched per request
// and never stored.
type Order struct {
	ID        ID         `json:"id"`
	Billing   Billing    `json:"billing"`
	LineItems []LineItem `json:"line_items"`
	Total     Money      `json:"total"`
}

// ItemNames joins the display names of the line items with ", ".
func (order *Order) ItemNames() string {
	names := make([]string, 0, len(order.LineItems))
	for _, it := range order.LineItems {
		if name := strings.TrimSpace(it.Name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return DefaultProductName
	}
	return strings.Join(names, ", ")
}
