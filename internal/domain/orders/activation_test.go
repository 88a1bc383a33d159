package orders

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func meta(key, value string) MetaEntry {
	return MetaEntry{Key: key, Value: json.RawMessage(value)}
}

func TestExtractActivationCode(t *testing.T) {
	tests := []struct {
		name  string
		items []LineItem
		want  string
	}{
		{
			name: "second item carries chave",
			items: []LineItem{
				{Name: "Curso", MetaData: Metadata{meta("_reduced_stock", `"1"`)}},
				{Name: "Licença", MetaData: Metadata{meta("chave", `"CHAVE-2"`)}},
			},
			want: "CHAVE-2",
		},
		{
			name:  "no matching key anywhere",
			items: []LineItem{{Name: "Curso", MetaData: Metadata{meta("color", `"blue"`)}}},
			want:  ActivationCodeNotFound,
		},
		{
			name:  "no line items",
			items: nil,
			want:  ActivationCodeNotFound,
		},
		{
			name:  "array value takes first element",
			items: []LineItem{{MetaData: Metadata{meta("_activation_keys", `["A","B"]`)}}},
			want:  "A",
		},
		{
			name: "alias priority beats entry order",
			items: []LineItem{{MetaData: Metadata{
				meta("license_key", `"LOW"`),
				meta("activation_key", `"HIGH"`),
			}}},
			want: "HIGH",
		},
		{
			name: "first item wins over later items",
			items: []LineItem{
				{MetaData: Metadata{meta("license_key", `"FIRST"`)}},
				{MetaData: Metadata{meta("_activation_keys", `"SECOND"`)}},
			},
			want: "FIRST",
		},
		{
			name: "first entry of a repeated key wins",
			items: []LineItem{{MetaData: Metadata{
				meta("license", `"ONE"`),
				meta("license", `"TWO"`),
			}}},
			want: "ONE",
		},
		{
			name:  "numeric value keeps its text",
			items: []LineItem{{MetaData: Metadata{meta("key_code", `1234567890123`)}}},
			want:  "1234567890123",
		},
		{
			name:  "object value rendered as JSON",
			items: []LineItem{{MetaData: Metadata{meta("license", `{"code":"X1"}`)}}},
			want:  `{"code":"X1"}`,
		},
		{
			name: "empty values are skipped",
			items: []LineItem{
				{MetaData: Metadata{meta("_activation_keys", `[]`), meta("activation_key", `""`)}},
				{MetaData: Metadata{meta("license_key", `null`)}},
				{MetaData: Metadata{meta("chave", `["K-3"]`)}},
			},
			want: "K-3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractActivationCode(&Order{LineItems: tt.items}))
		})
	}
}

func TestExtractActivationCode_NilOrder(t *testing.T) {
	assert.Equal(t, ActivationCodeNotFound, ExtractActivationCode(nil))
}
