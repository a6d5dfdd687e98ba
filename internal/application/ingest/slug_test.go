package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"cyrillic word", "Вес", "ves"},
		{"cyrillic ts", "Цвет", "tsvet"},
		{"cyrillic compound", "Страна производства", "strana-proizvodstva"},
		{"latin with punctuation", "Size (EU)", "size-eu"},
		{"diacritics", "Matériel café", "materiel-cafe"},
		{"digits kept", "Объем 30 мл", "obem-30-ml"},
		{"collapsed separators", "  a  --  b  ", "a-b"},
		{"soft sign dropped", "Мощность", "moschnost"},
		{"nothing survives", "###", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.in))
		})
	}
}
