package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected string
	}{
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"int", Int(42), "42"},
		{"negative int", Int(-100), "-100"},
		{"bool", Bool(true), "true"},
		{"empty array", Array{}, "[]"},
		{"empty object", Object{}, "{}"},
		{"nested", Object{"a": Array{Int(1), Bool(false)}}, `{"a":[1,false]}`},
		{"html is not escaped", String("<a&b>"), `"<a&b>"`},
		{"line separator literal", String("x\u2028y"), "\"x\u2028y\""},
		{"escaped backslash kept", String(`\u2028`), `"\\u2028"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestMarshalSortedKeys(t *testing.T) {
	got, err := Marshal(Object{"zebra": Int(1), "alpha": Int(2), "beta": Int(3)})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":3,"zebra":1}`, string(got))
}

func TestMarshalUTF16KeyOrder(t *testing.T) {
	// U+FF61 sorts before U+1F600 in UTF-8 but after it in UTF-16.
	got, err := Marshal(Object{"\U0001F600": Int(1), "\uff61": Int(2)})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":1,\"\uff61\":2}", string(got))
}

func TestMarshalNFC(t *testing.T) {
	composed, err := Marshal(String("\u00e9"))
	require.NoError(t, err)
	decomposed, err := Marshal(String("e\u0301"))
	require.NoError(t, err)
	assert.Equal(t, composed, decomposed)
}

func TestMarshalRejectsNull(t *testing.T) {
	_, err := Marshal(Object{"a": nil})
	assert.Error(t, err)
}

func TestFixed(t *testing.T) {
	assert.Equal(t, Int(1_500_000), Fixed(1.5))
	assert.Equal(t, Int(-250_000), Fixed(-0.25))
	assert.Equal(t, Int(0), Fixed(-0.0000000001))
	assert.Equal(t, Fixed(0.1+0.2), Fixed(0.3))
}
