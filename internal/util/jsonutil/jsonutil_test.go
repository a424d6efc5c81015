package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractObject(t *testing.T) {
	cases := map[string]struct {
		in   string
		want string
	}{
		"bare":         {`Sure! {"1": {"Stance": "a"}} hope this helps`, `{"1": {"Stance": "a"}}`},
		"fenced":       {"Here:\n```json\n{\"a\": 1}\n```\n", `{"a": 1}`},
		"brace in str": {`{"a": "x } y"}`, `{"a": "x } y"}`},
		"nested":       {`x {"a": {"b": {}}} {"c": 2}`, `{"a": {"b": {}}}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ExtractObject(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(got))
		})
	}

	_, err := ExtractObject("1. no json here")
	assert.ErrorIs(t, err, ErrNoObject)
	_, err = ExtractObject(`{"unterminated": `)
	assert.ErrorIs(t, err, ErrNoObject)
}

func TestMarshalNoEscapeIndent(t *testing.T) {
	b, err := MarshalNoEscapeIndent(map[string]string{"k": "a & <b>"})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"k\": \"a & <b>\"\n}", string(b))
}

func TestUnmarshalFlexUnwrapsQuotedPayload(t *testing.T) {
	var out map[string]int
	require.NoError(t, UnmarshalFlex([]byte(`"{\"a\": 1}"`), &out))
	assert.Equal(t, 1, out["a"])
}
