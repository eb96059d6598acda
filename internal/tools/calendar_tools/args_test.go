package calendar_tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArguments_PositiveInt(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    int
		wantErr bool
	}{
		{name: "absent uses default", value: nil, want: 10},
		{name: "json number", value: float64(25), want: 25},
		{name: "int", value: 3, want: 3},
		{name: "json.Number", value: json.Number("4"), want: 4},
		{name: "numeric string", value: " 12 ", want: 12},
		{name: "fraction", value: 2.5, wantErr: true},
		{name: "zero", value: float64(0), wantErr: true},
		{name: "negative string", value: "-1", wantErr: true},
		{name: "word", value: "many", wantErr: true},
		{name: "bool", value: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := arguments{}
			if tt.value != nil {
				a["n"] = tt.value
			}

			got, err := a.positiveInt("n", 10)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArguments_StringList(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    []string
		wantErr bool
	}{
		{name: "absent", value: nil, want: nil},
		{name: "array", value: []any{"a@x.io", "b@x.io"}, want: []string{"a@x.io", "b@x.io"}},
		{name: "string slice", value: []string{"a@x.io"}, want: []string{"a@x.io"}},
		{name: "csv", value: "a@x.io,b@x.io", want: []string{"a@x.io", "b@x.io"}},
		{name: "blank entries dropped", value: " , a@x.io ,", want: []string{"a@x.io"}},
		{name: "empty string", value: "", want: []string{}},
		{name: "non-string item", value: []any{"a@x.io", 7}, wantErr: true},
		{name: "number", value: float64(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := arguments{}
			if tt.value != nil {
				a["list"] = tt.value
			}

			got, err := a.stringList("list")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArguments_StringPointer(t *testing.T) {
	a := arguments{"set": "x", "empty": "", "null": nil, "number": 1.0}

	p, err := a.stringPointer("set")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "x", *p)

	p, err = a.stringPointer("empty")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "", *p)

	p, err = a.stringPointer("null")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = a.stringPointer("missing")
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = a.stringPointer("number")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestArguments_RequiredString(t *testing.T) {
	a := arguments{"id": "abc", "blank": " "}

	s, err := a.requiredString("id")
	require.NoError(t, err)
	assert.Equal(t, "abc", s)

	_, err = a.requiredString("blank")
	assert.ErrorIs(t, err, ErrMissingArgument)

	_, err = a.requiredString("missing")
	assert.ErrorIs(t, err, ErrMissingArgument)
}
