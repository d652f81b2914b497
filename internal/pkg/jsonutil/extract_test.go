package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractObject(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{name: "plain", in: `{"a":1}`, want: `{"a":1}`, ok: true},
		{name: "fenced", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`, ok: true},
		{name: "prose", in: `result: {"a":"}"} done`, want: `{"a":"}"}`, ok: true},
		{name: "empty", in: "   ", ok: false},
		{name: "garbage", in: "no json", ok: false},
		{name: "unbalanced", in: `{"a":1`, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractObject(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
