package mcpserver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil error returns empty string",
			err:  nil,
			want: "",
		},
		{
			name: "strips absolute path",
			err:  fmt.Errorf("failed to open /home/user/secret/api.yaml: no such file"),
			want: "failed to open <path>: no such file",
		},
		{
			name: "preserves non-path content",
			err:  fmt.Errorf("invalid YAML at line 5"),
			want: "invalid YAML at line 5",
		},
		{
			name: "strips multiple paths",
			err:  fmt.Errorf("load /tmp/a.yaml after /tmp/b.yaml failed"),
			want: "load <path> after <path> failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeError(tt.err))
		})
	}
}

func TestErrResult(t *testing.T) {
	result := errResult(fmt.Errorf("cannot read /var/data/spec.yaml"))
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "cannot read <path>")
}

func TestMakeSlice(t *testing.T) {
	assert.Nil(t, makeSlice[int](0))

	got := makeSlice[int](3)
	assert.NotNil(t, got)
	assert.Len(t, got, 0)
	assert.Equal(t, 3, cap(got))
}
