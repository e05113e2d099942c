package method

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMethod(t *testing.T) {
	for _, method := range List {
		assert.Equal(t, method, Parse(method.String()))
		assert.True(t, method.Supported())
	}
}

func TestUnknown(t *testing.T) {
	for _, tc := range []string{"POST", "PUT", "DELETE", "get", "", "GETS"} {
		m := Parse(tc)
		require.Equal(t, Unknown, m, tc)
		require.False(t, m.Supported())
	}
}
