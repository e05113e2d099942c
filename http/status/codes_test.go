package status

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringCode(t *testing.T) {
	for _, code := range KnownCodes {
		require.Equal(t, strconv.Itoa(int(code)), StringCode(code))
	}

	require.Equal(t, "418", StringCode(418))
}

func TestText(t *testing.T) {
	for _, code := range KnownCodes {
		require.NotEqual(t, "Unknown Status Code", Text(code))
	}

	require.Equal(t, "File Not Found", Text(NotFound))
	require.Equal(t, "Unknown Status Code", Text(418))
}

func TestCodeOf(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		require.Equal(t, NotFound, CodeOf(ErrNotFound))
	})

	t.Run("wrapped", func(t *testing.T) {
		err := fmt.Errorf("/missing.html: %w", ErrNotFound)
		require.ErrorIs(t, err, ErrNotFound)
		require.Equal(t, NotFound, CodeOf(err))
	})

	t.Run("foreign", func(t *testing.T) {
		require.Equal(t, InternalServerError, CodeOf(errors.New("boom")))
	})
}
