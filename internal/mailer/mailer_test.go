package mailer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResetMessage(t *testing.T) {
	t.Parallel()

	subject, body := ResetMessage("https://portal.example.com", "tok-abc123")
	require.Equal(t, "Password Reset Request", subject)
	require.Contains(t, body, "https://portal.example.com/reset_password/tok-abc123")
	require.Contains(t, body, "ignore this email")
	// The link sits on its own line so mail clients render it clickable.
	require.True(t, hasLine(body, "https://portal.example.com/reset_password/tok-abc123"))
}

func hasLine(body, want string) bool {
	for _, line := range strings.Split(body, "\n") {
		if line == want {
			return true
		}
	}
	return false
}
