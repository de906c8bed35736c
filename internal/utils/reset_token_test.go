package utils

import (
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestResetToken_RoundTrip(t *testing.T) {
	t.Parallel()

	tok, err := IssueResetToken(testSecret, 42, "$2a$10$somestoredhash")
	require.NoError(t, err)

	uid, fp, err := VerifyResetToken(testSecret, tok, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(42), uid)
	require.Equal(t, PasswordFingerprint("$2a$10$somestoredhash"), fp)

	// A generous window accepts the token just as well.
	uid, _, err = VerifyResetToken(testSecret, tok, time.Hour)
	require.NoError(t, err)
	require.Equal(t, uint64(42), uid)
}

func TestResetToken_Expired(t *testing.T) {
	t.Parallel()

	// Forge a token with an issue time beyond the window, using the same
	// claim shape the codec emits.
	old := jwt.NewWithClaims(jwt.SigningMethodHS256, resetClaims{
		Fingerprint: PasswordFingerprint("hash"),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  "7",
			IssuedAt: jwt.NewNumericDate(time.Now().UTC().Add(-31 * time.Minute)),
		},
	})
	tok, err := old.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, _, err = VerifyResetToken(testSecret, tok, 30*time.Minute)
	require.ErrorIs(t, err, ErrResetTokenInvalid)

	// Still valid under a window that covers the issue time.
	uid, _, err := VerifyResetToken(testSecret, tok, time.Hour)
	require.NoError(t, err)
	require.Equal(t, uint64(7), uid)
}

func TestResetToken_TamperedSignature(t *testing.T) {
	t.Parallel()

	tok, err := IssueResetToken(testSecret, 1, "hash")
	require.NoError(t, err)

	// Corrupt one byte of the signature segment.
	corrupted := []byte(tok)
	last := len(corrupted) - 1
	if corrupted[last] == 'A' {
		corrupted[last] = 'B'
	} else {
		corrupted[last] = 'A'
	}
	_, _, err = VerifyResetToken(testSecret, string(corrupted), time.Hour)
	require.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestResetToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := IssueResetToken("right-secret", 1, "hash")
	require.NoError(t, err)

	_, _, err = VerifyResetToken("wrong-secret", tok, time.Hour)
	require.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestResetToken_GarbageInput(t *testing.T) {
	t.Parallel()

	for _, garbage := range []string{"", "not.a.jwt", "....", "\x00\xff", strconv.Itoa(1 << 20)} {
		_, _, err := VerifyResetToken(testSecret, garbage, time.Hour)
		require.ErrorIs(t, err, ErrResetTokenInvalid, "input %q", garbage)
	}
}

func TestResetToken_FingerprintChangesWithHash(t *testing.T) {
	t.Parallel()

	// The fingerprint is how outstanding tokens die on password change:
	// a token minted against the old hash no longer matches the new one.
	tok, err := IssueResetToken(testSecret, 9, "old-hash")
	require.NoError(t, err)

	_, fp, err := VerifyResetToken(testSecret, tok, time.Hour)
	require.NoError(t, err)
	require.Equal(t, PasswordFingerprint("old-hash"), fp)
	require.NotEqual(t, PasswordFingerprint("new-hash"), fp)
}
