package utils // package utils provides helper functions for hashing and token handling

import (
    "crypto/sha256" // fingerprint of the current password hash
    "encoding/hex"  // hex encoding for the fingerprint claim
    "errors"
    "strconv" // user IDs travel as decimal strings in the subject claim
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrResetTokenInvalid is returned by VerifyResetToken for every failure
// mode: bad signature, malformed payload, expiry, or garbage input.  A
// single sentinel keeps callers from leaking why a token was rejected.
var ErrResetTokenInvalid = errors.New("reset token invalid or expired")

// resetClaims is the payload of a password-reset token.  Subject carries
// the user ID, IssuedAt the issue time, and Fingerprint a short digest of
// the password hash that was current when the token was issued.  The
// fingerprint ties the token to that hash: changing the password
// invalidates every outstanding token without any server-side state.
type resetClaims struct {
    Fingerprint string `json:"fp"`
    jwt.RegisteredClaims
}

// IssueResetToken signs a stateless reset token for a user.  The token is
// an HS256 JWT; the caller passes the user's current password hash so the
// fingerprint claim can be derived.  Tokens are not reproducible (iat
// changes) and carry no expiry claim — the age check happens at
// verification time against the configured window.
func IssueResetToken(secret string, userID uint64, passwordHash string) (string, error) {
    claims := resetClaims{
        Fingerprint: PasswordFingerprint(passwordHash),
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:  strconv.FormatUint(userID, 10),
            IssuedAt: jwt.NewNumericDate(time.Now().UTC()),
        },
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    return t.SignedString([]byte(secret))
}

// VerifyResetToken checks signature integrity and token age, returning the
// embedded user ID and password fingerprint.  Any failure yields
// ErrResetTokenInvalid; attacker-supplied garbage never panics.  The caller
// must still compare the returned fingerprint against the user's current
// password hash via PasswordFingerprint before accepting the token.
func VerifyResetToken(secret, token string, maxAge time.Duration) (uint64, string, error) {
    claims := &resetClaims{}
    tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
        return []byte(secret), nil
    }, jwt.WithValidMethods([]string{"HS256"}))
    if err != nil || !tok.Valid {
        return 0, "", ErrResetTokenInvalid
    }
    if claims.IssuedAt == nil {
        return 0, "", ErrResetTokenInvalid
    }
    // iat has second precision on the wire; compare whole seconds so a
    // token is never older than its own issue instant.
    age := time.Now().UTC().Unix() - claims.IssuedAt.Unix()
    if age > int64(maxAge/time.Second) {
        return 0, "", ErrResetTokenInvalid
    }
    uid, err := strconv.ParseUint(claims.Subject, 10, 64)
    if err != nil || uid == 0 {
        return 0, "", ErrResetTokenInvalid
    }
    return uid, claims.Fingerprint, nil
}

// PasswordFingerprint derives the short digest stored in the fp claim:
// the first 8 bytes of SHA-256 of the bcrypt hash, hex encoded.  It
// reveals nothing useful about the hash itself.
func PasswordFingerprint(passwordHash string) string {
    sum := sha256.Sum256([]byte(passwordHash))
    return hex.EncodeToString(sum[:8])
}
