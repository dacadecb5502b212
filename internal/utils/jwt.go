package utils // package utils provides token issuing and hashing helpers

import (
    "crypto/rand"
    "crypto/sha256"
    "encoding/hex"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// AccessToken is a signed HS256 JWT plus its expiry.  Staff clients send
// it in the Authorization header on every admin call.
type AccessToken struct {
    Token string    // serialized JWT
    Exp   time.Time // UTC expiration time
}

// RefreshToken is the long-lived counterpart used to obtain new access
// tokens.  Raw goes back to the client once; the database keeps only its
// SHA-256 hash.
type RefreshToken struct {
    Raw string    // raw token string returned to the client
    Exp time.Time // UTC expiration time
}

// NewAccessToken signs an HS256 JWT carrying the staff account ID as the
// subject and the account role as a custom claim.  ttlMin bounds the
// token's lifetime in minutes.
func NewAccessToken(secret string, userID uint64, role string, ttlMin int) (AccessToken, error) {
    exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":  userID,
        "role": role,
        "exp":  exp.Unix(),
        "iat":  time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken returns a fresh random refresh token valid for ttlDays.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
    // 48 random bytes -> 96 hex chars.
    raw, err := randomHex(48)
    if err != nil {
        return RefreshToken{}, err
    }
    return RefreshToken{
        Raw: raw,
        Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
    }, nil
}

// HashRefreshRaw hashes a raw refresh token for storage.  A leaked token
// table cannot be replayed against the refresh endpoints.
func HashRefreshRaw(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

// randomHex returns n bytes of CSPRNG output as a hex string.
func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
