package utils

import (
    "crypto/rand"
    "crypto/sha256"
    "encoding/hex"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// AccessToken is a signed HS256 JWT plus its expiry.  Organizers and
// customers carry it in the Authorization header; the role claim inside
// it is what routes them to their side of the API.
type AccessToken struct {
    Token string
    Exp   time.Time
}

// RefreshToken is the long-lived credential used to mint new access
// tokens.  Raw goes to the client once; the database keeps only its
// SHA-256 hash.
type RefreshToken struct {
    Raw string
    Exp time.Time
}

// NewAccessToken signs an HS256 token with sub (user id), role, exp and
// iat claims.  The role is ORGANIZER or CUSTOMER as stored on the user
// row.
func NewAccessToken(secret string, userID uint64, role string, ttlMin int) (AccessToken, error) {
    exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":  userID,
        "role": role,
        "exp":  exp.Unix(),
        "iat":  time.Now().UTC().Unix(),
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken returns a random 96-hex-char token valid for ttlDays.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
    raw, err := randomHex(48)
    if err != nil {
        return RefreshToken{}, err
    }
    return RefreshToken{
        Raw: raw,
        Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
    }, nil
}

// HashRefreshRaw returns the hex SHA-256 of a raw refresh token.  A
// leaked refresh_tokens table then holds nothing replayable.
func HashRefreshRaw(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
