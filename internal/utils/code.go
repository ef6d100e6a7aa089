package utils

import "crypto/rand"

// codeAlphabet excludes easily confused symbols (0/O, 1/I/L) so codes can
// be read back over the phone or typed from a printed ticket.
const codeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// codeLength is the number of symbols in a reservation code.  31^10 values
// make accidental collisions vanishingly rare; the database still enforces
// uniqueness and callers retry on a collision.
const codeLength = 10

// NewReservationCode returns a short random alphanumeric code used as the
// human-readable identifier of a reservation.  It is generated from
// cryptographically secure random data.
func NewReservationCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, codeLength)
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out), nil
}
