package seattoken

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// ivLength is the number of random bytes prepended to every token; a fresh
	// IV per call means two tokens for the same seat never look alike
	ivLength = 16
	// tagLength is the size of the GCM authentication tag appended to the
	// ciphertext
	tagLength = 16
	// keyLength is 32 bytes, i.e. AES-256
	keyLength = 32
	// kdfIterations is the PBKDF2 iteration count used to stretch the secret
	// into an encryption key
	kdfIterations = 100000
)

// ErrMalformedToken is returned when a token can't be base64-decoded or is too
// short to even contain an IV and an authentication tag
var ErrMalformedToken = errors.New("token is malformed")

// ErrTamperedToken is returned when authenticated decryption fails: the token
// was truncated, bit-flipped, or produced under a different secret
var ErrTamperedToken = errors.New("token is invalid or has been tampered with")

// ErrCorruptPayload is returned when a token decrypts successfully but the
// recovered plaintext doesn't carry both a seat and a room
var ErrCorruptPayload = errors.New("token payload is missing seat or room")

var seatPattern = regexp.MustCompile(`^[01]\d+$`)

// Assignment is the seat/room pair recovered from a valid token
type Assignment struct {
	Seat string `json:"seat"`
	Room string `json:"room"`
}

// Codec encrypts and decrypts seat assignments as opaque, URL-safe tokens.
// The token itself is the only durable record of an assignment: there is no
// server-side seat database. A Codec is immutable once constructed and safe
// for concurrent use.
type Codec struct {
	key []byte
}

// NewCodec derives an AES-256 key from the given long-lived secret. The PBKDF2
// salt is the SHA-256 digest of the secret itself, so the same secret always
// derives the same key and no salt needs to be stored anywhere.
func NewCodec(secret string) *Codec {
	salt := sha256.Sum256([]byte(secret))
	key := pbkdf2.Key([]byte(secret), salt[:], kdfIterations, keyLength, sha256.New)
	return &Codec{key: key}
}

// Generate encrypts "<seat>:<room>" under a fresh random IV and returns
// base64url(IV || ciphertext || tag) with padding stripped, safe to embed
// unescaped in a URL query parameter. The seat must satisfy the seat format
// and the room must be non-empty.
func (c *Codec) Generate(seat string, room string) (string, error) {
	if !IsValidSeatFormat(seat) {
		return "", fmt.Errorf("invalid seat value %q: seat must start with 0 or 1, followed by digits", seat)
	}
	if room == "" {
		return "", fmt.Errorf("room value is required")
	}

	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	aead, err := c.newAead()
	if err != nil {
		return "", err
	}

	// Seal appends ciphertext-then-tag, so prefixing the IV gives us the full
	// IV || ciphertext || tag wire format in one buffer
	plaintext := fmt.Sprintf("%s:%s", seat, room)
	combined := aead.Seal(iv, iv, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(combined), nil
}

// Validate decrypts and authenticates a token produced by Generate, returning
// the seat/room pair it encodes. Validation is all-or-nothing: no part of the
// payload is trusted unless the authentication tag verifies.
func (c *Codec) Validate(token string) (*Assignment, error) {
	// Tolerate callers that kept the base64 padding; Generate strips it
	combined, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return nil, ErrMalformedToken
	}
	if len(combined) < ivLength+tagLength {
		return nil, ErrMalformedToken
	}

	aead, err := c.newAead()
	if err != nil {
		return nil, err
	}

	iv := combined[:ivLength]
	plaintext, err := aead.Open(nil, iv, combined[ivLength:], nil)
	if err != nil {
		return nil, ErrTamperedToken
	}

	seat, room, ok := strings.Cut(string(plaintext), ":")
	if !ok || seat == "" || room == "" {
		return nil, ErrCorruptPayload
	}
	return &Assignment{Seat: seat, Room: room}, nil
}

// IsValidSeatFormat reports whether a seat value satisfies the seat format:
// a leading 0 (inside ring) or 1 (outside ring) followed by one or more
// digits. This is a policy check, independent of cryptographic validity, and
// must be re-applied after decoding a token.
func IsValidSeatFormat(seat string) bool {
	return seatPattern.MatchString(strings.TrimSpace(seat))
}

func (c *Codec) newAead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}
	// GCM with a 16-byte nonce to match the token wire format
	aead, err := cipher.NewGCMWithNonceSize(block, ivLength)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GCM: %w", err)
	}
	return aead, nil
}
