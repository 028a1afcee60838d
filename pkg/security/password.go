// Package security hashes the passwords of storefront shoppers held by the
// in-memory gateway. Seeded accounts and accounts created through signup are
// both stored as PHC strings of the form
//
//	$argon2id$v=19$m=<KiB>,t=<passes>,p=<threads>$<salt>$<key>
//
// with salt and key in unpadded base64.
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	saltBytes = 16
	keyBytes  = 32
)

var (
	ErrEmptyPassword = errors.New("password is empty")
	ErrMalformedHash = errors.New("malformed password hash")
)

// Cost is the argon2id work factor recorded in every hash.
type Cost struct {
	MemoryKiB uint32
	Passes    uint32
	Threads   uint8
}

// ShopperCost is the work factor for storefront accounts.
func ShopperCost() Cost {
	return Cost{MemoryKiB: 64 * 1024, Passes: 3, Threads: 2}
}

func (c Cost) orDefaults() Cost {
	d := ShopperCost()
	if c.MemoryKiB == 0 {
		c.MemoryKiB = d.MemoryKiB
	}
	if c.Passes == 0 {
		c.Passes = d.Passes
	}
	if c.Threads == 0 {
		c.Threads = d.Threads
	}
	return c
}

// Hash derives the stored form of a shopper's password. Zero fields of c
// take their ShopperCost value.
func Hash(password string, c Cost) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	c = c.orDefaults()
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, c.Passes, c.MemoryKiB, c.Threads, keyBytes)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, c.MemoryKiB, c.Passes, c.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Matches reports whether password is the one stored as encoded. The cost
// is read back from encoded, so hashes made under an older cost still match.
func Matches(password, encoded string) (bool, error) {
	c, salt, key, err := parse(encoded)
	if err != nil {
		return false, err
	}
	got := argon2.IDKey([]byte(password), salt, c.Passes, c.MemoryKiB, c.Threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(got, key) == 1, nil
}

func parse(encoded string) (Cost, []byte, []byte, error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return Cost{}, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Cost{}, nil, nil, fmt.Errorf("%w: unsupported version %q", ErrMalformedHash, fields[2])
	}

	var c Cost
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &c.MemoryKiB, &c.Passes, &c.Threads); err != nil {
		return Cost{}, nil, nil, fmt.Errorf("%w: cost %q", ErrMalformedHash, fields[3])
	}
	if c.MemoryKiB == 0 || c.Passes == 0 || c.Threads == 0 {
		return Cost{}, nil, nil, fmt.Errorf("%w: zero cost %q", ErrMalformedHash, fields[3])
	}

	salt, err := base64.RawStdEncoding.DecodeString(fields[4])
	if err != nil || len(salt) == 0 {
		return Cost{}, nil, nil, fmt.Errorf("%w: salt", ErrMalformedHash)
	}
	key, err := base64.RawStdEncoding.DecodeString(fields[5])
	if err != nil || len(key) == 0 {
		return Cost{}, nil, nil, fmt.Errorf("%w: key", ErrMalformedHash)
	}
	return c, salt, key, nil
}
