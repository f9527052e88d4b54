// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// RFC 9106 low-memory profile (64 MiB, t=1, p=4).
const (
	hashTime        = 1
	hashMemory      = 64 * 1024
	hashParallelism = 4
	hashKeyLen      = 32
	hashSaltLen     = 16

	refreshTokenBytes = 32
)

var errHashFormat = errors.New("malformed password hash")

func HashPassword(password string) (string, error) {
	salt := make([]byte, hashSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey(
		[]byte(password),
		salt,
		hashTime,
		hashMemory,
		hashParallelism,
		hashKeyLen,
	)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		hashMemory,
		hashTime,
		hashParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

func VerifyPassword(password, encodedHash string) (bool, error) {
	ok, _, err := verify(password, encodedHash)
	return ok, err
}

// VerifyPasswordWithRehash additionally returns a fresh hash when the stored
// one was produced with outdated cost parameters. Empty string means the
// stored hash is current.
func VerifyPasswordWithRehash(
	password, encodedHash string,
) (bool, string, error) {
	ok, params, err := verify(password, encodedHash)
	if err != nil || !ok {
		return false, "", err
	}

	if !params.stale() {
		return true, "", nil
	}

	rehashed, hashErr := HashPassword(password)
	if hashErr != nil {
		//nolint:nilerr // verified fine, the rehash can wait for the next login
		return true, "", nil
	}

	return true, rehashed, nil
}

// decoyHash stands in for missing accounts during login.
var decoyHash string

func init() {
	h, err := HashPassword("decoy## not a real credential")
	if err != nil {
		panic("security: decoy hash: " + err.Error())
	}
	decoyHash = h
}

// VerifyPasswordTimingSafe burns a full argon2 verify even when no account
// matched, so login latency does not reveal which emails exist. Pass nil or
// an empty hash for the no-account case.
func VerifyPasswordTimingSafe(
	password string,
	encodedHash *string,
) (bool, string, error) {
	target := decoyHash
	if encodedHash != nil && *encodedHash != "" {
		target = *encodedHash
	}

	ok, rehash, err := VerifyPasswordWithRehash(password, target)

	if encodedHash == nil || *encodedHash == "" {
		return false, "", nil
	}

	return ok, rehash, err
}

type hashParams struct {
	memory      uint32
	time        uint32
	parallelism uint8
	keyLen      uint32
}

func (p hashParams) stale() bool {
	return p.memory != hashMemory ||
		p.time != hashTime ||
		p.parallelism != hashParallelism ||
		p.keyLen != hashKeyLen
}

func verify(password, encoded string) (bool, hashParams, error) {
	params, salt, key, err := parseHash(encoded)
	if err != nil {
		return false, hashParams{}, err
	}

	candidate := argon2.IDKey(
		[]byte(password),
		salt,
		params.time,
		params.memory,
		params.parallelism,
		params.keyLen,
	)

	return subtle.ConstantTimeCompare(key, candidate) == 1, params, nil
}

func parseHash(encoded string) (hashParams, []byte, []byte, error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[1] != "argon2id" {
		return hashParams{}, nil, nil, errHashFormat
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil {
		return hashParams{}, nil, nil, errHashFormat
	}
	if version != argon2.Version {
		return hashParams{}, nil, nil, fmt.Errorf(
			"%w: argon2 version %d", errHashFormat, version)
	}

	var params hashParams
	_, err := fmt.Sscanf(
		fields[3],
		"m=%d,t=%d,p=%d",
		&params.memory,
		&params.time,
		&params.parallelism,
	)
	if err != nil {
		return hashParams{}, nil, nil, errHashFormat
	}

	salt, err := base64.RawStdEncoding.DecodeString(fields[4])
	if err != nil {
		return hashParams{}, nil, nil, fmt.Errorf("decode salt: %w", err)
	}

	key, err := base64.RawStdEncoding.DecodeString(fields[5])
	if err != nil {
		return hashParams{}, nil, nil, fmt.Errorf("decode key: %w", err)
	}

	//nolint:gosec // G115: derived keys are at most a few dozen bytes
	params.keyLen = uint32(len(key))

	return params, salt, key, nil
}

func GenerateSecureToken(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

// GenerateRefreshToken returns the opaque secret handed to clients. Only its
// hash is ever stored.
func GenerateRefreshToken() (string, error) {
	return GenerateSecureToken(refreshTokenBytes)
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func CompareTokenHash(token, hash string) bool {
	return subtle.ConstantTimeCompare(
		[]byte(HashToken(token)),
		[]byte(hash),
	) == 1
}
