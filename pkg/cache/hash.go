package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"hash"
)

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON returns the hex SHA-256 digest of the JSON encoding of v. Graph
// documents and matrices are keyed this way, so two files holding the same
// graph share their artifacts.
func HashJSON(v any) (string, error) {
	h := sha256.New()
	if err := json.NewEncoder(h).Encode(v); err != nil {
		return "", err
	}
	return digest(h), nil
}

// hashKey builds "<keyType>:<digest of parts>". [KeyType] recovers the
// type, which the instrumented cache reports to its hooks.
func hashKey(keyType string, parts ...any) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, p := range parts {
		// Key parts are strings, numbers and option structs.
		_ = enc.Encode(p)
	}
	return keyType + ":" + digest(h)
}

func digest(h hash.Hash) string { return hex.EncodeToString(h.Sum(nil)) }
