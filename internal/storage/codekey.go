package storage

import (
	"crypto/sha256"
	"encoding/hex"
)

// CodeKey — ключ отметки для authorization code. Сам код в хранилище не попадает.
func CodeKey(code string) string {
	h := sha256.Sum256([]byte(code))
	return "code_used:" + hex.EncodeToString(h[:])
}
