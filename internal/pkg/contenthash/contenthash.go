// Package contenthash вычисляет отпечаток текста статьи для обнаружения изменений.
package contenthash

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum возвращает SHA-256 от text в нижнем hex (64 символа).
func Sum(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
