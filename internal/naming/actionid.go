package naming

import (
	"crypto/sha1"
	"encoding/hex"
)

// ActionID computes the stable action identifier: the SHA-1 hex
// digest of hashSalt, filename, a literal colon, and exportName,
// concatenated as UTF-8 bytes with no other separators. It depends
// only on its three inputs and is always 40 lowercase hex characters.
func ActionID(hashSalt, filename, exportName string) string {
	h := sha1.New()
	h.Write([]byte(hashSalt))
	h.Write([]byte(filename))
	h.Write([]byte(":"))
	h.Write([]byte(exportName))
	return hex.EncodeToString(h.Sum(nil))
}
