package watch

import (
	"crypto/md5"
	"fmt"
)

// Fingerprint returns the hex MD5 digest of normalized text. A 128-bit
// content identity is enough here: collision resistance is not a security
// property, only "different text, different digest" with overwhelming
// probability. Always compute it over normalized text, never raw markup,
// so cosmetic markup changes cannot move the fingerprint.
func Fingerprint(text string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(text)))
}
