package store

import (
	"crypto/sha256"
	"fmt"
)

// HooksHash computes a deterministic hash of the configured hook references
// and, for script hooks, their source. read returns a script's source, or
// false for references that are not scripts. Order matters: hooks run in
// the order given.
func HooksHash(refs []string, read func(ref string) (string, bool)) string {
	h := sha256.New()
	for i, ref := range refs {
		fmt.Fprintf(h, "hook:%d:%s\n", i, ref)
		if src, ok := read(ref); ok {
			fmt.Fprintf(h, "source:%d:%s\n", len(src), src)
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
