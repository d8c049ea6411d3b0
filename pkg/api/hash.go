package api

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Hash returns a deterministic BLAKE3 hash of the entry.
// It covers ID, Title, ContentMD and both timestamps; ContentHTML is derived
// from ContentMD and is left out.
func (e Entry) Hash() string {
	h := blake3.New()

	var id [8]byte
	binary.BigEndian.PutUint64(id[:], uint64(e.ID))
	h.Write(id[:])

	// length-prefix the free text fields so "ab"+"c" and "a"+"bc" differ
	writeField(h, e.Title)
	writeField(h, e.ContentMD)

	if !e.CreatedAt.IsZero() {
		h.Write([]byte(e.CreatedAt.UTC().Format(timeRFC3339Nano)))
	}
	h.Write([]byte{0})

	if !e.UpdatedAt.IsZero() {
		h.Write([]byte(e.UpdatedAt.UTC().Format(timeRFC3339Nano)))
	}

	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

func writeField(h *blake3.Hasher, s string) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(s)))
	h.Write(n[:])
	h.Write([]byte(s))
}

const timeRFC3339Nano = "2006-01-02T15:04:05.999999999Z07:00"
