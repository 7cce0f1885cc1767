// Package hasher computes content-addressed digests of file bytes. It reads
// files streamingly in bounded chunks so large PDFs never get materialized
// whole in memory.
package hasher

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"io"
	"os"

	"golang.org/x/crypto/blake2b"

	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"

	"github.com/tagbox/tagbox/internal/tberrors"
)

// Algorithm identifies a supported digest algorithm.
type Algorithm string

const (
	SHA256  Algorithm = "sha256"
	Blake2b Algorithm = "blake2b"
	Blake3  Algorithm = "blake3"
	XXH364  Algorithm = "xxh3_64"
	XXH3128 Algorithm = "xxh3_128"
	MD5     Algorithm = "md5"
	SHA512  Algorithm = "sha512"
)

// chunkSize bounds how much of the file is read per Write call; it keeps
// peak memory flat regardless of file size.
const chunkSize = 8 * 1024 * 1024

// HashFile streams path through algo and returns a lowercase hex digest.
// I/O errors are surfaced verbatim, wrapped as tberrors.IO; there is no
// retry.
func HashFile(path string, algo Algorithm) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", tberrors.NewFileNotFound(path)
		}
		return "", tberrors.NewIO(err)
	}
	defer f.Close()

	h, err := newHash(algo)
	if err != nil {
		return "", err
	}

	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", tberrors.NewIO(err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// newHash returns a streaming hash.Hash for algo. xxh3's 64-bit hasher is
// used directly; its 128-bit digest has no hash.Hash form, so that variant
// is wrapped with the small adapter below.
func newHash(algo Algorithm) (hash.Hash, error) {
	switch algo {
	case SHA256:
		return sha256.New(), nil
	case SHA512:
		return sha512.New(), nil
	case MD5:
		return md5.New(), nil
	case Blake2b:
		h, err := blake2b.New512(nil)
		if err != nil {
			return nil, tberrors.NewIO(err)
		}
		return h, nil
	case Blake3:
		return blake3.New(), nil
	case XXH364:
		return xxh3.New(), nil
	case XXH3128:
		return &xxh128Hash{h: xxh3.New()}, nil
	default:
		return nil, tberrors.NewConfig("unknown hash algorithm: " + string(algo))
	}
}

// xxh128Hash widens xxh3's 128-bit digest (Hasher.Sum128) to the stdlib
// hash.Hash contract so HashFile can treat every algorithm uniformly.
type xxh128Hash struct {
	h *xxh3.Hasher
}

func (x *xxh128Hash) Write(p []byte) (int, error) { return x.h.Write(p) }
func (x *xxh128Hash) Reset()                      { x.h.Reset() }
func (x *xxh128Hash) Size() int                   { return 16 }
func (x *xxh128Hash) BlockSize() int              { return 64 }
func (x *xxh128Hash) Sum(b []byte) []byte {
	u := x.h.Sum128()
	buf := u.Bytes()
	return append(b, buf[:]...)
}

// Valid reports whether algo is one of the recognized algorithms.
func Valid(algo Algorithm) bool {
	switch algo {
	case SHA256, Blake2b, Blake3, XXH364, XXH3128, MD5, SHA512:
		return true
	default:
		return false
	}
}
