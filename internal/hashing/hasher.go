// Package hashing provides incremental content hashing with chunked reads.
package hashing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
)

// DefaultChunkSize is the read size used when none is configured.
const DefaultChunkSize = 8192

// Files are streamed chunk by chunk; cancellation is polled every
// cancelCheckInterval chunks so latency stays bounded without a syscall per
// chunk.
const cancelCheckInterval = 64

// Hasher streams files through SHA-256 without ever loading a whole file
// into memory.
type Hasher struct {
	chunkSize int
}

// New creates a hasher with the default chunk size.
func New() *Hasher {
	return NewWithChunkSize(DefaultChunkSize)
}

// NewWithChunkSize creates a hasher reading in chunks of the given size.
func NewWithChunkSize(chunkSize int) *Hasher {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Hasher{chunkSize: chunkSize}
}

// Hash returns the hex digest of the file at path.
func (h *Hasher) Hash(ctx context.Context, path string) (string, error) {
	return h.HashPrefix(ctx, path, -1)
}

// HashPrefix returns the hex digest of the first length bytes of the file at
// path. A negative length hashes the whole file. Hashing fails if the file is
// shorter than the requested prefix.
func (h *Hasher) HashPrefix(ctx context.Context, path string, length int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for hashing: %w", path, err)
	}
	defer f.Close()

	var reader io.Reader = f
	if length >= 0 {
		reader = io.LimitReader(f, length)
	}

	digest := sha256.New()
	read, err := h.stream(ctx, digest, reader)
	if err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	if length >= 0 && read < length {
		return "", fmt.Errorf("failed to hash %s: file is %d bytes, wanted a %d byte prefix", path, read, length)
	}

	return hex.EncodeToString(digest.Sum(nil)), nil
}

func (h *Hasher) stream(ctx context.Context, digest hash.Hash, reader io.Reader) (int64, error) {
	buf := make([]byte, h.chunkSize)
	var total int64
	for chunk := 0; ; chunk++ {
		if chunk%cancelCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return total, ctx.Err()
			default:
			}
		}

		n, err := reader.Read(buf)
		if n > 0 {
			digest.Write(buf[:n])
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}
