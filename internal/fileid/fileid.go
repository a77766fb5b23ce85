// Package fileid provides content hashing for downloaded filing attachments.
package fileid

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// ContentHash returns the MD5 hex digest of data. MD5 matches the dedup
// column the original file registry was built on; it is not used for anything
// security-relevant.
func ContentHash(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// FileContentHash returns the MD5 hex digest of the file at path, streaming
// the content so large PDFs are not held in memory.
func FileContentHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
