// Package fileutil holds the small file primitives shared by the download,
// speech, and object storage layers.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteAtomic streams r into a temp file next to dst and renames it into
// place once the copy and close succeed. dst never holds a partial payload.
func WriteAtomic(dst string, r io.Reader) (int64, error) {
	if r == nil {
		return 0, errors.New("write atomic: nil reader")
	}
	dir := filepath.Dir(dst)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, r)
	if err != nil {
		return written, fmt.Errorf("write %s: %w", dst, err)
	}
	if err := tmp.Close(); err != nil {
		return written, fmt.Errorf("close %s: %w", dst, err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return written, fmt.Errorf("rename into %s: %w", dst, err)
	}
	committed = true
	return written, nil
}

// CopyFileVerified streams src to dst with SHA256 + size integrity
// verification and returns the hex digest. The destination is written
// atomically; on mismatch it is removed.
func CopyFileVerified(src, dst string) (string, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	srcHasher := sha256.New()
	written, err := WriteAtomic(dst, io.TeeReader(in, srcHasher))
	if err != nil {
		return "", err
	}
	if written != srcSize {
		_ = os.Remove(dst)
		return "", fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}

	dstDigest, err := FileSHA256(dst)
	if err != nil {
		_ = os.Remove(dst)
		return "", err
	}
	srcDigest := srcHasher.Sum(nil)
	if !bytes.Equal(srcDigest, dstDigest) {
		_ = os.Remove(dst)
		return "", fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}
	return hex.EncodeToString(srcDigest), nil
}

// FileSHA256 returns the raw SHA256 digest of the file at path.
func FileSHA256(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return nil, fmt.Errorf("hash %s: %w", path, err)
	}
	return hasher.Sum(nil), nil
}
