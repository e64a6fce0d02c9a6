// Package fileutil copies audio files across filesystem boundaries, where
// the organizer and cutter cannot rely on rename. Episodes are large and the
// library often sits on different storage than the staging directory, so the
// copy is checksummed end to end.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

// CopyVerified streams src to dst and confirms the bytes written match the
// bytes read, by size and by SHA-256. A mismatch removes the partial dst and
// returns an error, leaving src untouched for retry.
func CopyVerified(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	wantSize := info.Size()

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	readSum := sha256.New()
	wroteSum := sha256.New()
	written, err := io.Copy(io.MultiWriter(out, wroteSum), io.TeeReader(in, readSum))
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if written != wantSize {
		_ = os.Remove(dst)
		return fmt.Errorf("verified copy: wrote %d of %d bytes", written, wantSize)
	}
	if !bytes.Equal(readSum.Sum(nil), wroteSum.Sum(nil)) {
		_ = os.Remove(dst)
		return fmt.Errorf("verified copy: checksum mismatch after writing %s", dst)
	}
	return nil
}
