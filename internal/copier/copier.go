// Package copier performs the deduplicating copy phase of a task.
//
// Files are processed group by group in the deterministic order produced by
// the search phase. A run-scoped ledger of content hashes guarantees that at
// most one physical copy of any distinct content survives in the destination,
// regardless of the original filename or location. Name collisions with
// different content are resolved by suffixing "_1", "_2", ... before the
// extension. A single file's failure never aborts the batch.
package copier

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/harrison/filescout/internal/cancel"
	"github.com/harrison/filescout/internal/events"
	"github.com/harrison/filescout/internal/search"
)

// hashChunkSize is the read granularity while hashing; cancellation is
// polled between chunks so a large file can be abandoned promptly.
const hashChunkSize = 8192

// maxRenameAttempts caps the search for a free collision name. Beyond it a
// degraded fallback name is used; that name can itself collide, which is a
// known limitation carried over deliberately.
const maxRenameAttempts = 1000

// ErrStopped is returned by HashFile when the token stops mid-hash.
var ErrStopped = errors.New("copy task stopped")

// Copier executes one copy phase against a destination root.
type Copier struct {
	sink  events.Sink
	token *cancel.Token
}

// New creates a Copier emitting status, progress and log events to sink and
// polling token at every loop boundary.
func New(sink events.Sink, token *cancel.Token) *Copier {
	return &Copier{sink: sink, token: token}
}

// Copy processes the sorted keyword groups and returns the number of files
// actually copied plus the elapsed duration. expectedTotal drives the
// progress percentage. When the token stops mid-phase the remaining files
// are abandoned and partial counts are returned.
func (c *Copier) Copy(groups []search.Group, destRoot string, expectedTotal int) (int, time.Duration) {
	start := time.Now()
	copied := 0
	processed := 0

	// Run-scoped ledger: content hash -> destination path that received the
	// first copy of that content. Dies with this copy phase.
	ledger := make(map[string]string)

	for _, group := range groups {
		if !c.token.Running() {
			break
		}
		if len(group.Files) == 0 {
			continue
		}
		c.sink.Log(fmt.Sprintf("Processing group: %s", group.Key), events.SeverityDetail)

		for _, file := range group.Files {
			if !c.token.Running() {
				break
			}

			baseName := filepath.Base(file.Path)
			destFolder := destRoot
			if file.LastFolder != "" {
				destFolder = filepath.Join(destRoot, file.LastFolder)
			}
			destFolder = filepath.Clean(destFolder)
			destPath := filepath.Join(destFolder, baseName)

			processed++
			c.sink.Status(fmt.Sprintf("Copying [%d/%d]: %s", processed, expectedTotal, baseName))
			c.sink.Progress(percent(processed, expectedTotal))

			didCopy, stopped := c.copyOne(file.Path, destPath, destFolder, destRoot, ledger)
			if didCopy {
				copied++
			}
			if stopped {
				return copied, time.Since(start)
			}
		}
	}

	return copied, time.Since(start)
}

// copyOne handles a single file through the full dedup/rename/copy sequence.
// It reports whether the file was copied and whether the phase should stop
// because cancellation was observed mid-hash. Per-file errors are logged and
// swallowed so the batch continues.
func (c *Copier) copyOne(srcPath, destPath, destFolder, destRoot string, ledger map[string]string) (didCopy, stopped bool) {
	baseName := filepath.Base(srcPath)

	if _, err := os.Stat(destFolder); os.IsNotExist(err) {
		if err := os.MkdirAll(destFolder, 0755); err != nil {
			c.sink.Log(fmt.Sprintf("Error creating destination folder %q: %v", destFolder, err), events.SeverityError)
			return false, false
		}
		c.sink.Log(fmt.Sprintf("Created destination subfolder: %s", subfolderLabel(destFolder, destRoot)), events.SeverityDetail)
	}

	info, err := os.Stat(srcPath)
	if err != nil || !info.Mode().IsRegular() {
		c.sink.Log(fmt.Sprintf("Skipped (source not found or not a file): %s", baseName), events.SeverityDetail)
		return false, false
	}

	srcHash, err := HashFile(srcPath, c.token)
	if err != nil {
		if errors.Is(err, ErrStopped) {
			return false, true
		}
		c.sink.Log(fmt.Sprintf("Skipped (hashing failed): %s: %v", baseName, err), events.SeverityWarn)
		return false, false
	}

	if prior, ok := ledger[srcHash]; ok {
		c.sink.Log(fmt.Sprintf("Skipped (duplicate content of %q in %q): %s",
			filepath.Base(prior), subfolderLabel(filepath.Dir(prior), destRoot), baseName), events.SeverityDetail)
		return false, false
	}

	renameReason := ""
	if _, err := os.Stat(destPath); err == nil {
		destHash, err := HashFile(destPath, c.token)
		switch {
		case errors.Is(err, ErrStopped):
			return false, true
		case err != nil:
			renameReason = "destination hash failed"
		case destHash == srcHash:
			c.sink.Log(fmt.Sprintf("Skipped (identical already at destination): %s in %q",
				baseName, subfolderLabel(destFolder, destRoot)), events.SeverityDetail)
			ledger[srcHash] = destPath
			return false, false
		default:
			renameReason = "name conflict"
		}
	}

	if renameReason != "" {
		renamed := uniquePath(destPath, c.sink)
		c.sink.Log(fmt.Sprintf("Renamed (%s): %s to %s in %q",
			renameReason, baseName, filepath.Base(renamed), subfolderLabel(destFolder, destRoot)), events.SeverityWarn)
		destPath = renamed
	}

	if err := copyFile(srcPath, destPath); err != nil {
		c.sink.Log(fmt.Sprintf("Error copying %q to %q: %v", baseName, subfolderLabel(destFolder, destRoot), err), events.SeverityError)
		return false, false
	}

	ledger[srcHash] = destPath
	return true, false
}

// HashFile streams the file through SHA-256 in fixed-size chunks, polling
// the token between chunks. Returns ErrStopped when cancelled mid-read.
func HashFile(path string, token *cancel.Token) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for hashing: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, hashChunkSize)
	for {
		if !token.Running() {
			return "", ErrStopped
		}
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read for hashing: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// uniquePath derives a free destination path by suffixing "_1", "_2", ...
// before the extension. After maxRenameAttempts a degraded fallback name is
// returned and a warning logged.
func uniquePath(destPath string, sink events.Sink) string {
	ext := filepath.Ext(destPath)
	base := destPath[:len(destPath)-len(ext)]

	for counter := 1; ; counter++ {
		if counter > maxRenameAttempts {
			sink.Log(fmt.Sprintf("Could not find a unique name for %s after %d attempts",
				filepath.Base(destPath), maxRenameAttempts), events.SeverityWarn)
			return fmt.Sprintf("%s_ MANY_DUPLICATES_%d%s", base, counter, ext)
		}
		candidate := fmt.Sprintf("%s_%d%s", base, counter, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// copyFile copies content and standard metadata (permissions, timestamps)
// from src to dst. The source is never modified or removed.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy content: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}

	// OpenFile's mode is masked by the umask, so restore the exact bits.
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("preserve permissions: %w", err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("preserve timestamps: %w", err)
	}
	return nil
}

// subfolderLabel renders a destination folder relative to the destination
// root for log lines, with a stable label for the root itself.
func subfolderLabel(folder, destRoot string) string {
	if filepath.Clean(folder) == filepath.Clean(destRoot) {
		return "[root]"
	}
	rel, err := filepath.Rel(destRoot, folder)
	if err != nil {
		return folder
	}
	return rel
}

func percent(processed, total int) int {
	if total <= 0 {
		return 0
	}
	return processed * 100 / total
}
