// Package search walks the declared source roots and applies the keyword
// match rule to every file with a target extension.
//
// The walk is iterative (explicit work stack) so pathological directory
// depth cannot exhaust the goroutine stack. Traversal polls the cancellation
// token before each directory and each entry and returns partial results
// promptly when stopped. A directory that cannot be listed is logged and its
// subtree skipped; sibling subtrees continue.
package search

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/harrison/filescout/internal/cancel"
	"github.com/harrison/filescout/internal/events"
	"github.com/harrison/filescout/internal/keyword"
	"github.com/harrison/filescout/internal/pathutil"
)

// Placeholder folder labels for degenerate parent-name resolution.
const (
	// UnknownFolderPlaceholder is used when a matched file's parent folder
	// name resolves to nothing usable (e.g. a bare drive root).
	UnknownFolderPlaceholder = "_UNKNOWN_SOURCE_FOLDER_"
	// FolderErrorPlaceholder is used when parent-name resolution itself
	// fails.
	FolderErrorPlaceholder = "_FOLDERNAME_ERROR_"
)

// FileRef locates one matched file for the copy phase.
type FileRef struct {
	// Path is the file's full source path.
	Path string
	// Number is the version associated with the file.
	Number string
	// LastFolder is the base name of the file's immediate parent folder,
	// or "" when the file sits directly in a source root.
	LastFolder string
}

// Match is the flat record of one search hit, kept for the summary log.
type Match struct {
	Path       string
	Key        string
	Ext        string
	Number     string
	LastFolder string
}

// Group is one keyword group in its final, deterministic consumption order.
type Group struct {
	Key   string
	Files []FileRef
}

// Options configures one search pass.
type Options struct {
	// Roots are the declared source roots, already cleaned by the caller.
	Roots []string
	// Extensions is the closed set of target extensions (with leading dot).
	Extensions []string
	// Params holds the classified keyword sets.
	Params keyword.Params
}

// Run traverses every source root and returns the grouped index plus the
// flat match list. Partial results are returned when the token stops the
// walk mid-flight.
func Run(opts Options, token *cancel.Token, log events.LogFunc) (map[string][]FileRef, []Match) {
	index := make(map[string][]FileRef)
	var matches []Match

	extSet := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extSet[strings.ToLower(ext)] = true
	}

	// LIFO work stack seeded with the roots; order is irrelevant because
	// consumption order is re-sorted afterwards.
	stack := make([]string, len(opts.Roots))
	copy(stack, opts.Roots)

	for len(stack) > 0 {
		if !token.Running() {
			break
		}
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, _, ok := pathutil.ClassifyDir(opts.Roots, dir); !ok {
			log(fmt.Sprintf("Could not determine source root for %s, skipping", dir), events.SeverityWarn)
			continue
		}

		folderVersion := scanFolderVersion(dir, opts.Params)

		entries, err := os.ReadDir(dir)
		if err != nil {
			log(fmt.Sprintf("Error scanning directory %s: %v", dir, err), events.SeverityWarn)
			continue
		}

		for _, entry := range entries {
			if !token.Running() {
				break
			}
			path := filepath.Join(dir, entry.Name())

			// Symlinks are not followed: only real directories descend
			// and only regular files are candidates.
			if entry.IsDir() {
				stack = append(stack, path)
				continue
			}
			if !entry.Type().IsRegular() {
				continue
			}

			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if !extSet[ext] {
				continue
			}

			key, number, ok := opts.Params.MatchFile(entry.Name(), ext, folderVersion)
			if !ok {
				continue
			}

			lastFolder := lastFolderName(path, opts.Roots, log)
			index[key] = append(index[key], FileRef{Path: path, Number: number, LastFolder: lastFolder})
			matches = append(matches, Match{
				Path:       path,
				Key:        key,
				Ext:        ext,
				Number:     number,
				LastFolder: lastFolder,
			})
		}
	}

	return index, matches
}

// scanFolderVersion extracts the scanned directory's version token, but only
// reports it when that version is one of the task's number keywords.
func scanFolderVersion(dir string, params keyword.Params) string {
	base := strings.ToLower(filepath.Base(filepath.Clean(dir)))
	version, ok := pathutil.ExtractFolderVersion(base)
	if !ok || !params.HasNumber(version) {
		return ""
	}
	return version
}

// lastFolderName resolves the destination subfolder component for a matched
// file: "" when the parent is a source root itself, the parent's base name
// otherwise, with documented placeholders for degenerate cases.
func lastFolderName(path string, roots []string, log events.LogFunc) string {
	parent := filepath.Dir(path)
	cleanParent := filepath.Clean(parent)
	for _, root := range roots {
		if cleanParent == filepath.Clean(root) {
			return ""
		}
	}

	abs, err := filepath.Abs(parent)
	if err != nil {
		log(fmt.Sprintf("Error resolving parent folder for %s: %v. Using %q.", path, err, FolderErrorPlaceholder), events.SeverityWarn)
		return FolderErrorPlaceholder
	}

	base := filepath.Base(abs)
	if base == "" || base == "." || base == string(filepath.Separator) {
		log(fmt.Sprintf("Could not determine parent folder name for %s. Using %q.", path, UnknownFolderPlaceholder), events.SeverityWarn)
		return UnknownFolderPlaceholder
	}
	return base
}

// Sorted converts a grouped index into the deterministic consumption order:
// groups sorted by key, files sorted by path within each group. Empty groups
// are dropped.
func Sorted(index map[string][]FileRef) []Group {
	groups := make([]Group, 0, len(index))
	for key, files := range index {
		if len(files) == 0 {
			continue
		}
		sorted := make([]FileRef, len(files))
		copy(sorted, files)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })
		groups = append(groups, Group{Key: key, Files: sorted})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}

// Total counts the files across all groups.
func Total(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += len(g.Files)
	}
	return n
}
