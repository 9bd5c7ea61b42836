// Package pathutil decides which declared source root owns a directory and
// extracts folder-embedded version numbers.
//
// Ownership drives destination placement: a file sitting directly in a source
// root is copied straight under the destination root, while a file under a
// subfolder is copied under destination/<parent-folder-name>.
package pathutil

import (
	"path/filepath"
	"regexp"
	"strings"
)

// folderVersionRE matches folder names that start with a dotted-triple
// version token, optionally followed by an underscore and arbitrary suffix,
// e.g. "5.4.4" or "5.4.4_report".
var folderVersionRE = regexp.MustCompile(`^(\d+\.\d+\.\d+)(?:_.*)?$`)

// ClassifyDir determines which source root owns dir. It returns the owning
// root, whether dir is the root itself, and false when no declared root owns
// the directory. Both sides are cleaned before comparison so trailing
// separators and redundant elements do not defeat the match.
func ClassifyDir(sourceRoots []string, dir string) (ownerRoot string, isRoot bool, ok bool) {
	cleanDir := filepath.Clean(dir)
	for _, root := range sourceRoots {
		cleanRoot := filepath.Clean(root)
		if cleanDir == cleanRoot {
			return root, true, true
		}
		if strings.HasPrefix(cleanDir, cleanRoot+string(filepath.Separator)) {
			return root, false, true
		}
	}
	return "", false, false
}

// ExtractFolderVersion returns the dotted-triple version token a folder name
// starts with, or false when the name carries none. Only the leading token is
// returned; a "_suffix" tail is ignored.
func ExtractFolderVersion(folderName string) (string, bool) {
	m := folderVersionRE.FindStringSubmatch(folderName)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsVersionToken reports whether s as a whole is a valid folder version
// token (dotted triple with optional underscore suffix). Used to classify
// raw keywords as number keywords.
func IsVersionToken(s string) bool {
	return folderVersionRE.MatchString(s)
}
