package utils

import (
	"regexp"
	"strings"
)

// unsafeFilenameChars matches everything outside the conservative character
// set allowed in stored filenames.
var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFilename reduces a client-supplied filename to a form that is safe
// to join onto the upload directory.  Path separators become underscores so
// traversal sequences like "../../etc/passwd" collapse into a flat name, any
// character outside [A-Za-z0-9_.-] is dropped, and leading/trailing dots and
// underscores are trimmed.  An empty string is returned when nothing safe
// remains; callers must treat that as a rejected upload.
func SanitizeFilename(name string) string {
	// Windows and Unix separators both flatten to spaces first, then all
	// whitespace runs are joined by single underscores.
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")
	return name
}

// FileExtension returns the lower-cased extension of name without the dot,
// or "" when the name has no extension.
func FileExtension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}
