package resolvers

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// binaryExtensions is the fixed deny list: images, executables, archives,
// office documents, and databases.
var binaryExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".ico": true, ".webp": true, ".tiff": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".bin": true,
	".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".7z": true,
	".rar": true, ".xz": true, ".zst": true,
	".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true, ".pdf": true,
	".db": true, ".sqlite": true, ".sqlite3": true,
	".woff": true, ".woff2": true, ".ttf": true, ".otf": true, ".eot": true,
	".mp3": true, ".mp4": true, ".mov": true, ".avi": true, ".mkv": true,
	".wav": true, ".flac": true,
	".pyc": true, ".class": true, ".o": true, ".a": true,
}

const binaryPrefixSize = 8 * 1024

// IsBinaryByNameFast reports whether path is binary using only its
// basename/extension: the ".DS_Store" special case and the fixed extension
// deny list. It never touches the filesystem, so it is safe to use as a
// fast path before the content check.
func IsBinaryByNameFast(path string) bool {
	base := filepath.Base(path)
	if base == ".DS_Store" {
		return true
	}
	ext := strings.ToLower(filepath.Ext(base))
	return binaryExtensions[ext]
}

// IsBinaryContent reads up to the first 8 KiB of path and reports whether
// it contains a NUL byte, the on-demand check used when the extension
// alone is inconclusive.
func IsBinaryContent(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, binaryPrefixSize)
	n, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	return bytes.IndexByte(buf[:n], 0) != -1, nil
}

// IsBinary combines the fast extension-based check with the on-demand
// content check: the name-based check runs first, and the content check
// runs only when it is inconclusive.
func IsBinary(path string) bool {
	if IsBinaryByNameFast(path) {
		return true
	}
	binary, err := IsBinaryContent(path)
	if err != nil {
		return false
	}
	return binary
}
