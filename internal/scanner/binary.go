package scanner

import (
	"path/filepath"
	"strings"
)

// binaryExtensions is adapted from the teacher's BinaryDetector extension
// database (internal/indexing/binary_detector.go), trimmed to the
// extensions relevant to a source-code search tool.
var binaryExtensions = map[string]bool{
	".woff": true, ".woff2": true, ".ttf": true, ".otf": true, ".eot": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".ico": true, ".webp": true, ".tiff": true, ".tif": true,
	".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".xz": true,
	".7z": true, ".rar": true, ".jar": true, ".war": true, ".ear": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".a": true,
	".o": true, ".obj": true, ".bin": true,
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true, ".wmv": true,
	".flv": true, ".wav": true, ".flac": true, ".ogg": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true,
	".db": true, ".sqlite": true, ".sqlite3": true,
	".pyc": true, ".pyo": true, ".class": true, ".pickle": true, ".pkl": true,
}

// isBinaryByExtension is the fast, I/O-free pre-filter.
func isBinaryByExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	if strings.HasSuffix(path, ".min.js") || strings.HasSuffix(path, ".min.css") {
		return false
	}
	return binaryExtensions[ext]
}

// isBinaryContent applies spec.md §4.1's heuristic directly: a NUL byte
// anywhere in the first 8KiB marks the file as binary. Simpler than the
// teacher's multi-signature + non-printable-ratio heuristic, since the
// spec pins down one exact rule rather than leaving it to judgment.
func isBinaryContent(sample []byte) bool {
	const probeLen = 8192
	if len(sample) > probeLen {
		sample = sample[:probeLen]
	}
	for _, b := range sample {
		if b == 0 {
			return true
		}
	}
	return false
}
