package editor

import (
	"crypto/sha256"
	"os"
	"time"
)

// file holds information about the disk counterpart of a buffer.
type file struct {
	path   string
	mtime  time.Time // of file when last read/written
	sha256 [sha256.Size]byte
}

// stamp records the state of the file after a read or write of content.
func (f *file) stamp(content []byte) {
	f.sha256 = sha256.Sum256(content)
	if info, err := os.Stat(f.path); err == nil {
		f.mtime = info.ModTime()
	}
}

// changedOnDisk reports whether the file was modified by someone else since it was stamped.
func (f *file) changedOnDisk() bool {
	if f.mtime.IsZero() {
		return false
	}
	info, err := os.Stat(f.path)
	if err != nil {
		return false
	}
	if info.ModTime().Equal(f.mtime) {
		return false
	}
	content, err := os.ReadFile(f.path)
	if err != nil {
		return false
	}
	return sha256.Sum256(content) != f.sha256
}
