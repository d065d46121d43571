//go:build unix

package ingestion

import (
	"os"
	"syscall"
)

// fileInode returns the inode of info, used to detect log rotation.
func fileInode(info os.FileInfo) int64 {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return int64(stat.Ino)
	}
	return 0
}
