//go:build !unix

package ingestion

import "os"

// fileInode is unavailable here; rotation is detected from size only.
func fileInode(info os.FileInfo) int64 {
	return 0
}
