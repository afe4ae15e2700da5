package models

import "time"

type ArchiveInfo struct {
	ArchivePath      string    `json:"archive_path"`
	MirrorDir        string    `json:"mirror_dir"`
	FileCount        int       `json:"file_count"`
	OriginalSize     int64     `json:"original_size"`
	CompressedSize   int64     `json:"compressed_size"`
	CompressionRatio float64   `json:"compression_ratio"`
	CreatedAt        time.Time `json:"created_at"`
}
