package models

import "time"

type ServerInfo struct {
	Host           string    `json:"host"`
	Port           int       `json:"port"`
	User           string    `json:"user"`
	RemoteDir      string    `json:"remote_dir"`
	ExplicitTLS    bool      `json:"explicit_tls"`
	FileCount      int64     `json:"file_count"`
	DirCount       int64     `json:"dir_count"`
	TotalSizeBytes int64     `json:"total_size_bytes"`
	TotalSizeHuman string    `json:"total_size_human"`
	DeepestPath    string    `json:"deepest_path,omitempty"`
	LastModified   time.Time `json:"last_modified"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	Command   string `json:"command"`
}
