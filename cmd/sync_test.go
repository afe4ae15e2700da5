package cmd

import (
	"bytes"
	"errors"
	"ftpmirror/config"
	"ftpmirror/internal/mirror"
	"os"
	"strings"
	"testing"
	"time"
)

// Integration tests for the sync command
// These tests require a reachable FTP server and are skipped by default.
// Set FTP_INTEGRATION_TEST=true and the FTPMIRROR_* variables to run them.

func TestSyncCommandDryRunIntegration(t *testing.T) {
	if os.Getenv("FTP_INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set FTP_INTEGRATION_TEST=true to run.")
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	localDir := t.TempDir()

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	rootCmd.SetArgs([]string{"sync", "--dry-run", "--local", localDir})
	execErr := rootCmd.Execute()

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	buf.ReadFrom(r)
	output := buf.String()

	if execErr != nil {
		t.Fatalf("Sync command failed: %v", execErr)
	}

	if !strings.Contains(output, "\"dry_run\": true") {
		t.Errorf("Expected dry_run in output, got: %s", output)
	}
	if !strings.Contains(output, "planned_changes") {
		t.Errorf("Expected planned_changes in output, got: %s", output)
	}
}

func TestSyncCommandIntegration(t *testing.T) {
	if os.Getenv("FTP_INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set FTP_INTEGRATION_TEST=true to run.")
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	localDir := t.TempDir()

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	rootCmd.SetArgs([]string{"sync", "--confirm", "--local", localDir})
	execErr := rootCmd.Execute()

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	buf.ReadFrom(r)
	output := buf.String()

	if execErr != nil {
		t.Fatalf("Sync command failed: %v", execErr)
	}

	if !strings.Contains(output, "\"downloaded\"") {
		t.Errorf("Expected downloaded count in output, got: %s", output)
	}
	if !strings.Contains(output, "\"sync_duration\"") {
		t.Errorf("Expected sync_duration in output, got: %s", output)
	}
	if !strings.Contains(output, cfg.Host) {
		t.Errorf("Expected host in output, got: %s", output)
	}
}

func TestComparatorFor(t *testing.T) {
	oldCfg := cfg
	defer func() { cfg = oldCfg }()
	defer syncCmd.Flags().Set("compare", "")

	tests := []struct {
		name     string
		flag     string
		config   string
		wantSize bool
	}{
		{"default is size and time", "", "auto", false},
		{"configured size only", "", "size", true},
		{"flag overrides config", "size", "auto", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg = &config.Config{Compare: tt.config}
			if err := syncCmd.Flags().Set("compare", tt.flag); err != nil {
				t.Fatalf("Failed to set compare flag: %v", err)
			}

			_, sizeOnly := comparatorFor(syncCmd).(mirror.SizeOnlyComparator)
			if sizeOnly != tt.wantSize {
				t.Errorf("comparatorFor() size-only = %v, expected %v", sizeOnly, tt.wantSize)
			}
		})
	}
}

func TestNewMirrorResult(t *testing.T) {
	oldCfg := cfg
	defer func() { cfg = oldCfg }()
	cfg = &config.Config{Host: "ftp.example.com"}

	res := &mirror.Result{
		Downloaded: 3,
		Updated:    1,
		Deleted:    2,
		Skipped:    4,
		Failed:     1,
		Bytes:      2048,
		Duration:   1537 * time.Millisecond,
		Failures: []mirror.Failure{
			{Path: "docs/a.txt", Code: mirror.CodeTransfer, Err: errors.New("short transfer")},
		},
	}

	result := newMirrorResult("/pub", "./mirror", false, res)

	if result.Host != "ftp.example.com" {
		t.Errorf("Expected host ftp.example.com, got %s", result.Host)
	}
	if result.RemoteDir != "/pub" {
		t.Errorf("Expected remote dir /pub, got %s", result.RemoteDir)
	}
	if result.Downloaded != 3 || result.Updated != 1 || result.Deleted != 2 || result.Skipped != 4 {
		t.Errorf("Counters not carried over: %+v", result)
	}
	if result.TotalSizeHuman != "2.0 KB" {
		t.Errorf("Expected 2.0 KB, got %s", result.TotalSizeHuman)
	}
	if result.SyncDuration != "1.537s" {
		t.Errorf("Expected 1.537s, got %s", result.SyncDuration)
	}
	if len(result.Failures) != 1 {
		t.Fatalf("Expected 1 failure, got %d", len(result.Failures))
	}
	if result.Failures[0].Code != "transfer" {
		t.Errorf("Expected failure code transfer, got %s", result.Failures[0].Code)
	}
	if result.Failures[0].Cause != "short transfer" {
		t.Errorf("Expected cause with the error text, got %s", result.Failures[0].Cause)
	}
	if result.DryRun {
		t.Error("Expected dry_run to be false for a real pass")
	}
}

func TestNewMirrorResultDryRun(t *testing.T) {
	oldCfg := cfg
	defer func() { cfg = oldCfg }()
	cfg = &config.Config{Host: "ftp.example.com"}

	res := &mirror.Result{
		Skipped: 2,
		Changes: []mirror.Change{
			{Action: mirror.ActionDownload, Path: "new.txt", Size: 7, Reason: "new file"},
			{Action: mirror.ActionDeleteFile, Path: "old.txt", Size: 3, Reason: "no longer on remote"},
		},
	}

	result := newMirrorResult("/pub", "./mirror", true, res)

	if !result.DryRun {
		t.Error("Expected dry_run to be true")
	}
	if result.PlannedChanges != 2 {
		t.Errorf("Expected 2 planned changes, got %d", result.PlannedChanges)
	}
	if result.Downloaded != 0 || result.Deleted != 0 {
		t.Errorf("Expected zero counters for a dry run: %+v", result)
	}
}
