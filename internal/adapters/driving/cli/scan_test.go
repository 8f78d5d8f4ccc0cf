package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanCmd_Use(t *testing.T) {
	assert.Equal(t, "scan", scanCmd.Use)
}

func TestScanCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"scan"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Scanning data directory")
	assert.Contains(t, buf.String(), "indexed  budget-report.xlsx")
	assert.Contains(t, buf.String(), "Indexed 1, skipped 1, failed 0.")
	// Skipped files stay out of the per-file listing.
	assert.NotContains(t, buf.String(), "vacation-policy.pdf")
}

func TestScanCmd_ServiceNotConfigured(t *testing.T) {
	oldService := ingestService
	ingestService = nil
	defer func() {
		ingestService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"scan"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ingest service not configured")
}

func TestScanCmd_ServiceError(t *testing.T) {
	oldService := ingestService
	ingestService = &mockIngestServiceError{}
	defer func() {
		ingestService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"scan"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "scan failed")
}
