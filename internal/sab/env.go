package sab

import (
	"os"
	"strings"
)

// Environment variable names set by SABnzbd for hook scripts.
const (
	EnvFinalName    = "SAB_FINAL_NAME"
	EnvFilename     = "SAB_FILENAME"
	EnvCategory     = "SAB_CAT"
	EnvDuplicateKey = "SAB_DUPLICATE_KEY"
	EnvJobID        = "SAB_NZO_ID"
	EnvPostStatus   = "SAB_PP_STATUS"
	EnvCompleteDir  = "SAB_COMPLETE_DIR"
)

// Env is a snapshot of the job fields SABnzbd passes to hook scripts.
type Env struct {
	// FinalName is the job name after any renaming, the primary display name.
	FinalName string
	// Filename is the original NZB filename.
	Filename string
	// Category is the job's category, "*" when none was assigned.
	Category string
	// DuplicateKey is the host's series/title key, empty when unavailable.
	DuplicateKey string
	// JobID is the host's stable job identifier (nzo id).
	JobID string
	// PostStatus is the post-processing result code; "0" means success.
	PostStatus string
	// CompleteDir is the final download directory.
	CompleteDir string
}

// ReadEnv snapshots the SAB_* variables of the current process.
func ReadEnv() Env {
	return Env{
		FinalName:    strings.TrimSpace(os.Getenv(EnvFinalName)),
		Filename:     strings.TrimSpace(os.Getenv(EnvFilename)),
		Category:     normalizeCategory(os.Getenv(EnvCategory)),
		DuplicateKey: strings.TrimSpace(os.Getenv(EnvDuplicateKey)),
		JobID:        strings.TrimSpace(os.Getenv(EnvJobID)),
		PostStatus:   strings.TrimSpace(os.Getenv(EnvPostStatus)),
		CompleteDir:  strings.TrimSpace(os.Getenv(EnvCompleteDir)),
	}
}

// Name returns the best display name for the job.
func (e Env) Name() string {
	if e.FinalName != "" {
		return e.FinalName
	}
	return e.Filename
}

// Succeeded reports whether post-processing finished cleanly.
func (e Env) Succeeded() bool {
	return e.PostStatus == "0"
}

// normalizeCategory maps the host's "no category" marker to empty.
func normalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "*" || strings.EqualFold(category, "none") {
		return ""
	}
	return category
}

// AllVars returns every SAB_* variable in the environment, for raw-data
// notifications and debug logging.
func AllVars() map[string]string {
	vars := make(map[string]string)
	for _, pair := range os.Environ() {
		if !strings.HasPrefix(pair, "SAB_") {
			continue
		}
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		vars[key] = value
	}
	return vars
}
