package sab

import (
	"fmt"
	"io"
	"strings"
)

// responseLines is the number of stdout lines SABnzbd reads from a pre-queue
// script: accept flag, then overrides for name, pp, category, script,
// priority, and group. Empty override lines keep the job's values.
const responseLines = 7

// WriteAccept emits the pre-queue response that lets the job through
// unchanged. An empty first line means accept with defaults.
func WriteAccept(w io.Writer) error {
	return writeResponse(w, "")
}

// WriteReject emits the pre-queue response that refuses the job.
func WriteReject(w io.Writer) error {
	return writeResponse(w, "0")
}

func writeResponse(w io.Writer, decision string) error {
	var builder strings.Builder
	builder.WriteString(decision)
	for i := 0; i < responseLines; i++ {
		builder.WriteString("\n")
	}
	if _, err := io.WriteString(w, builder.String()); err != nil {
		return fmt.Errorf("write pre-queue response: %w", err)
	}
	return nil
}
