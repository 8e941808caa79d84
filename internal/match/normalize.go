package match

import (
	"strings"

	"golang.org/x/text/cases"
)

// releaseNoise lists tokens that vary between otherwise identical releases:
// resolutions, sources, codecs, and repack markers. They are stripped from
// normalized names so "X.1080p.BluRay" and "X 2160p WEB" still share an
// identity when the title matches.
var releaseNoise = map[string]struct{}{
	"480p": {}, "576p": {}, "720p": {}, "1080p": {}, "1080i": {}, "2160p": {}, "4k": {},
	"bluray": {}, "brrip": {}, "bdrip": {}, "dvdrip": {}, "webrip": {}, "webdl": {}, "web": {}, "dl": {}, "hdtv": {}, "remux": {},
	"x264": {}, "x265": {}, "h264": {}, "h265": {}, "hevc": {}, "avc": {}, "av1": {}, "xvid": {},
	"dts": {}, "ac3": {}, "eac3": {}, "aac": {}, "atmos": {}, "truehd": {},
	"proper": {}, "repack": {}, "internal": {}, "limited": {}, "extended": {}, "uncut": {}, "hdr": {}, "hdr10": {}, "dv": {},
}

// NormalizeName folds case, removes separators, and strips release noise so
// names recorded at submission and completion time compare stably.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	folded := cases.Fold().String(name)
	replacer := strings.NewReplacer(".", " ", "_", " ", "-", " ", "[", " ", "]", " ", "(", " ", ")", " ")
	fields := strings.Fields(replacer.Replace(folded))

	kept := fields[:0]
	for _, field := range fields {
		if _, noisy := releaseNoise[field]; noisy {
			continue
		}
		kept = append(kept, field)
	}
	if len(kept) == 0 {
		// Nothing but noise tokens; fall back to the folded whole.
		return strings.Join(fields, " ")
	}
	return strings.Join(kept, " ")
}

// Candidate is a submission seen by the pre-queue handler.
type Candidate struct {
	DisplayName  string
	DuplicateKey string
	Category     string
	JobID        string
}

// Identity builds the matching identity for a candidate. The duplicate key
// dominates when enabled and present; otherwise the normalized name is used.
// The prefix keeps the two key spaces from colliding.
func Identity(candidate Candidate, useDuplicateKey bool) string {
	if useDuplicateKey && strings.TrimSpace(candidate.DuplicateKey) != "" {
		return "dk:" + strings.TrimSpace(candidate.DuplicateKey)
	}
	return "nm:" + NormalizeName(candidate.DisplayName)
}
