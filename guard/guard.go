// Package guard validates request payload constraints before any network call
// is made. Oversized audio is a hard caller error (the upload is costly and
// irrecoverable), while an overlong image prompt is silently truncated because
// downstream providers reject overlong prompts outright and truncation
// preserves partial intent.
package guard

import (
	"fmt"
	"math"
	"strconv"

	"github.com/record-crew/recordai/types"
)

const bytesPerMB = 1024 * 1024

// CheckAudio verifies the audio payload against the configured ceiling.
// Returns nil when the payload fits, or a validation error carrying the
// actual size rounded to two decimals in megabytes.
func CheckAudio(data []byte, maxMB int64) error {
	limitBytes := maxMB * bytesPerMB
	if int64(len(data)) <= limitBytes {
		return nil
	}
	return types.NewError(types.ErrValidation,
		fmt.Sprintf("파일이 너무 큽니다. (%sMB) 제한: %dMB", formatMB(SizeMB(len(data))), maxMB))
}

// SizeMB converts a byte count into megabytes rounded to two decimals.
func SizeMB(n int) float64 {
	return math.Round(float64(n)/bytesPerMB*100) / 100
}

func formatMB(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ClampPrompt truncates text to its first maxChars characters. Pure and
// total: already-short input comes back unchanged, and clamping twice is the
// same as clamping once.
func ClampPrompt(text string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars])
}
