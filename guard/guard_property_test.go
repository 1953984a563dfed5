package guard

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// For any text and any positive ceiling, ClampPrompt returns a prefix of the
// input, never exceeds the ceiling, and is idempotent.
func TestProperty_ClampPrompt(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.String().Draw(rt, "text")
		maxChars := rapid.IntRange(1, 2000).Draw(rt, "maxChars")

		clamped := ClampPrompt(text, maxChars)

		if n := len([]rune(clamped)); n > maxChars {
			rt.Fatalf("clamped length %d exceeds ceiling %d", n, maxChars)
		}
		if !strings.HasPrefix(text, clamped) {
			rt.Fatalf("clamped value is not a prefix of the input")
		}
		if again := ClampPrompt(clamped, maxChars); again != clamped {
			rt.Fatalf("clamp is not idempotent: %q != %q", again, clamped)
		}
		if len([]rune(text)) <= maxChars && clamped != text {
			rt.Fatalf("short input was modified")
		}
	})
}

// For any payload size and ceiling, CheckAudio rejects exactly the payloads
// above ceiling*1MiB and accepts the rest.
func TestProperty_CheckAudio(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		size := rapid.IntRange(0, 4*1024*1024).Draw(rt, "size")
		maxMB := int64(rapid.IntRange(1, 3).Draw(rt, "maxMB"))

		err := CheckAudio(make([]byte, size), maxMB)

		over := int64(size) > maxMB*1024*1024
		if over && err == nil {
			rt.Fatalf("oversize payload (%d bytes, limit %dMB) accepted", size, maxMB)
		}
		if !over && err != nil {
			rt.Fatalf("in-limit payload (%d bytes, limit %dMB) rejected: %v", size, maxMB, err)
		}
	})
}
