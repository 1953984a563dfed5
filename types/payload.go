package types

import "strings"

// DefaultAudioFilename is used when the caller uploads audio without a name.
const DefaultAudioFilename = "audio.m4a"

// AudioPayload carries one uploaded audio recording through the transcription
// pipeline. It is request scoped and never persisted by this layer.
type AudioPayload struct {
	// Data is the raw audio bytes as received from the caller.
	Data []byte

	// Filename is the original upload name. Normalized via EffectiveFilename.
	Filename string

	// Language is an optional BCP-47-ish hint (e.g. "ko") forwarded to the
	// transcription provider.
	Language string
}

// EffectiveFilename returns the upload name, falling back to a synthetic
// default when the caller supplied none.
func (p AudioPayload) EffectiveFilename() string {
	if strings.TrimSpace(p.Filename) == "" {
		return DefaultAudioFilename
	}
	return p.Filename
}

// TextPrompt is a plain-text input to the chat or image stages together with
// its source language tag.
type TextPrompt struct {
	Text     string
	Language string
}
