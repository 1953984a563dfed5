// Package provider holds the plumbing shared by the three provider clients:
// HTTP status classification into the error taxonomy, error-body reading,
// bearer authentication, and normalization of the polymorphic "content"
// response field. The concrete clients live in the subpackages
// transcription, chat, and image.
package provider
