package provider

import "encoding/json"

// contentShape tags which of the wire encodings a content field arrived in.
type contentShape int

const (
	contentNone contentShape = iota
	contentString
	contentSegments
)

// ContentSegment is one element of the segmented content encoding.
type ContentSegment struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// MessageContent models the chat provider's polymorphic "content" field,
// which arrives either as a bare string or as an ordered list of typed
// segments. Decoding never fails on shape mismatch; unrecognized shapes
// degrade to the empty content, which callers must treat as a normalization
// failure rather than a valid empty answer.
type MessageContent struct {
	shape    contentShape
	str      string
	segments []ContentSegment
}

// UnmarshalJSON accepts a string, a segment list, or null.
func (c *MessageContent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.shape = contentString
		c.str = s
		return nil
	}

	var segs []ContentSegment
	if err := json.Unmarshal(data, &segs); err == nil {
		c.shape = contentSegments
		c.segments = segs
		return nil
	}

	*c = MessageContent{}
	return nil
}

// MarshalJSON re-encodes the content in the shape it arrived in.
func (c MessageContent) MarshalJSON() ([]byte, error) {
	switch c.shape {
	case contentString:
		return json.Marshal(c.str)
	case contentSegments:
		return json.Marshal(c.segments)
	default:
		return []byte("null"), nil
	}
}

// Text collapses the content to plain text. A bare string is returned as is;
// for segments, the first segment of type "text" contributes. An empty
// string means no text-bearing node exists.
func (c MessageContent) Text() string {
	switch c.shape {
	case contentString:
		return c.str
	case contentSegments:
		for _, seg := range c.segments {
			if seg.Type == "text" {
				return seg.Text
			}
		}
		return ""
	default:
		return ""
	}
}

// StringContent builds a bare-string content value, used when composing
// requests and in tests.
func StringContent(s string) MessageContent {
	return MessageContent{shape: contentString, str: s}
}

// SegmentContent builds a segmented content value.
func SegmentContent(segs ...ContentSegment) MessageContent {
	return MessageContent{shape: contentSegments, segments: segs}
}
