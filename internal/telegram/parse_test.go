package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSubject(t *testing.T) {
	subject, ok := ParseSubject("Subject: The rise of local news")
	assert.True(t, ok)
	assert.Equal(t, "The rise of local news", subject)
}

func TestParseSubjectCaseInsensitive(t *testing.T) {
	subject, ok := ParseSubject("subject:   spaced out   ")
	assert.True(t, ok)
	assert.Equal(t, "spaced out", subject)
}

func TestParseSubjectRejects(t *testing.T) {
	for _, text := range []string{"", "Subject:", "Subject:   ", "hello there", "Sub: thing"} {
		_, ok := ParseSubject(text)
		assert.False(t, ok, "expected %q to be rejected", text)
	}
}

func TestParseAdjustment(t *testing.T) {
	postID, note, ok := ParseAdjustment("Adjust:abc-123: make it shorter")
	assert.True(t, ok)
	assert.Equal(t, "abc-123", postID)
	assert.Equal(t, "make it shorter", note)
}

func TestParseAdjustmentNoteWithColons(t *testing.T) {
	postID, note, ok := ParseAdjustment("adjust:abc: note: with colons")
	assert.True(t, ok)
	assert.Equal(t, "abc", postID)
	assert.Equal(t, "note: with colons", note)
}

func TestParseAdjustmentRejects(t *testing.T) {
	for _, text := range []string{"", "Adjust:", "Adjust:abc", "Adjust:abc:", "Adjust:: note"} {
		_, _, ok := ParseAdjustment(text)
		assert.False(t, ok, "expected %q to be rejected", text)
	}
}

func TestParseCallback(t *testing.T) {
	action, postID, ok := ParseCallback("approve:abc-123")
	assert.True(t, ok)
	assert.Equal(t, "approve", action)
	assert.Equal(t, "abc-123", postID)
}

func TestParseCallbackRejects(t *testing.T) {
	for _, data := range []string{"", "approve", ":abc", "approve:"} {
		_, _, ok := ParseCallback(data)
		assert.False(t, ok, "expected %q to be rejected", data)
	}
}
