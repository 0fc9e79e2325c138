package wordpress

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func paragraphs(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString("<p>para</p>")
	}
	return b.String()
}

func TestDistributeImagesNoMedia(t *testing.T) {
	html := paragraphs(3)
	assert.Equal(t, html, distributeImages(html, nil))
}

func TestDistributeImagesSingleImageLandsMidway(t *testing.T) {
	html := paragraphs(4)
	media := []UploadedMedia{{ID: 1, URL: "http://site/a.png"}}

	result := distributeImages(html, media)

	// One image over four paragraphs goes after paragraph index 2.
	parts := strings.SplitAfter(result, "</p>")
	assert.Contains(t, parts[2], "</p>")
	assert.Contains(t, result, "wp-image-1")
	idx := strings.Index(result, "<figure")
	before := strings.Count(result[:idx], "</p>")
	assert.Equal(t, 3, before)
}

func TestDistributeImagesThreeImagesSpread(t *testing.T) {
	html := paragraphs(8)
	media := []UploadedMedia{
		{ID: 1, URL: "http://site/a.png"},
		{ID: 2, URL: "http://site/b.png"},
		{ID: 3, URL: "http://site/c.png"},
	}

	result := distributeImages(html, media)

	// Images keep their order and are spaced through the body.
	idxA := strings.Index(result, "wp-image-1")
	idxB := strings.Index(result, "wp-image-2")
	idxC := strings.Index(result, "wp-image-3")
	assert.True(t, idxA < idxB && idxB < idxC)

	for _, idx := range []int{idxA, idxB, idxC} {
		before := strings.Count(result[:idx], "</p>")
		assert.Greater(t, before, 0)
		assert.LessOrEqual(t, before, 8)
	}
}

func TestDistributeImagesMoreImagesThanParagraphs(t *testing.T) {
	html := paragraphs(1)
	media := []UploadedMedia{
		{ID: 1, URL: "http://site/a.png"},
		{ID: 2, URL: "http://site/b.png"},
		{ID: 3, URL: "http://site/c.png"},
	}

	result := distributeImages(html, media)

	// All images clamp to the single paragraph, none are dropped.
	assert.Contains(t, result, "wp-image-1")
	assert.Contains(t, result, "wp-image-2")
	assert.Contains(t, result, "wp-image-3")
	assert.Equal(t, 1, strings.Count(result, "</p>"))
}

func TestFilenameFromRef(t *testing.T) {
	assert.Equal(t, "img.png", filenameFromRef("/var/uploads/img.png"))
	assert.Equal(t, "img.png", filenameFromRef("generated/img.png"))
	assert.Equal(t, "img.png", filenameFromRef("img.png"))
}
