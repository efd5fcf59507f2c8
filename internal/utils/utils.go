package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidIdentifier is returned when an input yields an empty slug.
var ErrInvalidIdentifier = errors.New("invalid scrap URL or slug")

const scrapsMarker = "/scraps/"

// ExtractSlug normalizes a scrap URL or bare slug into the canonical
// identifier. If the input contains a "/scraps/" path segment the slug is
// everything after it, otherwise the trimmed input itself is the slug;
// trailing slashes are stripped from the result. The marker is located
// before any slash stripping so that a URL ending in the bare marker still
// yields an empty slug and is rejected.
func ExtractSlug(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	slug := trimmed
	if pos := strings.LastIndex(trimmed, scrapsMarker); pos >= 0 {
		slug = trimmed[pos+len(scrapsMarker):]
	}
	slug = strings.TrimRight(slug, "/")
	if slug == "" {
		return "", ErrInvalidIdentifier
	}
	return slug, nil
}

var imageEmbedRe = regexp.MustCompile(`!\[\]\(\s*([^)\s]+?)(?:\s+=(\d+)x)?\s*\)`)

// RewriteImageEmbeds rewrites Zenn image-embed directives into HTML image
// tags in a single global pass. "![](url =200x)" becomes
// `<img src="url" width="200">`; without the width suffix the width
// attribute is omitted. All other text passes through unchanged.
func RewriteImageEmbeds(body string) string {
	return imageEmbedRe.ReplaceAllStringFunc(body, func(m string) string {
		groups := imageEmbedRe.FindStringSubmatch(m)
		src, width := groups[1], groups[2]
		if width == "" {
			return fmt.Sprintf("<img src=%q>", src)
		}
		return fmt.Sprintf("<img src=%q width=%q>", src, width)
	})
}

// Slugify converts a string to a filename-friendly slug
func Slugify(text string) string {
	slug := strings.ToLower(text)
	slug = strings.ReplaceAll(slug, " ", "-")

	re := regexp.MustCompile(`[^a-z0-9\-]`)
	slug = re.ReplaceAllString(slug, "")

	re = regexp.MustCompile(`-+`)
	slug = re.ReplaceAllString(slug, "-")

	return strings.Trim(slug, "-")
}
