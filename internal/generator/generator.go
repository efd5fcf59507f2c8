// Package generator serializes a fetched scrap into Markdown. Rendering is a
// pure function of the scrap, the original input, and the options: the same
// arguments always produce byte-identical output.
package generator

import (
	"fmt"
	"net/url"
	"strings"

	"scrapmd/entities"
	"scrapmd/internal/utils"
)

const platformURL = "https://zenn.dev"

// Style selects one of the two supported presentation policies. They produce
// different documents and are never mixed within one run.
type Style string

const (
	// StyleFlat renders every comment as a flat section, with a backlink
	// under the title and a horizontal rule between top-level threads.
	StyleFlat Style = "flat"
	// StyleQuote nests replies under increasing blockquote depth, matching
	// the older output format. No backlink, no separators.
	StyleQuote Style = "quote"
)

// Options configures a Generator.
type Options struct {
	Style Style
	// SkipHeader drops the bold author/timestamp line above every comment,
	// at every depth.
	SkipHeader bool
}

// Generator renders scraps to Markdown.
type Generator struct {
	opts Options
}

// NewGenerator creates a Generator. An empty style defaults to StyleFlat.
func NewGenerator(opts Options) *Generator {
	if opts.Style == "" {
		opts.Style = StyleFlat
	}
	return &Generator{opts: opts}
}

// Render produces the full Markdown document for scrap. input is the URL or
// slug the user originally supplied, used for the backlink in flat style.
func (g *Generator) Render(scrap *entities.Scrap, input string) string {
	var out strings.Builder
	fmt.Fprintf(&out, "# %s\n\n", scrap.Title)

	switch g.opts.Style {
	case StyleQuote:
		g.renderQuoted(&out, scrap.Comments, 0)
	default:
		text, target := backlink(input)
		fmt.Fprintf(&out, "[%s](%s)\n\n", text, target)
		g.renderFlat(&out, scrap.Comments, true)
	}
	return out.String()
}

// renderFlat walks the forest depth-first, emitting each comment as its own
// section. Horizontal rules separate top-level threads only.
func (g *Generator) renderFlat(out *strings.Builder, comments []entities.Comment, topLevel bool) {
	for i, comment := range comments {
		if !g.opts.SkipHeader {
			fmt.Fprintf(out, "**%s (%s)**\n\n", comment.Author, comment.CreatedAt)
		}
		out.WriteString(utils.RewriteImageEmbeds(comment.Body))
		out.WriteString("\n\n")
		g.renderFlat(out, comment.Children, false)

		if topLevel && !g.opts.SkipHeader && i < len(comments)-1 {
			out.WriteString("---\n\n")
		}
	}
}

// renderQuoted prefixes each nesting level with one more "> ". The blank
// line after a header is left unprefixed, matching the original format.
func (g *Generator) renderQuoted(out *strings.Builder, comments []entities.Comment, depth int) {
	prefix := strings.Repeat("> ", depth)
	for _, comment := range comments {
		if !g.opts.SkipHeader {
			fmt.Fprintf(out, "%s**%s (%s)**\n\n", prefix, comment.Author, comment.CreatedAt)
		}
		// An empty body contributes no lines at all, only the closing blank.
		if body := utils.RewriteImageEmbeds(comment.Body); body != "" {
			for _, line := range strings.Split(strings.TrimSuffix(body, "\n"), "\n") {
				out.WriteString(prefix)
				out.WriteString(line)
				out.WriteString("\n")
			}
		}
		out.WriteString("\n")
		if len(comment.Children) > 0 {
			g.renderQuoted(out, comment.Children, depth+1)
		}
	}
}

// backlink derives the link text (platform-relative path) and target (full
// URL) from the original input. Anything that is not an absolute URL gets
// the canonical scrap URL built from its extracted slug.
func backlink(input string) (text, target string) {
	trimmed := strings.TrimRight(strings.TrimSpace(input), "/")
	if u, err := url.Parse(trimmed); err == nil && u.IsAbs() && u.Host != "" {
		return u.Path, trimmed
	}
	slug := trimmed
	if s, err := utils.ExtractSlug(trimmed); err == nil {
		slug = s
	}
	return "/scraps/" + slug, platformURL + "/scraps/" + slug
}

// Filename derives the conventional output filename from the scrap title and
// slug, e.g. "test-title-barbaz.md".
func Filename(title, slug string) string {
	if s := utils.Slugify(title); s != "" {
		return s + "-" + slug + ".md"
	}
	return slug + ".md"
}
