// Package preview turns a rendered scrap document into highlighted HTML and
// serves it locally. Presentation only: the Markdown itself is produced by
// the generator package.
package preview

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/russross/blackfriday/v2"
)

// chromaRenderer is a blackfriday renderer that highlights fenced code
// blocks with chroma and delegates everything else.
type chromaRenderer struct {
	html blackfriday.Renderer
}

func (r *chromaRenderer) RenderNode(w io.Writer, node *blackfriday.Node, entering bool) blackfriday.WalkStatus {
	if node.Type != blackfriday.CodeBlock {
		return r.html.RenderNode(w, node, entering)
	}

	var lang string
	if node.CodeBlockData.Info != nil {
		if fields := strings.Fields(string(node.CodeBlockData.Info)); len(fields) > 0 {
			lang = strings.TrimPrefix(fields[0], "language-")
		}
	}

	lexer := lexers.Get(lang)
	if lexer == nil || lang == "" {
		if analysed := lexers.Analyse(string(node.Literal)); analysed != nil {
			lexer = analysed
		}
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}

	style := styles.Get("github")
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, string(node.Literal))
	if err != nil {
		return r.html.RenderNode(w, node, entering)
	}
	// Inline styles keep the page self-contained, no stylesheet to serve.
	formatter := chromahtml.New(chromahtml.WithClasses(false))

	buf := new(bytes.Buffer)
	if err := formatter.Format(buf, style, iterator); err != nil {
		return r.html.RenderNode(w, node, entering)
	}
	w.Write(buf.Bytes())
	return blackfriday.GoToNext
}

func (r *chromaRenderer) RenderHeader(w io.Writer, ast *blackfriday.Node) {
	r.html.RenderHeader(w, ast)
}

func (r *chromaRenderer) RenderFooter(w io.Writer, ast *blackfriday.Node) {
	r.html.RenderFooter(w, ast)
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { max-width: 48rem; margin: 2rem auto; padding: 0 1rem; font-family: sans-serif; line-height: 1.6; }
img { max-width: 100%; }
blockquote { border-left: 3px solid #ccc; margin-left: 0; padding-left: 1rem; color: #555; }
hr { border: 0; border-top: 1px solid #ddd; margin: 2rem 0; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// RenderHTML converts scrap Markdown into a standalone HTML page. Inline
// HTML (including rewritten <img> tags) passes through.
func RenderHTML(title, markdown string) ([]byte, error) {
	renderer := &chromaRenderer{html: blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.UseXHTML,
	})}
	extensions := blackfriday.CommonExtensions | blackfriday.AutoHeadingIDs
	body := blackfriday.Run([]byte(markdown), blackfriday.WithRenderer(renderer), blackfriday.WithExtensions(extensions))

	var out bytes.Buffer
	err := pageTemplate.Execute(&out, struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: template.HTML(body)})
	if err != nil {
		return nil, fmt.Errorf("failed to build preview page: %w", err)
	}
	return out.Bytes(), nil
}

// Serve renders the document once and serves it on addr until the process
// is interrupted.
func Serve(addr, title, markdown string) error {
	page, err := RenderHTML(title, markdown)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	})

	slog.Info("serving preview", "addr", addr)
	return http.ListenAndServe(addr, mux)
}
