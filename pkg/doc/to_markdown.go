package doc

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

var (
	imagePattern = regexp.MustCompile(`<ac:image[^>]*><ri:url ri:value="([^"]*)" /></ac:image>`)
	macroPattern = regexp.MustCompile(`<ac:structured-macro[^>]*ac:name="([^"]*)"[^>]*>.*?</ac:structured-macro>`)
)

// RenderMarkdown converts d to markdown. Confluence macros become
// bracketed placeholders such as [TOC].
func RenderMarkdown(d *Document) (string, error) {
	html := RenderStorage(d)
	if html == "" {
		return "", nil
	}
	html = imagePattern.ReplaceAllString(html, `<img src="$1" />`)
	html = macroPattern.ReplaceAllStringFunc(html, func(match string) string {
		name := macroPattern.FindStringSubmatch(match)[1]
		return "<p>[" + strings.ToUpper(name) + "]</p>"
	})

	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(markdown), nil
}
