// Package render turns generated drafts into an HTML preview suitable for
// pasting into an email tool.
package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"

	"ai_email_copywriter/generator"
)

// Preview is a rendered draft.
type Preview struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

var md = goldmark.New(goldmark.WithRendererOptions(html.WithHardWraps()))

// Email converts the draft body to HTML. The [IMAGEN: name] marker of an
// uploaded image becomes an inline image; any other marker is kept as a
// visible note so the user can place an image by hand.
func Email(email generator.GeneratedEmail, img *generator.ImageData) (Preview, error) {
	body := replaceImagePlaceholders(email.Body, img)
	contentHTML, err := mdToHTML(body)
	if err != nil {
		return Preview{}, err
	}
	return Preview{
		Subject: email.Subject,
		HTML:    convertHeadingsForEmail(contentHTML),
	}, nil
}

// PlainText is the copy-all form: subject line, blank line, body.
func PlainText(email generator.GeneratedEmail) string {
	return fmt.Sprintf("Asunto: %s\n\n%s", email.Subject, email.Body)
}

func mdToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var placeholderPattern = regexp.MustCompile(`\[IMAGEN:\s*([^\]]+?)\s*\]`)

func replaceImagePlaceholders(body string, img *generator.ImageData) string {
	return placeholderPattern.ReplaceAllStringFunc(body, func(token string) string {
		m := placeholderPattern.FindStringSubmatch(token)
		if len(m) != 2 {
			return token
		}
		name := m[1]
		if img != nil && img.Name == name && img.Data != "" {
			return fmt.Sprintf("![%s](%s)", altText(name), dataURI(*img))
		}
		return fmt.Sprintf("*(Imagen sugerida: %s)*", name)
	})
}

func altText(name string) string {
	return strings.NewReplacer("[", "", "]", "").Replace(name)
}

// dataURI accepts either a bare base64 payload or a full data URL.
func dataURI(img generator.ImageData) string {
	if strings.HasPrefix(img.Data, "data:") {
		return img.Data
	}
	typ := img.Type
	if typ == "" {
		typ = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", typ, img.Data)
}

// Many email clients drop heading styles; headings become bold paragraphs
// with an explicit font size.
func convertHeadingsForEmail(content string) string {
	hRe := regexp.MustCompile(`(?s)<h([1-6])[^>]*>(.*?)</h[1-6]>`)
	sizes := map[string]string{
		"1": "24px",
		"2": "22px",
		"3": "20px",
		"4": "18px",
		"5": "16px",
		"6": "15px",
	}

	return hRe.ReplaceAllStringFunc(content, func(block string) string {
		parts := hRe.FindStringSubmatch(block)
		if len(parts) != 3 {
			return block
		}
		size := sizes[parts[1]]
		if size == "" {
			size = "18px"
		}
		text := strings.TrimSpace(parts[2])
		return fmt.Sprintf(`<p style="font-size:%s;font-weight:700;margin:1em 0 0.6em;">%s</p>`, size, text)
	})
}
