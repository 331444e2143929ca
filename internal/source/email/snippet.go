package email

import (
	"bytes"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/emersion/go-message/mail"
)

// snippetRunes is the maximum length of a stored preview.
const snippetRunes = 200

// snippetFromMessage parses a (possibly truncated) RFC 5322 message with
// go-message and returns a single-line preview of its first text part,
// preferring text/plain over text/html. Unparseable input yields "".
func snippetFromMessage(raw []byte) string {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	defer mr.Close()

	var plain, html string
	for plain == "" {
		part, err := mr.NextPart()
		if err != nil {
			// io.EOF, or a body cut short by the partial fetch.
			break
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		body, readErr := io.ReadAll(part.Body)
		if readErr != nil && len(body) == 0 {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain"):
			plain = string(body)
		case strings.HasPrefix(contentType, "text/html") && html == "":
			html = stripHTML(string(body))
		}
	}

	text := plain
	if strings.TrimSpace(text) == "" {
		text = html
	}
	return compactSnippet(text)
}

// compactSnippet collapses whitespace and truncates to snippetRunes.
func compactSnippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	if utf8.RuneCountInString(s) <= snippetRunes {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:snippetRunes]))
}

// htmlTagPattern matches HTML tags for stripping.
var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// styleBlockPattern matches <style> and <script> elements with their content.
var styleBlockPattern = regexp.MustCompile(`(?is)<(style|script)[^>]*>.*?</(style|script)>`)

// stripHTML removes HTML tags from a string and decodes common
// entities, providing a basic plain-text rendering.
func stripHTML(html string) string {
	if html == "" {
		return ""
	}

	result := styleBlockPattern.ReplaceAllString(html, "")
	for _, tag := range []string{
		"<br>", "<br/>", "<br />", "</p>", "</div>", "</li>",
	} {
		result = strings.ReplaceAll(result, tag, "\n")
	}

	result = htmlTagPattern.ReplaceAllString(result, "")

	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	result = replacer.Replace(result)

	return strings.TrimSpace(result)
}

// formatSender renders an address as "Name <addr>", or just addr when
// there is no display name.
func formatSender(name, addr string) string {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return addr
	case addr == "":
		return name
	default:
		return name + " <" + addr + ">"
	}
}
