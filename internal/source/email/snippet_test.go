package email

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func crlf(s string) []byte {
	return []byte(strings.ReplaceAll(s, "\n", "\r\n"))
}

func TestSnippetFromMessage_PlainText(t *testing.T) {
	raw := crlf(`From: a@x.com
Subject: Hi
Content-Type: text/plain; charset=utf-8

Hello there,

  the report is attached.
`)

	assert.Equal(t, "Hello there, the report is attached.", snippetFromMessage(raw))
}

func TestSnippetFromMessage_PrefersPlainOverHTML(t *testing.T) {
	raw := crlf(`From: a@x.com
Subject: Hi
MIME-Version: 1.0
Content-Type: multipart/alternative; boundary="b1"

--b1
Content-Type: text/html; charset=utf-8

<p>Rich <b>text</b></p>
--b1
Content-Type: text/plain; charset=utf-8

Plain text
--b1--
`)

	assert.Equal(t, "Plain text", snippetFromMessage(raw))
}

func TestSnippetFromMessage_HTMLOnly(t *testing.T) {
	raw := crlf(`From: a@x.com
Content-Type: text/html; charset=utf-8

<html><head><style>p { color: red; }</style></head>
<body><p>Tom &amp; Jerry</p><div>second&nbsp;line</div></body></html>
`)

	assert.Equal(t, "Tom & Jerry second line", snippetFromMessage(raw))
}

func TestSnippetFromMessage_Garbage(t *testing.T) {
	assert.Empty(t, snippetFromMessage([]byte("\x00\x01 not a message")))
}

func TestCompactSnippet_Truncates(t *testing.T) {
	long := strings.Repeat("é", snippetRunes+50)

	got := compactSnippet(long)
	assert.Equal(t, snippetRunes, utf8.RuneCountInString(got))
}
