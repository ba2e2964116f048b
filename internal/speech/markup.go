package speech

import (
	"strings"

	"golang.org/x/net/html"
)

// StripMarkup はHTMLからテキストノードだけを取り出す
// テキストノード同士は空白1つで連結し、連続する空白は1つに畳む
// script/styleの中身は読み上げない
func StripMarkup(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))

	var parts []string
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF以外（壊れた入力）でも読めたところまでを返す
			return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
		case html.StartTagToken:
			if isHidden(z) {
				skip++
			}
		case html.EndTagToken:
			if isHidden(z) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				parts = append(parts, string(z.Text()))
			}
		}
	}
}

func isHidden(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}
