package workflow

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/brbranch/lang_assist/internal/model"
)

// tokenStyle はトークン名の強調スタイル
const tokenStyle = "color:#5dade2;font-weight:bold"

// FormatNote はノート本文を組み立てる
// 1行目にoutputを太字で、以降トークンごとに1行（"token — explanation"）を並べる
// 保存と読み上げの両方にこの文字列をそのまま使う
func FormatNote(output string, tokens []model.TokenAnalysis) string {
	lines := make([]string, 0, len(tokens)+1)
	lines = append(lines, fmt.Sprintf("<p><strong>%s</strong></p>", html.EscapeString(output)))
	for _, t := range tokens {
		lines = append(lines, fmt.Sprintf("<span style='%s'>%s</span> — %s<br/>",
			tokenStyle, html.EscapeString(t.Token), html.EscapeString(t.Explanation)))
	}
	return strings.Join(lines, "\n")
}
