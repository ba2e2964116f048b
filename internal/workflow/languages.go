package workflow

import (
	"fmt"
	"strings"
)

// Language は翻訳先として選べる言語
type Language struct {
	Code    string `json:"code"`
	English string `json:"english"`
	Polish  string `json:"polish"`
}

// supportedLanguages は翻訳先の一覧（表示順）
var supportedLanguages = []Language{
	{Code: "en", English: "English", Polish: "angielski"},
	{Code: "de", English: "German", Polish: "niemiecki"},
	{Code: "fr", English: "French", Polish: "francuski"},
	{Code: "es", English: "Spanish", Polish: "hiszpański"},
	{Code: "it", English: "Italian", Polish: "włoski"},
	{Code: "pt", English: "Portuguese", Polish: "portugalski"},
	{Code: "sv", English: "Swedish", Polish: "szwedzki"},
	{Code: "no", English: "Norwegian", Polish: "norweski"},
	{Code: "da", English: "Danish", Polish: "duński"},
	{Code: "uk", English: "Ukrainian", Polish: "ukraiński"},
	{Code: "ru", English: "Russian", Polish: "rosyjski"},
	{Code: "tr", English: "Turkish", Polish: "turecki"},
	{Code: "zh", English: "Mandarin", Polish: "mandaryński"},
}

// SupportedLanguages は翻訳先の一覧のコピーを返す
func SupportedLanguages() []Language {
	return append([]Language(nil), supportedLanguages...)
}

// ResolveLanguage は言語コード・英語名・ポーランド語名のいずれかから言語を引く
// 大文字小文字と前後の空白は無視する
func ResolveLanguage(name string) (Language, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, l := range supportedLanguages {
		if key == l.Code || key == strings.ToLower(l.English) || key == l.Polish {
			return l, nil
		}
	}
	return Language{}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, name)
}
