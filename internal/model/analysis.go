package model

// TokenAnalysis は1トークン分の文法解説
type TokenAnalysis struct {
	Token        string `json:"token"`
	PartOfSpeech string `json:"partOfSpeech"`
	Explanation  string `json:"explanation"`
}

// GrammarAnalysis は構造化出力で受け取る文法解析結果
type GrammarAnalysis struct {
	Sentence string          `json:"sentence"`
	Tokens   []TokenAnalysis `json:"tokens"`
}

// GrammarAnalysisSchema はGrammarAnalysisのJSON Schema（strictモード用）
var GrammarAnalysisSchema = JSONSchema{
	Type: "object",
	Properties: map[string]JSONSchema{
		"sentence": {Type: "string", Description: "the analysed sentence"},
		"tokens": {
			Type: "array",
			Items: &JSONSchema{
				Type: "object",
				Properties: map[string]JSONSchema{
					"token":        {Type: "string"},
					"partOfSpeech": {Type: "string"},
					"explanation":  {Type: "string"},
				},
				Required:             []string{"token", "partOfSpeech", "explanation"},
				AdditionalProperties: PtrFalse(),
			},
		},
	},
	Required:             []string{"sentence", "tokens"},
	AdditionalProperties: PtrFalse(),
}

// PtrFalse はfalseへのポインタを返す
func PtrFalse() *bool {
	b := false
	return &b
}
