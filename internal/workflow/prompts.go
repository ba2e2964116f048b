package workflow

import (
	"fmt"

	"github.com/brbranch/lang_assist/internal/llm"
)

func translateMessages(sourceLanguage string, target Language, source string) []llm.Message {
	from := "the user's"
	if sourceLanguage != "" {
		from = fmt.Sprintf("the user's %s", sourceLanguage)
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf(
			"You are a translator. Translate %s text into %s. Reply with the translation only and nothing else.",
			from, target.English)},
		{Role: llm.RoleUser, Content: source},
	}
}

func correctMessages(source string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: "You are a proofreader. Check the user's text for mistakes and reply with the corrected text only. Do not add anything else."},
		{Role: llm.RoleUser, Content: source},
	}
}

func analysisMessages(explainLanguage, text string) []llm.Message {
	if explainLanguage == "" {
		explainLanguage = "English"
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf(
			"You are a grammar teacher. Split the sentence into parts of speech and describe every word. "+
				"Name the parts of speech in %s only (noun, verb, adjective, pronoun and so on) and skip punctuation. "+
				"Keep the explanations simple.", explainLanguage)},
		{Role: llm.RoleUser, Content: fmt.Sprintf(
			"Analyse the grammar of %q and write the analysis in %s without technical terms.", text, explainLanguage)},
	}
}
