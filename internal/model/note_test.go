package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNote_Validate(t *testing.T) {
	assert.NoError(t, (&Note{ID: "550e8400-e29b-41d4-a716-446655440000", Text: "Cześć"}).Validate())
	assert.Error(t, (&Note{Text: "Cześć"}).Validate())
	assert.Error(t, (&Note{ID: "x"}).Validate())
}

func TestNoteResult_ScoreIsNullWhenListing(t *testing.T) {
	b, err := json.Marshal(NoteResult{ID: "a", Text: "t"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a","text":"t","score":null}`, string(b))

	score := 0.5
	assert.True(t, NoteResult{Score: &score}.HasScore())
	assert.False(t, NoteResult{}.HasScore())
}

// strictモードの構造化出力では全objectで全プロパティ必須かつ追加プロパティ禁止
func TestGrammarAnalysisSchema_Strict(t *testing.T) {
	var check func(path string, s JSONSchema)
	check = func(path string, s JSONSchema) {
		if s.Type == "object" {
			require.NotNil(t, s.AdditionalProperties, path)
			assert.False(t, *s.AdditionalProperties, path)
			for name := range s.Properties {
				assert.Contains(t, s.Required, name, path)
			}
		}
		for name, p := range s.Properties {
			check(path+"."+name, p)
		}
		if s.Items != nil {
			check(path+"[]", *s.Items)
		}
	}
	check("$", GrammarAnalysisSchema)
}
