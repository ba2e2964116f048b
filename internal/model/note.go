package model

import "fmt"

// Note は保存済みノートを表す（ベクトルはストア側のみが保持する）
type Note struct {
	ID   string `json:"id"`   // UUID形式
	Text string `json:"text"` // 整形済みノート本文（必須）
}

// Validate はNoteのバリデーションを実行する
func (n *Note) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("ID must not be empty")
	}
	if n.Text == "" {
		return fmt.Errorf("Text must not be empty")
	}
	return nil
}

// NoteResult は一覧・検索結果の1件
// Scoreはクエリなし一覧の場合nil
type NoteResult struct {
	ID    string   `json:"id"`
	Text  string   `json:"text"`
	Score *float64 `json:"score"`
}

// HasScore はクエリ付き検索の結果かどうかを返す
func (r NoteResult) HasScore() bool {
	return r.Score != nil
}
