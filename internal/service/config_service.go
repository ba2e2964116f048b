package service

import (
	"context"

	"github.com/brbranch/lang_assist/internal/config"
	"github.com/brbranch/lang_assist/internal/model"
	"github.com/brbranch/lang_assist/internal/speech"
)

// configService はConfigServiceの実装
type configService struct {
	manager *config.Manager
}

// NewConfigService はConfigServiceの新しいインスタンスを作成
func NewConfigService(mgr *config.Manager) ConfigService {
	return &configService{
		manager: mgr,
	}
}

// GetConfig は現在の設定を取得する（APIキーは返さない）
func (s *configService) GetConfig(ctx context.Context) (*GetConfigResponse, error) {
	cfg := s.manager.GetConfig()

	storeCfg := cfg.Store
	storeCfg.APIKey = nil

	return &GetConfigResponse{
		TransportDefaults: cfg.TransportDefaults,
		Embedder:          cfg.Embedder,
		Chat:              cfg.Chat,
		Speech:            cfg.Speech,
		Store:             storeCfg,
		Paths:             cfg.Paths,
	}, nil
}

// SetConfig は音声設定を変更してファイルに保存する
// 埋め込みやストアの設定はコレクションの次元に関わるため変更できない
func (s *configService) SetConfig(ctx context.Context, req *SetConfigRequest) (*SetConfigResponse, error) {
	if req.Speech == nil {
		return &SetConfigResponse{OK: true, Speech: s.manager.GetConfig().Speech}, nil
	}

	patch := model.SpeechConfig{}
	if req.Speech.Model != nil {
		patch.Model = *req.Speech.Model
	}
	if req.Speech.Voice != nil {
		if err := speech.ValidateVoice(*req.Speech.Voice); err != nil {
			return nil, err
		}
		patch.Voice = *req.Speech.Voice
	}

	s.manager.UpdateSpeech(patch)
	if err := s.manager.Save(); err != nil {
		return nil, err
	}

	return &SetConfigResponse{OK: true, Speech: s.manager.GetConfig().Speech}, nil
}
