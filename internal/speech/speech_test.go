package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brbranch/lang_assist/internal/openai"
)

var fakeMP3 = []byte{0xFF, 0xFB, 0x90, 0x00}

func newTestSynthesizer(t *testing.T, handler http.HandlerFunc, opts ...Option) *Synthesizer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := openai.NewClient("test-key", openai.WithBaseURL(server.URL), openai.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	s, err := NewSynthesizer(client, opts...)
	require.NoError(t, err)
	return s
}

func TestSynthesize_SendsStrippedInput(t *testing.T) {
	var got speechRequest
	s := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/speech", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", MimeType)
		w.Write(fakeMP3)
	})

	note := "<p><strong>Good morning</strong></p>\n<span style='color:#5dade2;font-weight:bold'>Good</span> — dobry<br/>"
	audio, err := s.Synthesize(context.Background(), note, "")
	require.NoError(t, err)
	assert.Equal(t, fakeMP3, audio)

	assert.Equal(t, DefaultModel, got.Model)
	assert.Equal(t, DefaultVoice, got.Voice)
	assert.Equal(t, "mp3", got.ResponseFormat)
	assert.Equal(t, "Good morning Good — dobry", got.Input)
}

func TestSynthesize_VoiceOverride(t *testing.T) {
	var got speechRequest
	s := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write(fakeMP3)
	}, WithVoice("nova"), WithModel("tts-1-hd"))

	assert.Equal(t, "nova", s.Voice())

	_, err := s.Synthesize(context.Background(), "Hej", "onyx")
	require.NoError(t, err)
	assert.Equal(t, "onyx", got.Voice)
	assert.Equal(t, "tts-1-hd", got.Model)
}

func TestSynthesize_Errors(t *testing.T) {
	called := false
	s := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.Write(fakeMP3)
	})

	_, err := s.Synthesize(context.Background(), "<p>  </p>", "")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = s.Synthesize(context.Background(), "text", "robot")
	assert.ErrorIs(t, err, ErrUnsupportedVoice)

	assert.False(t, called, "no request should be sent for invalid input")
}

func TestSynthesize_APIError(t *testing.T) {
	s := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "input too long"}}`))
	})

	_, err := s.Synthesize(context.Background(), "text", "")
	assert.ErrorIs(t, err, openai.ErrAPIRequestFailed)
}

func TestNewSynthesizer(t *testing.T) {
	_, err := NewSynthesizer(nil)
	assert.ErrorIs(t, err, openai.ErrAPIKeyRequired)

	client, err := openai.NewClient("k")
	require.NoError(t, err)
	_, err = NewSynthesizer(client, WithVoice("robot"))
	assert.ErrorIs(t, err, ErrUnsupportedVoice)
}

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text", in: "Dzień dobry", want: "Dzień dobry"},
		{name: "nested tags", in: "<p><strong>Hello</strong> world</p>", want: "Hello world"},
		{name: "adjacent blocks get a separator", in: "<p>one</p><p>two</p>", want: "one two"},
		{name: "br and newlines collapse", in: "a<br/>\n\n  b", want: "a b"},
		{name: "entities are decoded", in: "Tom &amp; Jerry &lt;3", want: "Tom & Jerry <3"},
		{name: "style is dropped", in: "<style>.x{color:red}</style>visible", want: "visible"},
		{name: "only markup", in: "<p></p><br/>", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripMarkup(tt.in))
		})
	}
}

func TestValidateVoice(t *testing.T) {
	for _, v := range Voices {
		assert.NoError(t, ValidateVoice(v))
	}
	assert.ErrorIs(t, ValidateVoice(""), ErrUnsupportedVoice)
}
