package handlers

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"net/http"

	speech "cloud.google.com/go/speech/apiv1"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	speechpb "google.golang.org/genproto/googleapis/cloud/speech/v1"

	"bookline/services/conversation"
)

const (
	maxAudioBytes   = 5 * 1024 * 1024 // keeps widget uploads bounded
	maxAudioSeconds = 60
)

// TranscribeHandler is the voice entry path: a short WAV clip is transcribed
// and the transcript is run through the same chat flow as a typed message.
type TranscribeHandler struct {
	Conversation conversation.ConversationService
	Logger       *zap.Logger
}

func NewTranscribeHandler(svc conversation.ConversationService, logger *zap.Logger) *TranscribeHandler {
	return &TranscribeHandler{Conversation: svc, Logger: logger}
}

type waveHeader struct {
	RiffTag       [4]byte
	FileSize      uint32
	WaveTag       [4]byte
	FmtTag        [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataTag       [4]byte
	DataSize      uint32
}

func parseWaveHeader(data []byte) (*waveHeader, error) {
	if len(data) < 44 {
		return nil, errors.New("invalid WAV header length")
	}
	var header waveHeader
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	if string(header.RiffTag[:]) != "RIFF" || string(header.WaveTag[:]) != "WAVE" {
		return nil, errors.New("not a WAV file")
	}
	if header.AudioFormat != 1 {
		return nil, errors.New("only uncompressed PCM WAV is supported")
	}
	return &header, nil
}

func (h *waveHeader) durationSeconds() float64 {
	if h.ByteRate == 0 {
		return 0
	}
	return float64(h.DataSize) / float64(h.ByteRate)
}

// Transcribe handles POST /api/chat/transcribe (multipart: sessionId + audio).
func (t *TranscribeHandler) Transcribe(c *gin.Context) {
	sessionID := c.PostForm("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId is required"})
		return
	}

	file, _, err := c.Request.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAudioBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read audio"})
		return
	}
	if len(data) > maxAudioBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "audio file exceeds 5MB"})
		return
	}

	header, err := parseWaveHeader(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if header.durationSeconds() > maxAudioSeconds {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio clip is longer than 60 seconds"})
		return
	}

	ctx := c.Request.Context()
	client, err := speech.NewClient(ctx)
	if err != nil {
		t.Logger.Error("failed to create speech client", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "transcription unavailable"})
		return
	}
	defer client.Close()

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:          speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:   int32(header.SampleRate),
			AudioChannelCount: int32(header.NumChannels),
			LanguageCode:      "en-US",
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: data},
		},
	})
	if err != nil {
		t.Logger.Error("speech recognition failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "transcription failed"})
		return
	}

	var transcript string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			transcript += result.Alternatives[0].Transcript
		}
	}
	if transcript == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "could not understand the audio"})
		return
	}

	chatResp, err := t.Conversation.HandleMessage(ctx, sessionID, transcript)
	if err != nil {
		t.Logger.Error("chat turn failed after transcription", zap.String("sessionId", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong handling that message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transcript": transcript,
		"response":   chatResp,
	})
}
