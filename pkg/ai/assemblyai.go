package ai

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/johnquangdev/clinic-assistant/pkg/config"
)

// TranscriptionSegment is a contiguous speech segment with timestamps in
// seconds. Speaker carries the diarization label from the speech API ("A",
// "B", ...) when speaker labels are enabled; role attribution happens later.
type TranscriptionSegment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
}

// TranscriptionResult is the full output of one transcription call
type TranscriptionResult struct {
	Text     string                 `json:"text"`
	Language string                 `json:"language,omitempty"`
	Segments []TranscriptionSegment `json:"segments"`
}

// AssemblyAIClient wraps the official AssemblyAI SDK for examination audio
type AssemblyAIClient struct {
	sdk          *aai.Client
	languageCode string
	httpClient   *http.Client
}

// NewAssemblyAIClient creates an AssemblyAI client using the provided config.
// If cfg is nil, falls back to environment variables.
func NewAssemblyAIClient(cfg *config.AssemblyAIConfig) *AssemblyAIClient {
	var apiKey, language string
	if cfg != nil {
		apiKey = cfg.APIKey
		language = cfg.LanguageCode
	}
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}
	if language == "" {
		language = "vi"
	}

	return &AssemblyAIClient{
		sdk:          aai.NewClient(apiKey),
		languageCode: language,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Transcribe downloads the recording, uploads it to AssemblyAI and waits for
// the transcription to complete. The recording URL must be fetchable by this
// process (MinIO presigned/public URL).
func (c *AssemblyAIClient) Transcribe(ctx context.Context, recordingURL string) (*TranscriptionResult, error) {
	if recordingURL == "" {
		return nil, fmt.Errorf("recording URL is required")
	}

	resp, err := c.httpClient.Get(recordingURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download recording: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recording download returned status %d", resp.StatusCode)
	}

	uploadURL, err := c.sdk.Upload(ctx, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to upload to AssemblyAI: %w", err)
	}

	params := &aai.TranscriptOptionalParams{
		LanguageCode:  aai.TranscriptLanguageCode(c.languageCode),
		SpeakerLabels: aai.Bool(true),
	}

	transcript, err := c.sdk.Transcripts.TranscribeFromURL(ctx, uploadURL, params)
	if err != nil {
		return nil, fmt.Errorf("assemblyai transcription failed: %w", err)
	}
	if transcript.Status == aai.TranscriptStatusError {
		msg := "unknown error"
		if transcript.Error != nil {
			msg = *transcript.Error
		}
		return nil, fmt.Errorf("assemblyai reported error: %s", msg)
	}

	result := &TranscriptionResult{Language: c.languageCode}
	if transcript.Text != nil {
		result.Text = *transcript.Text
	}
	if transcript.LanguageCode != "" {
		result.Language = string(transcript.LanguageCode)
	}

	for _, utt := range transcript.Utterances {
		seg := TranscriptionSegment{}
		if utt.Text != nil {
			seg.Text = *utt.Text
		}
		if utt.Speaker != nil {
			seg.Speaker = *utt.Speaker
		}
		if utt.Start != nil {
			seg.Start = float64(*utt.Start) / 1000.0 // ms to seconds
		}
		if utt.End != nil {
			seg.End = float64(*utt.End) / 1000.0
		}
		result.Segments = append(result.Segments, seg)
	}

	return result, nil
}
