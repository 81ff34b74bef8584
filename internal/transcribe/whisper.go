package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"meeting-minutes-go/internal/logger"
	"meeting-minutes-go/internal/types"
)

// Whisper calls the OpenAI audio transcription endpoint requesting
// verbose_json so we get per-segment timestamps.
type Whisper struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

func NewWhisper(apiKey, model, baseURL string, log *logger.Logger) *Whisper {
	return &Whisper{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Minute},
		log:     log,
	}
}

type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type whisperResponse struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Segments []whisperSegment `json:"segments"`
}

func (w *Whisper) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	log := w.log.WithComponent("transcribe").WithField("audio_path", audioPath)
	log.Info("starting transcription")

	var resp whisperResponse

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 3 * time.Minute
	var lastErr error

	op := func() error {
		body, contentType, err := w.buildRequestBody(audioPath)
		if err != nil {
			// Local I/O problems will not heal on retry.
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/audio/transcriptions", body)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+w.apiKey)
		req.Header.Set("Content-Type", contentType)

		httpResp, err := w.client.Do(req)
		if err != nil {
			lastErr = err
			return err
		}
		defer httpResp.Body.Close()

		raw, _ := io.ReadAll(httpResp.Body)
		if httpResp.StatusCode >= 500 {
			lastErr = fmt.Errorf("transcription server error: %s", string(raw))
			return lastErr
		}
		if httpResp.StatusCode >= 300 {
			lastErr = fmt.Errorf("transcription request rejected: http %d: %s", httpResp.StatusCode, string(raw))
			return backoff.Permanent(lastErr)
		}
		if err := json.Unmarshal(raw, &resp); err != nil {
			lastErr = fmt.Errorf("decode transcription response: %w", err)
			return lastErr
		}
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if lastErr != nil {
			err = lastErr
		}
		log.WithField("error", err.Error()).Error("transcription failed")
		return Result{}, fmt.Errorf("transcribe %s: %w", filepath.Base(audioPath), err)
	}

	out := Result{Text: resp.Text, Language: resp.Language}
	for _, seg := range resp.Segments {
		out.Segments = append(out.Segments, types.Segment{Start: seg.Start, End: seg.End, Text: seg.Text})
	}
	// Some responses carry only the full text; keep it as a single segment so
	// the merge step still has something to attribute.
	if len(out.Segments) == 0 && out.Text != "" {
		out.Segments = []types.Segment{{Start: 0, End: 0, Text: out.Text}}
	}

	log.WithField("segments", len(out.Segments)).Info("transcription completed")
	return out, nil
}

func (w *Whisper) buildRequestBody(audioPath string) (io.Reader, string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, "", fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("model", w.model)
	_ = mw.WriteField("response_format", "verbose_json")
	_ = mw.WriteField("timestamp_granularities[]", "segment")

	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, "", fmt.Errorf("read audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
