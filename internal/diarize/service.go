package diarize

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
	"time"

	"meeting-minutes-go/internal/logger"
	"meeting-minutes-go/internal/types"
)

// Service posts audio to an out-of-process diarization service (typically a
// pyannote worker) and decodes its speaker turns. Any failure is logged and
// swallowed: the pipeline still produces a single-speaker transcript.
type Service struct {
	url    string
	client *http.Client
	log    *logger.Logger
}

func NewService(url string, log *logger.Logger) *Service {
	return &Service{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Minute},
		log:    log,
	}
}

type serviceResponse struct {
	Segments []struct {
		Start   float64 `json:"start"`
		End     float64 `json:"end"`
		Speaker string  `json:"speaker"`
	} `json:"segments"`
}

func (s *Service) Diarize(ctx context.Context, audioPath string) ([]types.SpeakerSegment, error) {
	log := s.log.WithComponent("diarize").WithField("audio_path", audioPath)

	turns, err := s.call(ctx, audioPath)
	if err != nil {
		log.WithField("error", err.Error()).Warn("diarization unavailable, continuing without speakers")
		return nil, nil
	}

	log.WithField("turns", len(turns)).Info("diarization completed")
	return turns, nil
}

func (s *Service) call(ctx context.Context, audioPath string) ([]types.SpeakerSegment, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("diarization service http %d: %s", resp.StatusCode, string(raw))
	}

	var decoded serviceResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode diarization response: %w", err)
	}

	turns := make([]types.SpeakerSegment, 0, len(decoded.Segments))
	for _, seg := range decoded.Segments {
		turns = append(turns, types.SpeakerSegment{Start: seg.Start, End: seg.End, Speaker: seg.Speaker})
	}
	return turns, nil
}
