// Package pipeline drives a recording through download, transcription,
// diarization merge, and insight extraction, persisting the meeting record at
// every stage boundary so its state is always observable.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"meeting-minutes-go/internal/diarize"
	"meeting-minutes-go/internal/insights"
	"meeting-minutes-go/internal/logger"
	"meeting-minutes-go/internal/media"
	"meeting-minutes-go/internal/merge"
	"meeting-minutes-go/internal/store"
	"meeting-minutes-go/internal/transcribe"
	"meeting-minutes-go/internal/types"
)

// ErrNoTranscript is returned by RegenerateInsights when the meeting has no
// stored transcript to regenerate from.
var ErrNoTranscript = errors.New("no transcript available for regeneration")

// ErrNotSendable is returned by Send when the meeting is not a ready draft.
var ErrNotSendable = errors.New("meeting is not in a sendable state")

// ErrNoRecipients is returned by Send when no recipients were given.
var ErrNoRecipients = errors.New("no recipients specified")

// InsightExtractor is the slice of the insights package the orchestrator needs.
type InsightExtractor interface {
	Extract(ctx context.Context, formattedTranscript string, segments []types.Segment) (types.Insights, error)
}

// Sender delivers finished minutes to recipients. Delivery is an external
// collaborator; the orchestrator only owns the resulting state transition.
type Sender interface {
	Send(ctx context.Context, m *types.Meeting, recipients []string) error
}

// LogSender "delivers" by logging. Default when no mailer is wired up.
type LogSender struct {
	Log *logger.Logger
}

func (s LogSender) Send(ctx context.Context, m *types.Meeting, recipients []string) error {
	s.Log.WithComponent("sender").WithFields(logrus.Fields{
		"meeting_id": m.ID,
		"recipients": len(recipients),
	}).Info("meeting minutes dispatched")
	return nil
}

// StartResult reports the outcome of a processing trigger.
type StartResult struct {
	MeetingID    string `json:"meeting_id"`
	Started      bool   `json:"started"`
	Reprocessing bool   `json:"reprocessing,omitempty"`
}

// Status is the polling view of one meeting.
type Status struct {
	MeetingID       string       `json:"meeting_id"`
	Status          types.Status `json:"status"`
	Title           string       `json:"title,omitempty"`
	ErrorMessage    string       `json:"error_message,omitempty"`
	ProcessingStage string       `json:"processing_stage,omitempty"`
}

// Orchestrator owns the meeting state machine. It is the sole writer to a
// meeting while its run is in flight.
//
// Known limitation: if the process dies mid-run, the meeting stays in
// processing until an explicit reprocess; there is no lease or heartbeat
// recovery.
type Orchestrator struct {
	store      store.Store
	downloader media.Downloader
	engine     transcribe.Engine
	diarizer   diarize.Diarizer
	extractor  InsightExtractor
	sender     Sender
	log        *logger.Logger

	wg sync.WaitGroup
}

func NewOrchestrator(
	st store.Store,
	dl media.Downloader,
	eng transcribe.Engine,
	dia diarize.Diarizer,
	ext InsightExtractor,
	snd Sender,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:      st,
		downloader: dl,
		engine:     eng,
		diarizer:   dia,
		extractor:  ext,
		sender:     snd,
		log:        log,
	}
}

// StartProcessing creates or reuses the meeting for sourceFileID and launches
// a background run. A meeting already in processing is returned as-is without
// starting a duplicate run.
func (o *Orchestrator) StartProcessing(ctx context.Context, sourceFileID string) (StartResult, error) {
	log := o.log.WithComponent("pipeline").WithField("source_file_id", sourceFileID)

	existing, err := o.store.GetBySourceFileID(ctx, sourceFileID)
	switch {
	case err == nil:
		if existing.Status == types.StatusProcessing {
			log.WithField("meeting_id", existing.ID).Info("already processing, skipping duplicate trigger")
			return StartResult{MeetingID: existing.ID, Started: false}, nil
		}
		// Explicit reprocess: clear the previous failure and run again.
		existing.Status = types.StatusProcessing
		existing.ErrorMessage = ""
		if err := o.store.Update(ctx, existing); err != nil {
			return StartResult{}, fmt.Errorf("mark meeting for reprocessing: %w", err)
		}
		o.launch(existing.ID, sourceFileID)
		log.WithField("meeting_id", existing.ID).Info("reprocessing meeting")
		return StartResult{MeetingID: existing.ID, Started: true, Reprocessing: true}, nil

	case errors.Is(err, store.ErrNotFound):
		m := &types.Meeting{
			ID:           uuid.NewString(),
			SourceFileID: sourceFileID,
			Status:       types.StatusProcessing,
		}
		if err := o.store.Create(ctx, m); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				// Lost the creation race to a concurrent trigger; report the
				// winner as already processing.
				winner, gerr := o.store.GetBySourceFileID(ctx, sourceFileID)
				if gerr != nil {
					return StartResult{}, fmt.Errorf("resolve concurrent trigger: %w", gerr)
				}
				return StartResult{MeetingID: winner.ID, Started: false}, nil
			}
			return StartResult{}, fmt.Errorf("create meeting: %w", err)
		}
		o.launch(m.ID, sourceFileID)
		log.WithField("meeting_id", m.ID).Info("processing started")
		return StartResult{MeetingID: m.ID, Started: true}, nil

	default:
		return StartResult{}, fmt.Errorf("look up meeting: %w", err)
	}
}

// launch runs the pipeline as an independent background unit of work. The run
// deliberately does not inherit the trigger's context: it must outlive the
// triggering request and be observable only through the store.
func (o *Orchestrator) launch(meetingID, sourceFileID string) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.run(context.Background(), meetingID, sourceFileID)
	}()
}

// Wait blocks until all in-flight runs finish. Used for graceful shutdown and
// by tests.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) run(ctx context.Context, meetingID, sourceFileID string) {
	log := o.log.WithComponent("pipeline").WithFields(logrus.Fields{
		"meeting_id":     meetingID,
		"source_file_id": sourceFileID,
	})
	log.Info("pipeline run starting")

	audioPath, cleanup, err := o.downloader.Download(ctx, sourceFileID)
	if err != nil {
		o.fail(ctx, meetingID, fmt.Sprintf("failed to download recording: %v", err))
		return
	}
	defer cleanup()

	tr, err := o.engine.Transcribe(ctx, audioPath)
	if err != nil {
		o.fail(ctx, meetingID, fmt.Sprintf("transcription failed: %v", err))
		return
	}

	// Diarization degrades to no turns; it never fails the run.
	turns, _ := o.diarizer.Diarize(ctx, audioPath)

	merged := merge.Merge(tr.Segments, turns)
	formatted := merge.FormatTranscript(merged)

	m, err := o.store.Get(ctx, meetingID)
	if err != nil {
		log.WithField("error", err.Error()).Error("meeting disappeared mid-run")
		return
	}
	m.RawTranscript = tr.Text
	m.Language = tr.Language
	m.Segments = merged
	m.SpeakerCount = merge.SpeakerCount(merged)
	m.TotalDurationSec = merge.TotalDuration(merged)
	if err := o.store.Update(ctx, m); err != nil {
		o.fail(ctx, meetingID, fmt.Sprintf("failed to save transcript: %v", err))
		return
	}
	log.WithField("segments", len(merged)).Info("transcript checkpoint persisted")

	extracted, err := o.extractor.Extract(ctx, formatted, merged)
	if err != nil {
		o.fail(ctx, meetingID, fmt.Sprintf("insight extraction failed: %v", err))
		return
	}

	m, err = o.store.Get(ctx, meetingID)
	if err != nil {
		log.WithField("error", err.Error()).Error("meeting disappeared mid-run")
		return
	}
	m.Title = extracted.MeetingTitle
	m.Insights = extracted
	m.DurationMinutes = int(m.TotalDurationSec) / 60
	m.Status = types.StatusDraftReady
	m.ErrorMessage = ""
	if err := o.store.Update(ctx, m); err != nil {
		o.fail(ctx, meetingID, fmt.Sprintf("failed to save insights: %v", err))
		return
	}

	log.Info("pipeline run completed, draft ready")
}

// fail reloads the meeting and records the failure. Checkpointed results are
// left in place for inspection and for insight-only regeneration.
func (o *Orchestrator) fail(ctx context.Context, meetingID, cause string) {
	log := o.log.WithComponent("pipeline").WithField("meeting_id", meetingID)
	log.WithField("cause", cause).Error("pipeline run failed")

	m, err := o.store.Get(ctx, meetingID)
	if err != nil {
		log.WithField("error", err.Error()).Error("could not load meeting to record failure")
		return
	}
	m.Status = types.StatusError
	m.ErrorMessage = cause
	if err := o.store.Update(ctx, m); err != nil {
		log.WithField("error", err.Error()).Error("could not persist failure state")
	}
}

// RegenerateInsights re-runs only the extraction stage against the stored
// transcript, skipping download and transcription entirely.
func (o *Orchestrator) RegenerateInsights(ctx context.Context, meetingID string) (*types.Meeting, error) {
	m, err := o.store.Get(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if m.RawTranscript == "" {
		return nil, ErrNoTranscript
	}

	formatted := merge.FormatTranscript(m.Segments)
	if formatted == "" {
		formatted = m.RawTranscript
	}

	extracted, err := o.extractor.Extract(ctx, formatted, m.Segments)
	if err != nil {
		return nil, fmt.Errorf("regenerate insights: %w", err)
	}

	m.Title = extracted.MeetingTitle
	m.Insights = extracted

	// Regenerating a sent meeting reopens it as a draft.
	if m.Status == types.StatusSent {
		m.Status = types.StatusDraftReady
		m.EmailSentAt = nil
		m.EmailRecipients = nil
	}

	if err := o.store.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("save regenerated insights: %w", err)
	}

	o.log.WithComponent("pipeline").WithField("meeting_id", meetingID).Info("insights regenerated")
	return m, nil
}

// Send delivers the draft and marks the meeting sent.
func (o *Orchestrator) Send(ctx context.Context, meetingID string, recipients []string) (*types.Meeting, error) {
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	m, err := o.store.Get(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if !types.ValidTransition(m.Status, types.StatusSent) {
		return nil, fmt.Errorf("%w: status is %s", ErrNotSendable, m.Status)
	}

	if err := o.sender.Send(ctx, m, recipients); err != nil {
		return nil, fmt.Errorf("send minutes: %w", err)
	}

	now := time.Now().UTC()
	m.Status = types.StatusSent
	m.EmailSentAt = &now
	m.EmailRecipients = recipients
	if err := o.store.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("record send: %w", err)
	}
	return m, nil
}

// GetStatus returns the polling view of a meeting.
func (o *Orchestrator) GetStatus(ctx context.Context, meetingID string) (Status, error) {
	m, err := o.store.Get(ctx, meetingID)
	if err != nil {
		return Status{}, err
	}

	s := Status{
		MeetingID:    m.ID,
		Status:       m.Status,
		Title:        m.Title,
		ErrorMessage: m.ErrorMessage,
	}
	if m.Status == types.StatusProcessing {
		s.ProcessingStage = processingStage(m)
	}
	return s, nil
}

// processingStage infers progress from which checkpoints have landed.
func processingStage(m *types.Meeting) string {
	if m.RawTranscript == "" {
		return "downloading"
	}
	if len(m.Insights.Attendees) == 0 && len(m.Insights.ActionItems) == 0 {
		return "transcription_complete"
	}
	return "ai_processing"
}

// Delete removes a meeting. Administrative operation, never called by a run.
func (o *Orchestrator) Delete(ctx context.Context, meetingID string) error {
	return o.store.Delete(ctx, meetingID)
}

// Get exposes the full meeting record.
func (o *Orchestrator) Get(ctx context.Context, meetingID string) (*types.Meeting, error) {
	return o.store.Get(ctx, meetingID)
}

// List exposes all meeting records.
func (o *Orchestrator) List(ctx context.Context) ([]*types.Meeting, error) {
	return o.store.List(ctx)
}

var _ InsightExtractor = (*insights.Extractor)(nil)
