package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"meeting-minutes-go/internal/config"
	"meeting-minutes-go/internal/diarize"
	"meeting-minutes-go/internal/export"
	"meeting-minutes-go/internal/insights"
	"meeting-minutes-go/internal/logger"
	"meeting-minutes-go/internal/media"
	"meeting-minutes-go/internal/pipeline"
	"meeting-minutes-go/internal/store"
	"meeting-minutes-go/internal/transcribe"
	"meeting-minutes-go/internal/watcher"
)

func main() {
	_ = godotenv.Load() // loads .env

	cfg, err := config.Load(envOr("CONFIG_PATH", "config.yaml"))
	if err != nil {
		logger.New().WithError(err).Fatal("failed to load config")
	}
	if lvl := cfg.Logging.Level; lvl != "" && os.Getenv("LOG_LEVEL") == "" {
		os.Setenv("LOG_LEVEL", lvl)
	}

	log := logger.New()
	log.WithField("service", "meeting-minutes-go").Info("starting service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := buildStore(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to build meeting store")
	}

	dl, err := buildDownloader(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to build media downloader")
	}

	engine := transcribe.NewWhisper(os.Getenv("OPENAI_API_KEY"), cfg.Transcribe.Model, cfg.Transcribe.BaseURL, log)

	var diarizer diarize.Diarizer = diarize.Noop{}
	if cfg.Diarize.URL != "" {
		diarizer = diarize.NewService(cfg.Diarize.URL, log)
	}

	client, err := buildInsightsClient(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to build insights client")
	}
	extractor := insights.NewExtractor(client, log)

	orch := pipeline.NewOrchestrator(st, dl, engine, diarizer, extractor, pipeline.LogSender{Log: log}, log)

	if cfg.Watcher.Enabled {
		w, err := watcher.New(cfg.Watcher.InboxDir, func(ctx context.Context, path string) error {
			_, err := orch.StartProcessing(ctx, path)
			return err
		}, log)
		if err != nil {
			log.WithError(err).Fatal("failed to start inbox watcher")
		}
		defer w.Stop()
		go func() {
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("inbox watcher stopped unexpectedly")
			}
		}()
	}

	mux := http.NewServeMux()

	// health
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		logger.New().WithRequest(r).Info("health check")
		fmt.Fprint(w, "ok")
	})

	var checker media.RecordingChecker
	if c, ok := dl.(media.RecordingChecker); ok {
		checker = c
	}
	mux.HandleFunc("/webhook/drive", webhookHandler(orch, checker))

	// manual trigger
	mux.HandleFunc("/process", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "process")
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		fileID := r.URL.Query().Get("file_id")
		if fileID == "" {
			reqLog.Warn("missing file_id")
			http.Error(w, "missing file_id", http.StatusBadRequest)
			return
		}

		res, err := orch.StartProcessing(r.Context(), fileID)
		if err != nil {
			reqLog.WithError(err).Error("failed to start processing")
			http.Error(w, "failed to start processing", http.StatusInternalServerError)
			return
		}
		reqLog.WithField("meeting_id", res.MeetingID).WithField("started", res.Started).Info("processing triggered")
		writeJSON(w, reqLog, http.StatusAccepted, res)
	})

	mux.HandleFunc("/meetings/status", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "status")
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}
		status, err := orch.GetStatus(r.Context(), id)
		if err != nil {
			httpError(w, reqLog, err)
			return
		}
		writeJSON(w, reqLog, http.StatusOK, status)
	})

	mux.HandleFunc("/meetings/regenerate", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "regenerate")
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}
		m, err := orch.RegenerateInsights(r.Context(), id)
		if err != nil {
			if errors.Is(err, pipeline.ErrNoTranscript) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			httpError(w, reqLog, err)
			return
		}
		reqLog.WithField("meeting_id", id).Info("insights regenerated")
		writeJSON(w, reqLog, http.StatusOK, m)
	})

	mux.HandleFunc("/meetings/send", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "send")
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}
		var body struct {
			Recipients    []string `json:"recipients"`
			CustomMessage string   `json:"custom_message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		m, err := orch.Send(r.Context(), id, body.Recipients)
		if err != nil {
			switch {
			case errors.Is(err, pipeline.ErrNoRecipients):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, pipeline.ErrNotSendable):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				httpError(w, reqLog, err)
			}
			return
		}
		reqLog.WithField("meeting_id", id).WithField("recipients", len(body.Recipients)).Info("minutes sent")
		writeJSON(w, reqLog, http.StatusOK, m)
	})

	mux.HandleFunc("/meetings/export", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "export")
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}
		m, err := orch.Get(r.Context(), id)
		if err != nil {
			httpError(w, reqLog, err)
			return
		}

		switch format := r.URL.Query().Get("format"); format {
		case "", "json":
			writeJSON(w, reqLog, http.StatusOK, m)
		case "xlsx":
			data, err := export.XLSX(m)
			if err != nil {
				reqLog.WithError(err).Error("xlsx export failed")
				http.Error(w, "export failed", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "meeting-minutes-"+m.ID+".xlsx"))
			w.Write(data)
		default:
			http.Error(w, "unknown format: "+format, http.StatusBadRequest)
		}
	})

	mux.HandleFunc("/meetings", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "meetings")
		switch r.Method {
		case http.MethodGet:
			list, err := orch.List(r.Context())
			if err != nil {
				httpError(w, reqLog, err)
				return
			}
			writeJSON(w, reqLog, http.StatusOK, list)
		case http.MethodDelete:
			id := r.URL.Query().Get("id")
			if id == "" {
				http.Error(w, "missing id", http.StatusBadRequest)
				return
			}
			if err := orch.Delete(r.Context(), id); err != nil {
				httpError(w, reqLog, err)
				return
			}
			reqLog.WithField("meeting_id", id).Info("meeting deleted")
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}

	// Let in-flight pipeline runs land their final state before exit.
	orch.Wait()
	log.Info("service stopped")
}

// starter is the slice of the orchestrator the webhook needs.
type starter interface {
	StartProcessing(ctx context.Context, sourceFileID string) (pipeline.StartResult, error)
}

// webhookHandler handles Drive push notifications. Triggers are always
// acknowledged; processing failures are only visible through status polling.
func webhookHandler(orch starter, checker media.RecordingChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "webhook")

		if secret := os.Getenv("WEBHOOK_SECRET"); secret != "" {
			if r.Header.Get("X-Goog-Channel-Token") != secret {
				reqLog.Warn("webhook token mismatch")
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}

		state := r.Header.Get("X-Goog-Resource-State")
		if state != "sync" && state != "update" {
			reqLog.WithField("resource_state", state).Info("ignoring notification state")
			w.WriteHeader(http.StatusOK)
			return
		}

		// The changed-file header names the recording; the resource ID only
		// names the watch channel and is the same for every notification.
		fileID := r.Header.Get("X-Goog-Changed")
		if fileID == "" {
			// Channel confirmation or a notification without a file.
			w.WriteHeader(http.StatusOK)
			return
		}

		if checker != nil {
			recording, err := checker.IsRecording(r.Context(), fileID)
			if err != nil {
				reqLog.WithError(err).Error("could not inspect changed file")
				w.WriteHeader(http.StatusOK)
				return
			}
			if !recording {
				reqLog.WithField("file_id", fileID).Info("ignoring non-video file")
				w.WriteHeader(http.StatusOK)
				return
			}
		}

		res, err := orch.StartProcessing(r.Context(), fileID)
		if err != nil {
			// Acknowledge anyway so Drive does not retry forever.
			reqLog.WithError(err).Error("failed to trigger processing from webhook")
			w.WriteHeader(http.StatusOK)
			return
		}
		reqLog.WithField("meeting_id", res.MeetingID).WithField("started", res.Started).Info("webhook processed")
		writeJSON(w, reqLog, http.StatusAccepted, res)
	}
}

func buildStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Storage.Backend {
	case "firestore":
		return store.NewFirestore(ctx, cfg.Storage.ProjectID, cfg.Storage.Collection)
	default:
		return store.NewMemory(), nil
	}
}

func buildDownloader(ctx context.Context, cfg *config.Config) (media.Downloader, error) {
	switch cfg.Media.Source {
	case "drive":
		return media.NewDrive(ctx, cfg.Media.TempDir)
	case "gcs":
		return media.NewGCS(ctx, cfg.Media.Bucket, cfg.Media.TempDir)
	default:
		return media.NewLocal(cfg.Media.TempDir), nil
	}
}

func buildInsightsClient(cfg *config.Config) (insights.Client, error) {
	switch cfg.Insights.Backend {
	case "gemini":
		key := os.Getenv("GEMINI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for the gemini backend")
		}
		return insights.NewGemini(key, cfg.Insights.Model), nil
	default:
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai backend")
		}
		return insights.NewOpenAI(key, cfg.Insights.Model, "https://api.openai.com/v1"), nil
	}
}

func writeJSON(w http.ResponseWriter, reqLog *logrus.Entry, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		reqLog.WithField("error", err.Error()).Error("failed to write response")
	}
}

func httpError(w http.ResponseWriter, reqLog *logrus.Entry, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "meeting not found", http.StatusNotFound)
		return
	}
	reqLog.WithField("error", err.Error()).Error("request failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
