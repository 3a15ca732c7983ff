package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"libris/internal/background"
	"libris/internal/config"
	"libris/internal/logging"
	"libris/internal/services"
	"libris/internal/services/hf"
	"libris/internal/store"
	"libris/internal/textutil"
)

// Synthesizer converts text to speech audio. The Hugging Face client is the
// real implementation.
type Synthesizer interface {
	Synthesize(ctx context.Context, model, text string) ([]byte, string, error)
}

// Request names the summary to render and where it came from.
type Request struct {
	SummaryID string
	BookID    string
	Text      string
	Language  string
}

// Result is a completed audio rendering.
type Result struct {
	ID                string  `json:"id"`
	SummaryID         string  `json:"summary_id"`
	BookID            string  `json:"book_id"`
	Language          string  `json:"language"`
	Model             string  `json:"model"`
	Format            string  `json:"format"`
	FilePath          string  `json:"file_path"`
	DurationSeconds   float64 `json:"duration_seconds"`
	SizeKB            int     `json:"size_kb"`
	SyntheticFallback bool    `json:"is_synthetic_fallback"`
	FromStore         bool    `json:"from_store,omitempty"`
}

// Orchestrator drives speech synthesis: the primary per-language voice under
// a deadline, one retry on the backup voice, and a deterministic synthetic
// waveform when every upstream attempt fails. Listen always returns audio.
type Orchestrator struct {
	cfg         *config.Config
	synthesizer Synthesizer
	store       *store.Store
	queue       *background.Queue
	logger      *slog.Logger
	audioDir    string
}

// New builds an orchestrator. Store and queue may be nil; audio files land
// under the data directory either way.
func New(cfg *config.Config, synthesizer Synthesizer, st *store.Store, queue *background.Queue, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		cfg:         cfg,
		synthesizer: synthesizer,
		store:       st,
		queue:       queue,
		logger:      logger,
		audioDir:    filepath.Join(cfg.Paths.DataDir, "audio"),
	}
}

// Listen renders the summary text as audio. Upstream synthesis failures
// degrade to the synthetic fallback voice rather than an error; only invalid
// input fails.
func (o *Orchestrator) Listen(ctx context.Context, req Request) (Result, error) {
	req.Text = strings.TrimSpace(req.Text)
	req.Language = strings.ToLower(strings.TrimSpace(req.Language))
	if req.SummaryID == "" {
		return Result{}, services.Wrap(services.ErrInvalidInput, "audio", "listen", "summary id required", nil)
	}
	if req.Text == "" {
		return Result{}, services.Wrap(services.ErrInvalidInput, "audio", "listen", "text required", nil)
	}

	if o.store != nil {
		stored, found, err := o.store.FindAudio(ctx, req.SummaryID, req.Language, "")
		if err != nil {
			o.logger.Warn("audio store lookup failed",
				logging.String(logging.FieldComponent, "audio"),
				logging.String(logging.FieldSummaryID, req.SummaryID),
				logging.Error(err))
		} else if found {
			if _, statErr := os.Stat(stored.FilePath); statErr == nil {
				return resultFromRecord(stored), nil
			}
			// Metadata without the file; re-render.
		}
	}

	duration := o.estimateDuration(req.Text)
	data, format, model, synthetic := o.synthesize(ctx, req)
	if synthetic {
		data = SynthesizeFallback(req.Text, duration)
		format = "audio/x-wav"
		model = "synthetic"
	}

	id := uuid.NewString()
	path, err := o.writeFile(id, format, data)
	if err != nil {
		return Result{}, services.Wrap(services.ErrUpstream, "audio", "listen", "write audio file", err)
	}

	result := Result{
		ID:                id,
		SummaryID:         req.SummaryID,
		BookID:            req.BookID,
		Language:          req.Language,
		Model:             model,
		Format:            format,
		FilePath:          path,
		DurationSeconds:   duration,
		SizeKB:            sizeKB(len(data)),
		SyntheticFallback: synthetic,
	}
	o.persist(result)

	o.logger.Info("audio rendered",
		logging.String(logging.FieldComponent, "audio"),
		logging.String(logging.FieldSummaryID, req.SummaryID),
		logging.String("model", model),
		logging.Float64("duration_seconds", duration),
		logging.Int("size_kb", result.SizeKB),
		logging.Bool("synthetic_fallback", synthetic))
	return result, nil
}

// synthesize tries the per-language voice, then the backup voice. A false
// final return means both upstream attempts failed and the caller should
// fall back.
func (o *Orchestrator) synthesize(ctx context.Context, req Request) ([]byte, string, string, bool) {
	if o.synthesizer == nil {
		return nil, "", "", true
	}

	primary := hf.TTSModel(req.Language)
	voices := []string{primary}
	if backup := strings.TrimSpace(o.cfg.Audio.BackupVoice); backup != "" && backup != primary {
		voices = append(voices, backup)
	}

	for _, voice := range voices {
		synthCtx, cancel := context.WithTimeout(ctx, o.cfg.SynthTimeout())
		data, format, err := o.synthesizer.Synthesize(synthCtx, voice, req.Text)
		cancel()
		if err == nil && len(data) > 0 {
			return data, format, voice, false
		}
		o.logger.Warn("speech synthesis failed",
			logging.String(logging.FieldComponent, "audio"),
			logging.String(logging.FieldSummaryID, req.SummaryID),
			logging.String("model", voice),
			logging.String(logging.FieldImpact, "trying next voice"),
			logging.Error(err))
	}
	return nil, "", "", true
}

// estimateDuration derives playback length from word count at the configured
// speaking rate, clamped to the configured bounds.
func (o *Orchestrator) estimateDuration(text string) float64 {
	wpm := o.cfg.Audio.WordsPerMinute
	if wpm <= 0 {
		wpm = 165
	}
	seconds := float64(textutil.WordCount(text)) / float64(wpm) * 60
	if minSec := float64(o.cfg.Audio.MinSeconds); seconds < minSec {
		seconds = minSec
	}
	if maxSec := float64(o.cfg.Audio.MaxSeconds); maxSec > 0 && seconds > maxSec {
		seconds = maxSec
	}
	return seconds
}

func (o *Orchestrator) writeFile(id, format string, data []byte) (string, error) {
	if err := os.MkdirAll(o.audioDir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir audio dir: %w", err)
	}
	path := filepath.Join(o.audioDir, id+extensionFor(format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// persist writes the audio metadata off the request path.
func (o *Orchestrator) persist(result Result) {
	if o.store == nil {
		return
	}
	record := store.AudioRecord{
		ID:                result.ID,
		SummaryID:         result.SummaryID,
		BookID:            result.BookID,
		Language:          result.Language,
		Model:             result.Model,
		Format:            result.Format,
		FilePath:          result.FilePath,
		DurationSeconds:   result.DurationSeconds,
		SizeKB:            result.SizeKB,
		SyntheticFallback: result.SyntheticFallback,
		CreatedAt:         time.Now(),
	}
	write := func(ctx context.Context) {
		if err := o.store.SaveAudio(ctx, record); err != nil {
			o.logger.Warn("audio persist failed",
				logging.String(logging.FieldComponent, "audio"),
				logging.String(logging.FieldSummaryID, record.SummaryID),
				logging.Error(err))
		}
	}
	if o.queue == nil || !o.queue.Submit(write) {
		write(context.Background())
	}
}

func extensionFor(format string) string {
	switch {
	case strings.Contains(format, "wav"):
		return ".wav"
	case strings.Contains(format, "flac"):
		return ".flac"
	case strings.Contains(format, "mpeg"), strings.Contains(format, "mp3"):
		return ".mp3"
	default:
		return ".bin"
	}
}

// sizeKB rounds up so nonempty audio never reports zero.
func sizeKB(bytes int) int {
	if bytes == 0 {
		return 0
	}
	return (bytes + 1023) / 1024
}

func resultFromRecord(record store.AudioRecord) Result {
	return Result{
		ID:                record.ID,
		SummaryID:         record.SummaryID,
		BookID:            record.BookID,
		Language:          record.Language,
		Model:             record.Model,
		Format:            record.Format,
		FilePath:          record.FilePath,
		DurationSeconds:   record.DurationSeconds,
		SizeKB:            record.SizeKB,
		SyntheticFallback: record.SyntheticFallback,
		FromStore:         true,
	}
}
