// Package pipeline composes the guard checks and provider clients into the
// four diary operations: transcribe, organize, summarize, generate image.
// Each operation validates its input locally before any network call and
// tags failures with the stage they occurred in.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/record-crew/recordai/guard"
	"github.com/record-crew/recordai/types"
	"go.uber.org/zap"
)

// Stage names, used in errors, logs and metrics labels.
const (
	StageTranscribe = "transcribe"
	StageOrganize   = "organize"
	StageSummarize  = "summarize"
	StageImage      = "image"
)

const organizeSystemPrompt = "You rewrite Korean text naturally while keeping the user's tone."

const organizeUserPrompt = `아래 공연 후기를 '말투와 분위기를 최대한 유지'하면서
자연스럽게 정돈된 한 문단으로 정리해줘.
- 핵심만 정리하되 내용은 크게 축약하지 말 것
- 말투, 감정선, 표현 분위기를 유지
- 너무 딱딱하지 않고 사용자 후기 느낌을 살릴 것
- 불필요한 반복/오타/비문만 자연스럽게 고치기
- 불릿포인트 금지
후기:
%s
`

const summarizeSystemPrompt = "You summarize Korean performance reviews into natural Korean (3-5 sentences) while preserving the original emotion and atmosphere."

const summarizeUserPrompt = `아래 공연 후기를 **3-5문장의 자연스러운 한국어**로 요약해줘.
요구사항:
- 핵심 장면, 분위기, 감정, 공간적/분위기적 요소에 집중
- 불릿포인트나 리스트 형식 금지
- 요약에 대한 메타 코멘트 금지
- 자연스럽고 읽기 좋은 문장으로 작성
- 원본 후기의 감정과 분위기를 최대한 살리기

후기:
%s
`

// Transcriber converts audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio types.AudioPayload) (string, error)
}

// Completer runs a system + user chat exchange and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ImageGenerator renders a prompt into a hosted image URL.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Recorder receives per-stage timing observations. Implementations must be
// safe for concurrent use; a nil Recorder disables recording.
type Recorder interface {
	ObserveStage(stage string, duration time.Duration, err error)
}

// Limits holds the payload guard thresholds.
type Limits struct {
	// AudioMaxMB is the inclusive upload ceiling in mebibytes.
	AudioMaxMB int64
	// PromptMaxChars caps image prompts in runes.
	PromptMaxChars int
}

// StageError wraps a failure with the pipeline stage it occurred in. The
// underlying classification is preserved for errors.As / errors.Is.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error { return e.Err }

// Orchestrator wires the guard checks and provider clients together.
type Orchestrator struct {
	transcriber Transcriber
	chat        Completer
	image       ImageGenerator
	limits      Limits
	logger      *zap.Logger
	recorder    Recorder
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder attaches a stage observation recorder.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// New creates an orchestrator over the three provider clients.
func New(transcriber Transcriber, chat Completer, image ImageGenerator, limits Limits, logger *zap.Logger, opts ...Option) *Orchestrator {
	if limits.AudioMaxMB <= 0 {
		limits.AudioMaxMB = 25
	}
	if limits.PromptMaxChars <= 0 {
		limits.PromptMaxChars = 900
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	o := &Orchestrator{
		transcriber: transcriber,
		chat:        chat,
		image:       image,
		limits:      limits,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Transcribe checks the upload size and converts the audio to text. Oversize
// uploads are rejected before any network traffic.
func (o *Orchestrator) Transcribe(ctx context.Context, audio types.AudioPayload) (string, error) {
	start := time.Now()

	if err := guard.CheckAudio(audio.Data, o.limits.AudioMaxMB); err != nil {
		return "", o.finish(StageTranscribe, start, err)
	}

	text, err := o.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return "", o.finish(StageTranscribe, start, err)
	}

	o.finish(StageTranscribe, start, nil)
	o.logger.Info("transcription pipeline complete",
		zap.String("filename", audio.EffectiveFilename()),
		zap.Int("chars", len([]rune(text))),
	)
	return text, nil
}

// Organize rewrites a review into one tidy paragraph, preserving the
// author's tone.
func (o *Orchestrator) Organize(ctx context.Context, text string) (string, error) {
	start := time.Now()

	if strings.TrimSpace(text) == "" {
		return "", o.finish(StageOrganize, start,
			types.NewError(types.ErrValidation, "review text is required"))
	}

	result, err := o.chat.Complete(ctx, organizeSystemPrompt, fmt.Sprintf(organizeUserPrompt, text))
	if err != nil {
		return "", o.finish(StageOrganize, start, err)
	}

	o.finish(StageOrganize, start, nil)
	return result, nil
}

// Summarize condenses a review into three to five Korean sentences.
func (o *Orchestrator) Summarize(ctx context.Context, text string) (string, error) {
	start := time.Now()

	if strings.TrimSpace(text) == "" {
		return "", o.finish(StageSummarize, start,
			types.NewError(types.ErrValidation, "review text is required"))
	}

	result, err := o.chat.Complete(ctx, summarizeSystemPrompt, fmt.Sprintf(summarizeUserPrompt, text))
	if err != nil {
		return "", o.finish(StageSummarize, start, err)
	}

	o.finish(StageSummarize, start, nil)
	return result, nil
}

// GenerateImage renders a prompt into a hosted image URL. Overlong prompts
// are truncated downstream, never rejected.
func (o *Orchestrator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	if strings.TrimSpace(prompt) == "" {
		return "", o.finish(StageImage, start,
			types.NewError(types.ErrValidation, "image prompt is required"))
	}

	url, err := o.image.Generate(ctx, prompt)
	if err != nil {
		return "", o.finish(StageImage, start, err)
	}

	o.finish(StageImage, start, nil)
	return url, nil
}

// finish records the stage observation and, on failure, wraps the error with
// its stage. Returns nil when err is nil.
func (o *Orchestrator) finish(stage string, start time.Time, err error) error {
	if o.recorder != nil {
		o.recorder.ObserveStage(stage, time.Since(start), err)
	}
	if err == nil {
		return nil
	}
	o.logger.Warn("pipeline stage failed", zap.String("stage", stage), zap.Error(err))
	return &StageError{Stage: stage, Err: err}
}
