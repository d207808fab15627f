package analyst

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/books-engine/ledger"
)

// User-facing replies.
const (
	MsgMissingKey = "Please enter your Gemini API Key in Settings to use the AI Analyst."
	MsgFailure    = "An error occurred while communicating with the AI Analyst. Please check your API Key."
	MsgEmpty      = "I couldn't generate an analysis at this time."
)

const DefaultTimeout = 30 * time.Second

type Service struct {
	NewModel  ModelFactory
	APIKey    string // used when a call brings no key of its own
	ModelName string
	Timeout   time.Duration
	Log       logrus.FieldLogger
}

// NewService returns a Gemini-backed service.
func NewService(apiKey, model string, timeout time.Duration, log logrus.FieldLogger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{NewModel: NewGeminiModel, APIKey: apiKey, ModelName: model, Timeout: timeout, Log: log}
}

// Analyze answers query with the configured key.
func (s *Service) Analyze(ctx context.Context, data ledger.ERPData, query string) string {
	return s.AnalyzeWithKey(ctx, data, query, "")
}

// AnalyzeWithKey answers query, preferring apiKey over the configured key.
// data must be a copy; it is only read.
func (s *Service) AnalyzeWithKey(ctx context.Context, data ledger.ERPData, query, apiKey string) string {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		key = strings.TrimSpace(s.APIKey)
	}
	if key == "" {
		return MsgMissingKey
	}

	log := s.Log.WithField("model", s.ModelName)
	prompt, err := BuildPrompt(BuildContext(data), query)
	if err != nil {
		log.WithError(err).Error("analyst prompt failed")
		return MsgFailure
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	model, err := s.NewModel(ctx, key, s.ModelName)
	if err != nil {
		log.WithError(err).Error("analyst model unavailable")
		return MsgFailure
	}

	started := time.Now()
	reply, err := model.Generate(ctx, SystemInstruction, prompt)
	log = log.WithField("elapsed_ms", time.Since(started).Milliseconds())
	if err != nil {
		log.WithError(err).Error("analyst request failed")
		return MsgFailure
	}
	if strings.TrimSpace(reply) == "" {
		log.Warn("analyst returned an empty reply")
		return MsgEmpty
	}
	log.Info("analyst replied")
	return reply
}
