package ai

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"mets-backend/internal/models"
)

const (
	DefaultSystemPrompt    = "Sen MehmetEndustriyelTakip uygulaması için bir asistansın. Üretim, stok, siparişler ve genel fabrika süreçleri hakkında bilgi verebilirsin. Sorulara net, kısa ve profesyonel cevaplar ver."
	DefaultAskSystemPrompt = "Kısa ve öz cevaplar ver."

	invalidMessagePrompt = "Geçersiz mesaj formatı"
)

type Config struct {
	ActiveService   string
	SystemPrompt    string
	AskSystemPrompt string
}

// MessageContent is a new user message, optionally with an image.
type MessageContent struct {
	Text     string
	ImageURL string
}

// Service dispatches to the active provider. Its configuration is fixed at
// construction, so it is safe for concurrent use.
type Service struct {
	cfg       Config
	providers map[string]Provider
	sim       *Simulator
	logger    *zap.Logger
}

func NewService(cfg Config, sim *Simulator, logger *zap.Logger, providers ...Provider) *Service {
	if cfg.ActiveService == "" {
		cfg.ActiveService = OpenRouterID
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.AskSystemPrompt == "" {
		cfg.AskSystemPrompt = DefaultAskSystemPrompt
	}
	if sim == nil {
		sim = NewSimulator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		cfg:       cfg,
		providers: make(map[string]Provider, len(providers)),
		sim:       sim,
		logger:    logger,
	}
	for _, p := range providers {
		s.providers[p.ID()] = p
	}
	return s
}

// SendMessage continues a conversation. The system prompt is prepended only
// when history is empty.
func (s *Service) SendMessage(ctx context.Context, content MessageContent, history []models.ChatMessage, opts *models.ChatOptions) models.ChatResponse {
	if strings.TrimSpace(content.Text) == "" {
		s.logger.Warn("invalid chat message content")
		return s.sim.Respond(ctx, invalidMessagePrompt, s.cfg.ActiveService, nil)
	}

	current := models.ChatMessage{Role: models.RoleUser, Content: content.Text, ImageURL: content.ImageURL}

	var messages []models.ChatMessage
	if len(history) > 0 {
		messages = make([]models.ChatMessage, 0, len(history)+1)
		messages = append(messages, history...)
	} else {
		messages = []models.ChatMessage{{Role: models.RoleSystem, Content: s.cfg.SystemPrompt}}
	}
	messages = append(messages, current)

	return s.dispatch(ctx, messages, opts, ModeChat)
}

// Ask sends a one-shot prompt with the short answer system prompt.
func (s *Service) Ask(ctx context.Context, prompt string, opts *models.ChatOptions) models.ChatResponse {
	messages := []models.ChatMessage{
		{Role: models.RoleSystem, Content: s.cfg.AskSystemPrompt},
		{Role: models.RoleUser, Content: prompt},
	}
	return s.dispatch(ctx, messages, opts, ModeInstruct)
}

// AnalyzeOrder asks for a short risk and delivery assessment of an order.
func (s *Service) AnalyzeOrder(ctx context.Context, o models.Order) models.ChatResponse {
	var b strings.Builder
	b.WriteString("Aşağıdaki siparişi analiz et ve gecikme riski ile önerilerini kısaca yaz.\n")
	fmt.Fprintf(&b, "Sipariş No: %s\nMüşteri: %s\nDurum: %s\nİlerleme: %%%d\nÖncelik: %s\nRisk: %s\n",
		o.OrderNo, o.CustomerInfo.Name, o.Status, o.Progress, o.Priority, o.RiskLevel)
	for _, c := range o.Cells {
		fmt.Fprintf(&b, "- %d x %s (%s), teslim: %s\n", c.Quantity, c.ProductTypeCode, c.TechnicalValues, c.DeliveryDate)
	}
	return s.Ask(ctx, b.String(), &models.ChatOptions{})
}

func (s *Service) dispatch(ctx context.Context, messages []models.ChatMessage, opts *models.ChatOptions, mode Mode) models.ChatResponse {
	prompt := lastUserContent(messages)

	p, ok := s.providers[s.cfg.ActiveService]
	if !ok {
		s.logger.Warn("active ai service not supported, answering in demo mode", zap.String("service", s.cfg.ActiveService))
		return s.sim.Respond(ctx, prompt, s.cfg.ActiveService, nil)
	}
	if !p.Configured() {
		s.logger.Info("ai provider not configured, answering in demo mode", zap.String("service", p.ID()))
		return s.sim.Respond(ctx, prompt, DemoSource, nil)
	}

	var o models.ChatOptions
	if opts != nil {
		o = *opts
	}

	raw, err := p.Send(ctx, messages, o, mode)
	if err != nil {
		s.logger.Warn("ai provider call failed", zap.String("service", p.ID()), zap.Error(err))
		return s.sim.Respond(ctx, prompt, p.ID(), err)
	}

	text, err := p.Normalize(raw)
	if err != nil {
		s.logger.Warn("ai provider response not recognised", zap.String("service", p.ID()), zap.Error(err))
		return s.sim.Respond(ctx, prompt, p.ID(), err)
	}

	return models.ChatResponse{Text: text, Success: true, Source: p.ID(), Raw: raw}
}

// Status reports the active service and each provider's configuration.
func (s *Service) Status() models.ServiceStatus {
	st := models.ServiceStatus{
		ActiveService: s.cfg.ActiveService,
		Providers:     make(map[string]models.ProviderStatus, len(s.providers)),
	}
	for id, p := range s.providers {
		st.Providers[id] = p.Status()
	}
	return st
}

func lastUserContent(messages []models.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
