package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/helpfast/helpdesk/internal/assistant"
	"github.com/helpfast/helpdesk/internal/domain"
	"github.com/helpfast/helpdesk/internal/repository"
	apperrors "github.com/helpfast/helpdesk/pkg/util"
)

// Reply is the assistant's answer to a user question. EscalateToHuman is set
// when the assistant could not produce a useful answer and a person should
// take over.
type Reply struct {
	Text            string `json:"resposta"`
	EscalateToHuman bool   `json:"escalarParaHumano"`
}

// Categorization is a keyword-derived classification of a ticket reason.
type Categorization struct {
	Category    string  `json:"categoria"`
	Subcategory string  `json:"subcategoria"`
	Confidence  float64 `json:"confianca"`
}

// PatternStats summarizes tickets opened inside an analysis window.
type PatternStats struct {
	TotalTickets      int     `json:"totalChamados"`
	MeanResolutionHrs float64 `json:"tempoMedioResolucao"`
	ResolutionRatePct float64 `json:"taxaResolucao"`
}

// DailyTrend is one day's slice of the analysis window.
type DailyTrend struct {
	Date              time.Time `json:"data"`
	TicketCount       int       `json:"quantidadeChamados"`
	MeanResolutionHrs float64   `json:"tempoMedioResolucao"`
}

// RecurrentProblem is a ticket reason grouped by frequency.
type RecurrentProblem struct {
	Description string `json:"descricao"`
	Frequency   int    `json:"frequencia"`
}

// PatternAnalysis is the full report produced by AnalyzePatterns.
type PatternAnalysis struct {
	Stats             PatternStats       `json:"estatisticas"`
	DailyTrend        []DailyTrend       `json:"tendenciaTempo"`
	RecurrentProblems []RecurrentProblem `json:"problemasRecorrentes"`
}

var errDocumentStoreUnset = errors.New("document store not configured")

const (
	llmFailureReply      = "Não foi possível obter uma resposta no momento. Tente novamente mais tarde."
	chatFailureReply     = "Desculpe, ocorreu um erro ao processar sua mensagem com o serviço de IA. Tente novamente mais tarde."
	emptyMessageReply    = "Por favor, envie uma mensagem válida."
	maxFAQSuggestions    = 5
	maxRecurrentProblems = 5
)

// AssistantService answers user questions grounded on the procedures
// document, categorizes tickets, suggests FAQ entries, and produces
// pattern reports over the ticket base.
type AssistantService struct {
	store    repository.Store
	llm      assistant.LLMClient
	docs     assistant.DocumentStore
	docKey   string
	docCache *assistant.DocumentCache
	logger   *zap.Logger
	clock    func() time.Time
}

// AssistantDependencies bundles collaborators for the assistant service.
type AssistantDependencies struct {
	Store         repository.Store
	LLM           assistant.LLMClient
	DocumentStore assistant.DocumentStore
	DocumentKey   string
	Logger        *zap.Logger
}

// NewAssistantService constructs the service.
func NewAssistantService(deps AssistantDependencies) *AssistantService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssistantService{
		store:    deps.Store,
		llm:      deps.LLM,
		docs:     deps.DocumentStore,
		docKey:   deps.DocumentKey,
		docCache: assistant.NewDocumentCache(),
		logger:   logger,
		clock:    time.Now,
	}
}

// AskDocument answers a question grounded on the procedures document. A
// failed document fetch degrades to an unanchored prompt; a failed LLM call
// degrades to a canned reply flagged for human escalation.
func (s *AssistantService) AskDocument(ctx context.Context, question string, userID *int64) (*Reply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperrors.NewValidationError("question required", nil)
	}

	document, err := s.docCache.GetOrFetch(ctx, s.loadDocument)
	if err != nil {
		s.logger.Warn("reference document unavailable, answering without it",
			zap.String("document_key", s.docKey),
			zap.Error(err))
		document = ""
	}

	userCtx := s.buildUserContext(ctx, userID)
	prompt := assistant.BuildDocumentPrompt(document, userCtx)

	answer, err := s.llm.Ask(ctx, question, prompt)
	if err != nil {
		s.logger.Error("assistant question failed", zap.Error(err))
		return &Reply{Text: llmFailureReply, EscalateToHuman: true}, nil
	}

	return &Reply{Text: answer}, nil
}

// ProcessMessage handles the interactive chat flow for a known user. Blank
// messages get a polite nudge instead of an error.
func (s *AssistantService) ProcessMessage(ctx context.Context, userID int64, message string) (*Reply, error) {
	if strings.TrimSpace(message) == "" {
		return &Reply{Text: emptyMessageReply}, nil
	}

	document, err := s.docCache.GetOrFetch(ctx, s.loadDocument)
	if err != nil {
		s.logger.Error("chat message failed, procedures unavailable",
			zap.Int64("user_id", userID),
			zap.Error(err))
		return &Reply{Text: chatFailureReply, EscalateToHuman: true}, nil
	}

	userCtx := s.buildUserContext(ctx, &userID)
	prompt := assistant.BuildChatPrompt(document, userCtx)

	answer, err := s.llm.Ask(ctx, message, prompt)
	if err != nil {
		s.logger.Error("chat message failed",
			zap.Int64("user_id", userID),
			zap.Error(err))
		return &Reply{Text: chatFailureReply, EscalateToHuman: true}, nil
	}

	return &Reply{Text: answer}, nil
}

// Categorize classifies a ticket by keyword rules over its subject and
// reason. It never fails; unmatched text lands in the catch-all bucket with
// low confidence.
func (s *AssistantService) Categorize(subject, reason string) Categorization {
	text := strings.ToLower(subject + " " + reason)

	switch {
	case containsAny(text, "senha", "login", "acesso"):
		return Categorization{Category: "Acesso", Subcategory: "Credenciais", Confidence: 0.7}
	case containsAny(text, "internet", "rede", "wifi"):
		return Categorization{Category: "Rede", Subcategory: "Conectividade", Confidence: 0.6}
	case containsAny(text, "impressora", "scanner", "hardware"):
		return Categorization{Category: "Hardware", Subcategory: "Periféricos", Confidence: 0.55}
	case containsAny(text, "erro", "bug", "falha"):
		return Categorization{Category: "Aplicação", Subcategory: "Instabilidade", Confidence: 0.5}
	default:
		return Categorization{Category: "Geral", Subcategory: "Outros", Confidence: 0.4}
	}
}

// SuggestFAQs returns up to five active FAQ questions matching any keyword of
// the description.
func (s *AssistantService) SuggestFAQs(ctx context.Context, description string) ([]string, error) {
	keywords := strings.Fields(strings.ToLower(description))
	if len(keywords) == 0 {
		return []string{}, nil
	}

	faqs, err := s.store.FAQs().SearchActive(ctx, keywords, maxFAQSuggestions)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	questions := make([]string, 0, len(faqs))
	for _, f := range faqs {
		questions = append(questions, f.Question)
	}
	return questions, nil
}

// AnalyzePatterns reports on tickets opened between from and to inclusive.
func (s *AssistantService) AnalyzePatterns(ctx context.Context, from, to time.Time) (*PatternAnalysis, error) {
	if to.Before(from) {
		return nil, apperrors.NewValidationError("end of period cannot precede its start", map[string]any{
			"from": from,
			"to":   to,
		})
	}

	tickets, err := s.store.Tickets().ListOpenedBetween(ctx, from, to)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	report := &PatternAnalysis{
		DailyTrend:        []DailyTrend{},
		RecurrentProblems: []RecurrentProblem{},
	}
	if len(tickets) == 0 {
		return report, nil
	}

	var resolved int
	var totalHours float64
	byDay := make(map[time.Time][]domain.Ticket)
	byReason := make(map[string]int)

	for _, t := range tickets {
		if t.ClosedAt != nil {
			resolved++
			totalHours += t.ClosedAt.Sub(t.OpenedAt).Hours()
		}
		day := t.OpenedAt.Truncate(24 * time.Hour)
		byDay[day] = append(byDay[day], t)
		byReason[t.Reason]++
	}

	report.Stats.TotalTickets = len(tickets)
	report.Stats.ResolutionRatePct = round2(float64(resolved) / float64(len(tickets)) * 100)
	if resolved > 0 {
		report.Stats.MeanResolutionHrs = round2(totalHours / float64(resolved))
	}

	for day, group := range byDay {
		trend := DailyTrend{Date: day, TicketCount: len(group)}
		var hours float64
		var closed int
		for _, t := range group {
			if t.ClosedAt != nil {
				closed++
				hours += t.ClosedAt.Sub(t.OpenedAt).Hours()
			}
		}
		if closed > 0 {
			trend.MeanResolutionHrs = round2(hours / float64(closed))
		}
		report.DailyTrend = append(report.DailyTrend, trend)
	}
	sort.Slice(report.DailyTrend, func(i, j int) bool {
		return report.DailyTrend[i].Date.Before(report.DailyTrend[j].Date)
	})

	for reason, count := range byReason {
		report.RecurrentProblems = append(report.RecurrentProblems, RecurrentProblem{
			Description: reason,
			Frequency:   count,
		})
	}
	sort.Slice(report.RecurrentProblems, func(i, j int) bool {
		if report.RecurrentProblems[i].Frequency != report.RecurrentProblems[j].Frequency {
			return report.RecurrentProblems[i].Frequency > report.RecurrentProblems[j].Frequency
		}
		return report.RecurrentProblems[i].Description < report.RecurrentProblems[j].Description
	})
	if len(report.RecurrentProblems) > maxRecurrentProblems {
		report.RecurrentProblems = report.RecurrentProblems[:maxRecurrentProblems]
	}

	return report, nil
}

// loadDocument fetches the procedures document from object storage. A
// missing store means the deployment runs without grounding.
func (s *AssistantService) loadDocument(ctx context.Context) (string, error) {
	if s.docs == nil {
		return "", errDocumentStoreUnset
	}
	return s.docs.FetchDocumentText(ctx, s.docKey)
}

// buildUserContext loads the user for prompt personalization. Lookup
// failures are logged and ignored so a missing user never blocks an answer.
func (s *AssistantService) buildUserContext(ctx context.Context, userID *int64) *assistant.UserContext {
	if userID == nil || *userID <= 0 {
		return nil
	}

	user, err := s.store.Users().GetByID(ctx, *userID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("could not load user for prompt context",
				zap.Int64("user_id", *userID),
				zap.Error(err))
		}
		return nil
	}

	return &assistant.UserContext{
		Name:  user.Name,
		Email: user.Email,
		Role:  user.RoleName,
	}
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
