package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	tuningapp "github.com/compucar/backend/internal/application/tuning"
	"github.com/compucar/backend/internal/domain/identity"
	"github.com/compucar/backend/internal/domain/shared"
	"github.com/compucar/backend/internal/domain/tuning"
	tg "github.com/compucar/backend/internal/infrastructure/telegram"
	"github.com/compucar/backend/internal/infrastructure/telemetry"
)

// callbackDedupTTL bounds how long a processed callback ID is
// remembered. Telegram retries webhook deliveries within minutes, not
// days.
const callbackDedupTTL = 6 * time.Hour

// estimateOptions are the time buckets offered on the inline picker
var estimateOptions = []int{15, 30, 60, 120, 240, 1440}

// BotAPI is the slice of the Telegram client the bot service needs
type BotAPI interface {
	AdminChatID() int64
	SendMessage(ctx context.Context, chatID int64, text string, keyboard *tg.InlineKeyboardMarkup) (int, error)
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string, keyboard *tg.InlineKeyboardMarkup) error
	AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error
}

// BotService drives the admin Telegram bot: it announces new uploads
// to the admin chat and applies inline button presses back onto the
// tuning workflow.
type BotService struct {
	api         BotAPI
	tuning      *tuningapp.Service
	userRepo    identity.UserRepository
	idempotency shared.IdempotencyStore
	metrics     *telemetry.BusinessMetrics
	logger      *zap.Logger
}

// NewBotService creates the bot service
func NewBotService(
	api BotAPI,
	tuningService *tuningapp.Service,
	userRepo identity.UserRepository,
	idempotency shared.IdempotencyStore,
	logger *zap.Logger,
) *BotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BotService{
		api:         api,
		tuning:      tuningService,
		userRepo:    userRepo,
		idempotency: idempotency,
		logger:      logger,
	}
}

// SetMetrics wires the business metrics recorder
func (s *BotService) SetMetrics(metrics *telemetry.BusinessMetrics) {
	s.metrics = metrics
}

var _ shared.EventHandler = (*BotService)(nil)

// EventTypes subscribes the bot to new uploads
func (s *BotService) EventTypes() []string {
	return []string{tuning.EventTypeFileReceived}
}

// Handle announces a freshly uploaded file to the admin chat
func (s *BotService) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*tuning.FileReceivedEvent)
	if !ok {
		return nil
	}

	shortID := shortFileID(e.FileID)
	text := fmt.Sprintf(
		"New tuning file\n<b>%s</b> (%s)\nStatus: %s",
		escapeHTML(e.FileName), formatSize(e.FileSize), tuning.StatusReceived,
	)

	if _, err := s.api.SendMessage(ctx, s.api.AdminChatID(), text, statusKeyboard(shortID, tuning.StatusReceived)); err != nil {
		return fmt.Errorf("announce file %s: %w", shortID, err)
	}
	return nil
}

// HandleUpdate applies one webhook update. Malformed or replayed
// callbacks are acknowledged and dropped; only infrastructure failures
// surface as errors so Telegram retries them.
func (s *BotService) HandleUpdate(ctx context.Context, update tg.Update) error {
	cb := update.CallbackQuery
	if cb == nil {
		return nil
	}

	fresh, err := s.idempotency.MarkProcessed(ctx, "tg_callback:"+cb.ID, callbackDedupTTL)
	if err != nil {
		// Dedup store down: process anyway, a doubled status change is
		// rejected by the domain as STATUS_UNCHANGED
		s.logger.Warn("callback dedup unavailable", zap.Error(err))
	} else if !fresh {
		return s.api.AnswerCallbackQuery(ctx, cb.ID, "Already handled")
	}

	parsed, err := tg.ParseCallback(cb.Data)
	if err != nil {
		s.logger.Warn("unrecognized callback data", zap.String("data", cb.Data), zap.Error(err))
		return s.api.AnswerCallbackQuery(ctx, cb.ID, "Unsupported action")
	}

	if s.metrics != nil {
		s.metrics.RecordTelegramCallback(ctx, string(parsed.Action))
	}

	actor := s.resolveActor(ctx, cb.From.ID)

	switch parsed.Action {
	case tg.CallbackSetStatus:
		return s.applyStatus(ctx, cb, parsed, actor)
	case tg.CallbackTimeMenu:
		return s.showTimeMenu(ctx, cb, parsed)
	case tg.CallbackSetTime:
		return s.applyEstimate(ctx, cb, parsed, actor)
	}
	return s.api.AnswerCallbackQuery(ctx, cb.ID, "Unsupported action")
}

func (s *BotService) applyStatus(ctx context.Context, cb *tg.CallbackQuery, parsed tg.Callback, actor *uuid.UUID) error {
	req := tuningapp.ChangeStatusRequest{Status: parsed.Status}
	file, err := s.tuning.ChangeStatusByShortID(ctx, parsed.ShortID, actor, req)
	if isInvalidTransition(err) {
		req.Override = true
		file, err = s.tuning.ChangeStatusByShortID(ctx, parsed.ShortID, actor, req)
	}
	if err != nil {
		return s.answerDomainError(ctx, cb, err)
	}

	if err := s.refreshMessage(ctx, cb, file); err != nil {
		return err
	}
	return s.api.AnswerCallbackQuery(ctx, cb.ID, "Status set to "+file.Status)
}

func (s *BotService) showTimeMenu(ctx context.Context, cb *tg.CallbackQuery, parsed tg.Callback) error {
	file, err := s.tuning.AdminGetByShortID(ctx, parsed.ShortID)
	if err != nil {
		return s.answerDomainError(ctx, cb, err)
	}

	if cb.Message != nil {
		if err := s.api.EditMessageText(ctx, cb.Message.Chat.ID, cb.Message.MessageID,
			fileText(file)+"\n\nPick an estimated time:", timeKeyboard(parsed.ShortID)); err != nil {
			return fmt.Errorf("show time menu: %w", err)
		}
	}
	return s.api.AnswerCallbackQuery(ctx, cb.ID, "")
}

func (s *BotService) applyEstimate(ctx context.Context, cb *tg.CallbackQuery, parsed tg.Callback, actor *uuid.UUID) error {
	req := tuningapp.SetEstimatedTimeRequest{Minutes: parsed.Minutes}
	file, err := s.tuning.SetEstimatedTimeByShortID(ctx, parsed.ShortID, actor, req)
	if isInvalidState(err) {
		// Estimate picked while still RECEIVED: start processing with
		// the estimate in one step
		file, err = s.tuning.StartProcessingByShortID(ctx, parsed.ShortID, actor, tuningapp.StartProcessingRequest{
			EstimatedMinutes: &parsed.Minutes,
		})
	}
	if err != nil {
		return s.answerDomainError(ctx, cb, err)
	}

	if err := s.refreshMessage(ctx, cb, file); err != nil {
		return err
	}
	return s.api.AnswerCallbackQuery(ctx, cb.ID, "Estimated time: "+tuning.FormatEstimatedTime(parsed.Minutes))
}

// refreshMessage rewrites the announcement with the current state and
// the status keyboard
func (s *BotService) refreshMessage(ctx context.Context, cb *tg.CallbackQuery, file tuningapp.AdminFileResponse) error {
	if cb.Message == nil {
		return nil
	}
	if err := s.api.EditMessageText(ctx, cb.Message.Chat.ID, cb.Message.MessageID,
		fileText(file), statusKeyboard(file.ShortID, tuning.FileStatus(file.Status))); err != nil {
		return fmt.Errorf("refresh announcement: %w", err)
	}
	return nil
}

// answerDomainError reports a rejected action back onto the button
// press and acknowledges the update so Telegram stops retrying
func (s *BotService) answerDomainError(ctx context.Context, cb *tg.CallbackQuery, err error) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return s.api.AnswerCallbackQuery(ctx, cb.ID, domainErr.Message)
	}
	return err
}

// resolveActor maps the pressing Telegram user to a linked account for
// the audit log. Unlinked admins act anonymously.
func (s *BotService) resolveActor(ctx context.Context, telegramUserID int64) *uuid.UUID {
	if s.userRepo == nil {
		return nil
	}
	user, err := s.userRepo.FindByTelegramChatID(ctx, telegramUserID)
	if err != nil {
		return nil
	}
	return &user.ID
}

func isInvalidTransition(err error) bool {
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr) && domainErr.Code == "INVALID_TRANSITION"
}

func isInvalidState(err error) bool {
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr) && domainErr.Code == "INVALID_STATE"
}

func fileText(file tuningapp.AdminFileResponse) string {
	text := fmt.Sprintf(
		"Tuning file\n<b>%s</b> (%s)\nStatus: %s",
		escapeHTML(file.Filename), formatSize(file.FileSize), file.Status,
	)
	if file.EstimatedTimeText != "" {
		text += "\nEstimated time: " + file.EstimatedTimeText
	}
	return text
}

// statusKeyboard offers the statuses the file is not in, plus the
// estimate picker
func statusKeyboard(shortID string, current tuning.FileStatus) *tg.InlineKeyboardMarkup {
	var row []tg.InlineKeyboardButton
	if current != tuning.StatusPending {
		row = append(row, tg.InlineKeyboardButton{
			Text:         "Start processing",
			CallbackData: tg.FormatStatusCallback(shortID, string(tuning.StatusPending)),
		})
	}
	if current != tuning.StatusReady {
		row = append(row, tg.InlineKeyboardButton{
			Text:         "Mark ready",
			CallbackData: tg.FormatStatusCallback(shortID, string(tuning.StatusReady)),
		})
	}

	return &tg.InlineKeyboardMarkup{
		InlineKeyboard: [][]tg.InlineKeyboardButton{
			row,
			{{
				Text:         "Set estimated time",
				CallbackData: tg.FormatTimeMenuCallback(shortID),
			}},
		},
	}
}

// timeKeyboard renders the estimate buckets, three per row
func timeKeyboard(shortID string) *tg.InlineKeyboardMarkup {
	var rows [][]tg.InlineKeyboardButton
	var row []tg.InlineKeyboardButton
	for _, minutes := range estimateOptions {
		row = append(row, tg.InlineKeyboardButton{
			Text:         tuning.FormatEstimatedTime(minutes),
			CallbackData: tg.FormatSetTimeCallback(shortID, minutes),
		})
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return &tg.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func shortFileID(fileID uuid.UUID) string {
	return strings.ReplaceAll(fileID.String(), "-", "")[:8]
}

func formatSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

func escapeHTML(s string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return replacer.Replace(s)
}
