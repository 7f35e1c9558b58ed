package telegram

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
	"github.com/darkkaiser/autodelivery-server/pkg/strutil"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const maxRetries = 3

// sendMessage 메시지를 전송합니다. 길이 제한을 넘으면 줄 단위로 나누어 전송하며, 키보드는 마지막 조각에만 첨부합니다.
func (r *Relay) sendMessage(ctx context.Context, message string, markup *tgbotapi.InlineKeyboardMarkup) error {
	chunks := splitMessage(message, messageMaxLength)
	for i, chunk := range chunks {
		var m *tgbotapi.InlineKeyboardMarkup
		if i == len(chunks)-1 {
			m = markup
		}
		if err := r.sendSingleMessage(ctx, chunk, m, true); err != nil {
			return err
		}
	}
	return nil
}

// splitMessage 메시지를 limit 바이트 이하의 조각으로 나눕니다. 가능한 한 줄바꿈 경계에서 자릅니다.
func splitMessage(message string, limit int) []string {
	if len(message) <= limit {
		return []string{message}
	}

	var (
		chunks []string
		sb     strings.Builder
	)
	sb.Grow(limit)

	flush := func() {
		if sb.Len() > 0 {
			chunks = append(chunks, sb.String())
			sb.Reset()
		}
	}

	for line := range strings.SplitSeq(message, "\n") {
		needed := len(line)
		if sb.Len() > 0 {
			needed++
		}

		if sb.Len()+needed <= limit {
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(line)
			continue
		}

		flush()

		for len(line) > limit {
			var chunk string
			chunk, line = safeSplit(line, limit)
			chunks = append(chunks, chunk)
		}
		sb.WriteString(line)
	}
	flush()

	return chunks
}

// safeSplit UTF-8 문자 경계를 지키며 limit 바이트 이하로 자릅니다.
func safeSplit(s string, limit int) (chunk, remainder string) {
	if len(s) <= limit {
		return s, ""
	}

	splitIndex := limit
	for splitIndex > 0 && !utf8.RuneStart(s[splitIndex]) {
		splitIndex--
	}

	if splitIndex == 0 {
		return s[:limit], s[limit:]
	}

	return s[:splitIndex], s[splitIndex:]
}

func extractTelegramErrorCode(err error) (code int, retryAfter int) {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.ResponseParameters.RetryAfter
	}
	var apiErrValue tgbotapi.Error
	if errors.As(err, &apiErrValue) {
		return apiErrValue.Code, apiErrValue.ResponseParameters.RetryAfter
	}
	return 0, 0
}

// shouldRetryError 4xx 중에는 429만 재시도하고, 그 밖의 오류(5xx, 네트워크)는 재시도합니다.
func shouldRetryError(errCode int) bool {
	if errCode >= 400 && errCode < 500 {
		return errCode == 429
	}
	return true
}

func (r *Relay) sendSingleMessage(ctx context.Context, message string, markup *tgbotapi.InlineKeyboardMarkup, useHTML bool) error {
	messageConfig := tgbotapi.NewMessage(r.chatID, message)
	messageConfig.DisableWebPagePreview = true
	if useHTML {
		messageConfig.ParseMode = tgbotapi.ModeHTML
	}
	if markup != nil {
		messageConfig.ReplyMarkup = *markup
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, err := r.client.Send(messageConfig)
		if err == nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"chat_id": r.chatID,
				"attempt": attempt,
				"html":    useHTML,
			}).Debug("텔레그램 메시지 전송 성공")
			return nil
		}

		lastErr = err
		applog.WithComponentAndFields(component, applog.Fields{
			"chat_id": r.chatID,
			"attempt": attempt,
			"error":   err,
		}).Warn("텔레그램 메시지 전송 실패")

		errCode, retryAfter := extractTelegramErrorCode(err)

		// HTML 파싱 오류는 일반 텍스트로 한 번 더 보냅니다.
		if useHTML && errCode == 400 {
			applog.WithComponentAndFields(component, applog.Fields{
				"chat_id": r.chatID,
			}).Warn("HTML 파싱 오류로 일반 텍스트로 재전송합니다")
			return r.sendSingleMessage(ctx, strutil.StripHTMLTags(message), markup, false)
		}

		if !shouldRetryError(errCode) || attempt >= maxRetries {
			break
		}

		wait := r.retryDelay
		if retryAfter > 0 {
			wait = time.Duration(retryAfter) * time.Second
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"chat_id": r.chatID,
		"error":   lastErr,
	}).Error("텔레그램 메시지 최종 전송 실패")

	return lastErr
}
