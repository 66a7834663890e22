package middleware

import (
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Logger middleware for logging all incoming updates. Message text is never
// logged since it may carry a password; only its length is.
func Logger(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()

			var userID int64
			var username string
			if user := c.Sender(); user != nil {
				userID = user.ID
				username = user.Username
			}

			fields := []zap.Field{
				zap.Int64("user_id", userID),
				zap.String("username", username),
			}
			fields = append(fields, updateFields(c)...)

			err := next(c)

			fields = append(fields, zap.Duration("duration", time.Since(start)))

			if err != nil {
				fields = append(fields, zap.Error(err))
				logger.Error("handler error", fields...)
			} else {
				logger.Info("request handled", fields...)
			}

			return err
		}
	}
}

func updateFields(c tele.Context) []zap.Field {
	if cb := c.Callback(); cb != nil {
		return []zap.Field{
			zap.String("type", "callback"),
			zap.String("data", cb.Data),
		}
	}

	msg := c.Message()
	switch {
	case msg == nil:
		return []zap.Field{zap.String("type", "other")}
	case msg.Document != nil:
		return []zap.Field{
			zap.String("type", "document"),
			zap.String("mime", msg.Document.MIME),
			zap.Int64("size", int64(msg.Document.FileSize)),
		}
	case msg.Video != nil:
		return []zap.Field{
			zap.String("type", "video"),
			zap.String("mime", msg.Video.MIME),
			zap.Int64("size", int64(msg.Video.FileSize)),
		}
	case len(msg.Text) > 0 && msg.Text[0] == '/':
		return []zap.Field{
			zap.String("type", "command"),
			zap.String("command", msg.Text),
		}
	default:
		return []zap.Field{
			zap.String("type", "message"),
			zap.Int("text_len", utf8.RuneCountInString(msg.Text)),
		}
	}
}
