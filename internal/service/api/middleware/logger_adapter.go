package middleware

import (
	"io"

	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
	"github.com/labstack/gommon/log"
)

// Logger Echo 내부 로그(서버 시작 실패 등)를 애플리케이션 로거로 보내는 echo.Logger 구현체
type Logger struct {
	*applog.Logger
}

func (l Logger) Output() io.Writer {
	return l.Logger.Out
}

func (l Logger) SetOutput(w io.Writer) {
	l.Logger.SetOutput(w)
}

// Prefix 접두사는 component 필드로 대신하므로 사용하지 않습니다.
func (l Logger) Prefix() string {
	return ""
}

func (l Logger) SetPrefix(string) {}

func (l Logger) Level() log.Lvl {
	switch l.Logger.Level {
	case applog.TraceLevel, applog.DebugLevel:
		return log.DEBUG
	case applog.InfoLevel:
		return log.INFO
	case applog.WarnLevel:
		return log.WARN
	case applog.ErrorLevel, applog.FatalLevel, applog.PanicLevel:
		return log.ERROR
	}
	return log.OFF
}

// SetLevel 전역 로그 레벨은 애플리케이션 설정이 결정하므로 Echo의 요청은 무시합니다.
func (l Logger) SetLevel(log.Lvl) {}

func (l Logger) SetHeader(string) {}

func (l Logger) entry() *applog.Entry {
	return l.Logger.WithField("component", "api.echo")
}

func (l Logger) Print(i ...any)                 { l.entry().Print(i...) }
func (l Logger) Printf(format string, a ...any) { l.entry().Printf(format, a...) }
func (l Logger) Printj(j log.JSON)              { l.entry().WithFields(applog.Fields(j)).Print() }

func (l Logger) Debug(i ...any)                 { l.entry().Debug(i...) }
func (l Logger) Debugf(format string, a ...any) { l.entry().Debugf(format, a...) }
func (l Logger) Debugj(j log.JSON)              { l.entry().WithFields(applog.Fields(j)).Debug() }

func (l Logger) Info(i ...any)                 { l.entry().Info(i...) }
func (l Logger) Infof(format string, a ...any) { l.entry().Infof(format, a...) }
func (l Logger) Infoj(j log.JSON)              { l.entry().WithFields(applog.Fields(j)).Info() }

func (l Logger) Warn(i ...any)                 { l.entry().Warn(i...) }
func (l Logger) Warnf(format string, a ...any) { l.entry().Warnf(format, a...) }
func (l Logger) Warnj(j log.JSON)              { l.entry().WithFields(applog.Fields(j)).Warn() }

func (l Logger) Error(i ...any)                 { l.entry().Error(i...) }
func (l Logger) Errorf(format string, a ...any) { l.entry().Errorf(format, a...) }
func (l Logger) Errorj(j log.JSON)              { l.entry().WithFields(applog.Fields(j)).Error() }

func (l Logger) Fatal(i ...any)                 { l.entry().Fatal(i...) }
func (l Logger) Fatalf(format string, a ...any) { l.entry().Fatalf(format, a...) }
func (l Logger) Fatalj(j log.JSON)              { l.entry().WithFields(applog.Fields(j)).Fatal() }

func (l Logger) Panic(i ...any)                 { l.entry().Panic(i...) }
func (l Logger) Panicf(format string, a ...any) { l.entry().Panicf(format, a...) }
func (l Logger) Panicj(j log.JSON)              { l.entry().WithFields(applog.Fields(j)).Panic() }
