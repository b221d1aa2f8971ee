package base

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var LogGlobal = NewLogCategory("Global")

/***************************************
 * Log levels
 ***************************************/

type LogLevel int32

const (
	LOG_ALL LogLevel = iota
	LOG_TRACE
	LOG_DEBUG
	LOG_VERBOSE
	LOG_INFO
	LOG_WARNING
	LOG_ERROR
	LOG_FATAL
)

func (x LogLevel) String() string {
	switch x {
	case LOG_ALL:
		return "ALL"
	case LOG_TRACE:
		return "TRACE"
	case LOG_DEBUG:
		return "DEBUG"
	case LOG_VERBOSE:
		return "VERBOSE"
	case LOG_INFO:
		return "INFO"
	case LOG_WARNING:
		return "WARNING"
	case LOG_ERROR:
		return "ERROR"
	case LOG_FATAL:
		return "FATAL"
	default:
		UnexpectedValue(x)
		return ""
	}
}
func (x LogLevel) IsVisible(level LogLevel) bool {
	return level >= x
}
func (x LogLevel) Style(dst io.Writer) {
	switch x {
	case LOG_TRACE:
		fmt.Fprint(dst, ANSI_FG0_CYAN.String(), ANSI_FAINT.String())
	case LOG_DEBUG:
		fmt.Fprint(dst, ANSI_FG0_MAGENTA.String(), ANSI_FAINT.String())
	case LOG_VERBOSE:
		fmt.Fprint(dst, ANSI_FG0_WHITE.String(), ANSI_FAINT.String())
	case LOG_INFO:
		fmt.Fprint(dst, ANSI_FG1_WHITE.String())
	case LOG_WARNING:
		fmt.Fprint(dst, ANSI_FG1_YELLOW.String())
	case LOG_ERROR:
		fmt.Fprint(dst, ANSI_FG1_RED.String())
	case LOG_FATAL:
		fmt.Fprint(dst, ANSI_FG1_RED.String(), ANSI_UNDERLINE.String())
	}
}

/***************************************
 * Log categories
 ***************************************/

type LogCategory struct {
	Name  string
	Color Color3b
	Level LogLevel
}

var gLogCategories = NewSharedMapT[string, *LogCategory]()

func NewLogCategory(name string) *LogCategory {
	category := &LogCategory{
		Name:  name,
		Color: NewColorFromStringHash(name).Quantize(),
		Level: LOG_ALL,
	}
	gLogCategories.Add(name, category)
	return category
}

func FindLogCategory(name string) (*LogCategory, bool) {
	return gLogCategories.Get(name)
}
func SetLogCategoryLevel(name string, level LogLevel) error {
	if category, ok := gLogCategories.Get(name); ok {
		category.Level = level
		return nil
	}
	return MakeError("unknown log category %q", name)
}

/***************************************
 * Immediate logger
 ***************************************/

type logger struct {
	barrier sync.Mutex
	dst     io.Writer
	visible LogLevel
}

var gLogger = logger{
	dst:     os.Stderr,
	visible: LOG_INFO,
}

func SetLogVisibleLevel(level LogLevel) {
	gLogger.barrier.Lock()
	defer gLogger.barrier.Unlock()
	gLogger.visible = level
}
func SetLogOutput(dst io.Writer) (previous io.Writer) {
	gLogger.barrier.Lock()
	defer gLogger.barrier.Unlock()
	previous = gLogger.dst
	gLogger.dst = dst
	return
}
func IsLogLevelActive(level LogLevel) bool {
	return gLogger.visible.IsVisible(level)
}
func FlushLog() {
	gLogger.barrier.Lock()
	defer gLogger.barrier.Unlock()
	FlushWriterIFP(gLogger.dst)
}

func (x *logger) Log(category *LogCategory, level LogLevel, msg string, args ...interface{}) {
	if !x.visible.IsVisible(level) || !category.Level.IsVisible(level) {
		return
	}

	x.barrier.Lock()
	defer x.barrier.Unlock()

	elapsed := time.Since(StartedAt())
	fmt.Fprintf(x.dst, "%s%10.3f%s ", ANSI_FAINT, elapsed.Seconds(), ANSI_RESET)
	level.Style(x.dst)
	fmt.Fprintf(x.dst, "%-7s%s %s%s%s: ", level, ANSI_RESET, category.Color.Ansi(true), category.Name, ANSI_RESET)
	level.Style(x.dst)
	fmt.Fprintf(x.dst, msg, args...)
	fmt.Fprintln(x.dst, ANSI_RESET.String())
}

/***************************************
 * Log functions
 ***************************************/

func LogIf(level LogLevel, category *LogCategory, enabled bool, msg string, args ...interface{}) {
	if enabled {
		gLogger.Log(category, level, msg, args...)
	}
}

func LogVerbose(category *LogCategory, msg string, args ...interface{}) {
	gLogger.Log(category, LOG_VERBOSE, msg, args...)
}
func LogInfo(category *LogCategory, msg string, args ...interface{}) {
	gLogger.Log(category, LOG_INFO, msg, args...)
}

var logWarningsSeenOnce = NewSharedMapT[string, int]()

func LogWarning(category *LogCategory, msg string, args ...interface{}) {
	gLogger.Log(category, LOG_WARNING, msg, args...)
}
func LogWarningOnce(category *LogCategory, msg string, args ...interface{}) {
	formatted := fmt.Sprintf(msg, args...)
	if _, loaded := logWarningsSeenOnce.FindOrAdd(formatted, 1); !loaded {
		LogWarning(category, "%s", formatted)
	}
}
func LogError(category *LogCategory, msg string, args ...interface{}) {
	gLogger.Log(category, LOG_ERROR, msg, args...)
}
func LogFatal(msg string, args ...interface{}) {
	gLogger.Log(LogGlobal, LOG_FATAL, msg, args...)
	FlushLog()
	os.Exit(1)
}

func LogPanic(category *LogCategory, msg string, args ...interface{}) {
	LogError(category, msg, args...)
	Panicf(msg, args...)
}
func LogPanicErr(category *LogCategory, err error) {
	LogError(category, "%v", err)
	Panic(err)
}
func LogPanicIfFailed(category *LogCategory, err error) {
	if err != nil {
		LogPanicErr(category, err)
	}
}

/***************************************
 * Error helpers
 ***************************************/

func MakeError(msg string, args ...interface{}) error {
	return fmt.Errorf(msg, args...)
}

func MakeUnexpectedValueError(dst interface{}, any interface{}) error {
	return MakeError("unexpected value %q for %T", MakeString(any), dst)
}

func UnexpectedValuePanic(dst interface{}, any interface{}) {
	LogPanicErr(LogGlobal, MakeUnexpectedValueError(dst, any))
}
