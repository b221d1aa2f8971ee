package base

import (
	"fmt"
	"reflect"
)

const DEBUG_ENABLED = false

var LogAssert = NewLogCategory("Assert")

var enableDiagnostics bool = false

func EnableDiagnostics() bool {
	return enableDiagnostics
}
func SetEnableDiagnostics(enabled bool) {
	enableDiagnostics = enabled
}

/***************************************
 * Assertions
 ***************************************/

func AssertErr(pred func() error) {
	if err := pred(); err != nil {
		Panic(err)
	}
}

func Assert(pred func() bool) {
	if success := pred(); !success {
		Panicf("failed assertion")
	}
}

func AssertSameType[T any](a T, b T) {
	ta := reflect.TypeOf(a)
	tb := reflect.TypeOf(b)
	if ta != tb {
		Panicf("expected type <%v> but got <%v>", ta, tb)
	}
}

func AssertIn[T comparable](elt T, values ...T) {
	for _, x := range values {
		if x == elt {
			return
		}
	}
	Panicf("element <%v> is not in the slice", elt)
}
func AssertNotIn[T comparable](elt T, values ...T) {
	for _, x := range values {
		if x == elt {
			Panicf("element <%v> is already in the slice", elt)
		}
	}
}

func AssertInStrings[T fmt.Stringer](elt T, values ...T) {
	for _, x := range values {
		if x.String() == elt.String() {
			return
		}
	}
	Panicf("element <%v> is not in the slice", elt)
}
func AssertNotInStrings[T fmt.Stringer](elt T, values ...T) {
	for _, x := range values {
		if x.String() == elt.String() {
			Panicf("element <%v> is already in the slice", elt)
		}
	}
}

func NotImplemented(m string, a ...interface{}) {
	LogWarning(LogAssert, "not implemented: "+m, a...)
}
func UnreachableCode() {
	Panicf("unreachable code")
}
func UnexpectedValue(x interface{}) {
	Panicf("unexpected value: <%T> %#v", x, x)
}
func UnexpectedType(expected reflect.Type, given interface{}) {
	if reflect.TypeOf(given) != expected {
		Panicf("expected <%#v>, given %#v <%T>", expected, given, given)
	}
}

/***************************************
 * Logger (debug/trace levels live here so they can be compiled
 * out independently of the rest of the logger in a future build)
 ***************************************/

func LogDebug(category *LogCategory, msg string, args ...interface{}) {
	gLogger.Log(category, LOG_DEBUG, msg, args...)
}
func LogDebugIf(category *LogCategory, enabled bool, msg string, args ...interface{}) {
	LogIf(LOG_DEBUG, category, enabled, msg, args...)
}
func LogTrace(category *LogCategory, msg string, args ...interface{}) {
	gLogger.Log(category, LOG_TRACE, msg, args...)
}
