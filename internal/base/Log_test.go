package base

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerLevels(t *testing.T) {
	var sink bytes.Buffer
	previous := SetLogOutput(&sink)
	defer SetLogOutput(previous)
	SetAnsiColorMode(ANSICOLOR_DISABLED)
	defer SetAnsiColorMode(ANSICOLOR_ENABLED)
	SetLogVisibleLevel(LOG_VERBOSE)
	defer SetLogVisibleLevel(LOG_INFO)

	category := NewLogCategory("LogTest")
	LogVerbose(category, "verbose %d", 1)
	LogInfo(category, "info %d", 2)
	LogWarning(category, "warning %d", 3)
	LogError(category, "error %d", 4)

	out := sink.String()
	for _, want := range []string{"verbose 1", "info 2", "warning 3", "error 4", "LogTest"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestLoggerVisibleLevelFilters(t *testing.T) {
	var sink bytes.Buffer
	previous := SetLogOutput(&sink)
	defer SetLogOutput(previous)
	SetLogVisibleLevel(LOG_ERROR)
	defer SetLogVisibleLevel(LOG_INFO)

	LogInfo(LogGlobal, "should not appear")
	if sink.Len() != 0 {
		t.Fatalf("filtered message leaked: %q", sink.String())
	}
	if IsLogLevelActive(LOG_INFO) {
		t.Fatal("LOG_INFO reported active above LOG_ERROR threshold")
	}
}

func TestLogCategoryLevel(t *testing.T) {
	var sink bytes.Buffer
	previous := SetLogOutput(&sink)
	defer SetLogOutput(previous)

	category := NewLogCategory("MutedCategory")
	if err := SetLogCategoryLevel("MutedCategory", LOG_ERROR); err != nil {
		t.Fatal(err)
	}
	LogInfo(category, "muted")
	if sink.Len() != 0 {
		t.Fatalf("muted category leaked: %q", sink.String())
	}
	if err := SetLogCategoryLevel("NoSuchCategory", LOG_ALL); err == nil {
		t.Fatal("unknown category accepted")
	}
}

func TestLogWarningOnce(t *testing.T) {
	var sink bytes.Buffer
	previous := SetLogOutput(&sink)
	defer SetLogOutput(previous)

	LogWarningOnce(LogGlobal, "deduplicated %s", "warning")
	first := sink.Len()
	LogWarningOnce(LogGlobal, "deduplicated %s", "warning")
	if sink.Len() != first {
		t.Fatal("warning emitted twice")
	}
}
