package logsvc

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/pathways/core"
)

func TestRollbarLogger_Prepare(t *testing.T) {
	l := RollbarLogger{std: log.New(new(bytes.Buffer), "", 0)}
	err := errors.New("boom")
	extras := map[string]interface{}{"key": "app_careers"}
	p1 := core.Person{ID: "1", Name: "Jane", Email: "jane@test.test"}
	p2 := core.Person{ID: "2", Name: "John", Email: "john@test.test"}

	got := l.prepare("saving", []interface{}{err, p1, extras, p2})
	assert.Equal(t, []interface{}{"saving", err, extras}, got, "people should be stripped from the reported args")
}

func TestRollbarLogger_Print(t *testing.T) {
	buf := new(bytes.Buffer)
	l := NewRollbarLogger(log.New(buf, "", 0), core.NewTestConfig())
	l.Enable(false)

	l.Warn("ignoring malformed value", map[string]interface{}{"key": "app_events"})
	assert.Contains(t, buf.String(), "[WARN] ignoring malformed value")
	assert.Contains(t, buf.String(), "app_events")
}
