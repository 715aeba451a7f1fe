package emailsvc

import (
	"bytes"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/pathways/core"
	testutil "github.com/trezcool/pathways/tests"
)

func TestConsoleService_SendMessages(t *testing.T) {
	conf := core.NewTestConfig()
	svc := NewConsoleServiceMock(conf, new(testutil.Logger))
	out := new(bytes.Buffer)
	svc.out = out

	to := []mail.Address{{Name: "Jane", Address: "jane@test.test"}}
	svc.SendMessages(
		&core.EmailMessage{To: to, Subject: "Plain", BodyStr: "hello"},
		&core.EmailMessage{
			To:           to,
			Subject:      "Templated",
			TemplateName: "notification",
			TemplateData: map[string]interface{}{"Title": "Career fair", "Body": "Join us", "Timestamp": "May 1, 2024 9:00 AM"},
		},
		&core.EmailMessage{Subject: "Nobody", BodyStr: "lost"},
	)

	sent := svc.SentMessages()
	require.Len(t, sent, 2, "messages without recipients should not be sent")
	assert.Equal(t, "hello", sent[0].TextContent)
	assert.Contains(t, sent[1].TextContent, "Career fair")
	assert.Contains(t, sent[1].HTMLContent, "<h2>Career fair</h2>")
	assert.Contains(t, out.String(), "Subject: [Pathways] Templated")
}

func TestConsoleService_UnknownTemplate(t *testing.T) {
	logger := new(testutil.Logger)
	svc := NewConsoleServiceMock(core.NewTestConfig(), logger)

	svc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: "jane@test.test"}},
		TemplateName: "nope",
	})
	assert.Empty(t, svc.SentMessages())
	assert.Contains(t, logger.Messages(), "rendering email")
}

func TestNew(t *testing.T) {
	conf := core.NewTestConfig()
	_, ok := New(conf, new(testutil.Logger)).(*ConsoleService)
	assert.True(t, ok, "test mode should never send real emails")

	conf.TestMode = false
	conf.SendgridApiKey = "key"
	_, ok = New(conf, new(testutil.Logger)).(*sendgridService)
	assert.True(t, ok)
}
