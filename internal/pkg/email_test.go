package pkg

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/quotedprintable"
	"strings"
	"testing"

	"OWS_Community/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func TestNotifyResolution(t *testing.T) {
	m := NewMailer(SMTPConfig{Host: "smtp.test", Port: 587, From: "noreply@ows.test"})
	var sent *gomail.Message
	m.send = func(msg *gomail.Message) error {
		sent = msg
		return nil
	}

	sub := &model.Submission{Name: "Park <Bars>", Status: model.SubmissionApproved}
	err := m.NotifyResolution(context.Background(), &model.User{Name: "Ana", Email: "ana@x.io"}, sub)
	require.NoError(t, err)
	require.NotNil(t, sent)
	assert.Equal(t, []string{"ana@x.io"}, sent.GetHeader("To"))
	assert.Equal(t, []string{`Your spot "Park <Bars>" was approved`}, sent.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = sent.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "Content-Transfer-Encoding: quoted-printable")

	// 正文是 quoted-printable，长行会被折开，先解码再比较
	_, body, found := strings.Cut(raw, "\r\n\r\n")
	require.True(t, found)
	decoded, err := io.ReadAll(quotedprintable.NewReader(strings.NewReader(body)))
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "added to the map")
	assert.Contains(t, string(decoded), "Park &lt;Bars&gt;")
}

func TestNotifyResolutionSkipsMissingAddress(t *testing.T) {
	m := NewMailer(SMTPConfig{Host: "smtp.test"})
	m.send = func(*gomail.Message) error { return errors.New("should not send") }
	assert.NoError(t, m.NotifyResolution(context.Background(), &model.User{}, &model.Submission{}))
}

func TestResolutionHTMLEscapes(t *testing.T) {
	body := ResolutionHTML("<b>", &model.Submission{Name: "x", Status: model.SubmissionRejected})
	assert.Contains(t, body, "&lt;b&gt;")
	assert.Contains(t, body, "was not accepted")
}
