package mailer

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLogSenderDoesNotLeakBody(t *testing.T) {
	var buf bytes.Buffer
	s := LogSender{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	err := s.Send(context.Background(), Message{To: "a@b.co", Subject: "Code", HTML: "<b>123456</b>"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "a@b.co") || strings.Contains(out, "123456") {
		t.Fatalf("unexpected log output %q", out)
	}
}

func TestSMTPSenderHonoursCancelledContext(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: 1, From: "noreply@aquapulse.test", Timeout: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Send(ctx, Message{To: "a@b.co"}); err == nil {
		t.Fatalf("expected context error")
	}
}
