package email

import (
	"context"
	"strings"
	"testing"

	"cmcs/internal/platform/config"
)

func TestNewReturnsDiscardWhenDisabled(t *testing.T) {
	cases := []config.Config{
		{EmailEnabled: false, SMTPHost: "smtp.test.local"},
		{EmailEnabled: true, SMTPHost: ""},
	}
	for _, cfg := range cases {
		mailer := New(cfg)
		if _, ok := mailer.(discard); !ok {
			t.Fatalf("expected discard mailer for cfg %+v, got %T", cfg, mailer)
		}
		if err := mailer.Send(context.Background(), "a@x", "b@x", "s", "body"); err != nil {
			t.Fatalf("discard mailer returned error: %v", err)
		}
	}
}

func TestSendSkipsBlankRecipient(t *testing.T) {
	s := &Sender{host: "smtp.test.local", port: 2525}
	if err := s.Send(context.Background(), "a@x", "   ", "s", "body"); err != nil {
		t.Fatalf("expected blank recipient to be a no-op, got %v", err)
	}
}

func TestMessageFormat(t *testing.T) {
	msg := string(message("noreply@cmcs.local", "lecturer@uni.test", "Claim approved", "Your claim was approved."))

	wantHeaders := []string{
		"From: noreply@cmcs.local\r\n",
		"To: lecturer@uni.test\r\n",
		"Subject: Claim approved\r\n",
		"MIME-Version: 1.0\r\n",
	}
	for _, h := range wantHeaders {
		if !strings.Contains(msg, h) {
			t.Fatalf("message missing header %q:\n%s", h, msg)
		}
	}
	if !strings.HasSuffix(msg, "\r\n\r\nYour claim was approved.") {
		t.Fatalf("body not separated from headers by blank line:\n%s", msg)
	}
}
