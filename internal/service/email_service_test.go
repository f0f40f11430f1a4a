package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"vocabtrainer/internal/models"
)

func TestNewEmailServiceDisabledWithoutSender(t *testing.T) {
	svc, err := NewEmailService(context.Background(), "us-east-1", "", "Vocab Trainer", "http://localhost", false)
	if err != nil {
		t.Fatalf("NewEmailService() error = %v", err)
	}
	if svc.IsEnabled() {
		t.Error("IsEnabled() = true, want false without a from address")
	}
	// Disabled services skip sending without error
	if err := svc.SendWelcomeEmail(context.Background(), "a@example.com", "A"); err != nil {
		t.Errorf("SendWelcomeEmail() error = %v", err)
	}
}

func TestSendPracticeList(t *testing.T) {
	sender := &fakeSender{}
	svc := NewEmailServiceWithClient(sender, "noreply@example.com", "Vocab Trainer", "http://localhost", false)

	words := []models.StudyWord{
		{Word: "ephemeral", Definition: "lasting <a very short time>", AddedAt: time.Now()},
		{Word: "lucid", Definition: "clear", AddedAt: time.Now()},
	}
	if err := svc.SendPracticeList(context.Background(), "kim@example.com", "Kim", words); err != nil {
		t.Fatalf("SendPracticeList() error = %v", err)
	}

	sent := sender.sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sent))
	}
	in := sent[0]
	if got := *in.FromEmailAddress; got != "Vocab Trainer <noreply@example.com>" {
		t.Errorf("FromEmailAddress = %q", got)
	}
	if got := in.Destination.ToAddresses; len(got) != 1 || got[0] != "kim@example.com" {
		t.Errorf("ToAddresses = %v", got)
	}
	if got := *in.Content.Simple.Subject.Data; got != "Your practice words (2)" {
		t.Errorf("Subject = %q", got)
	}

	htmlBody := *in.Content.Simple.Body.Html.Data
	if !strings.Contains(htmlBody, "&lt;a very short time&gt;") {
		t.Error("html body should escape definitions")
	}
	textBody := *in.Content.Simple.Body.Text.Data
	if !strings.Contains(textBody, "lucid - clear") {
		t.Errorf("text body = %q, want a line per word", textBody)
	}
}

func TestSendEmailWrapsClientError(t *testing.T) {
	boom := errors.New("throttled")
	svc := NewEmailServiceWithClient(&fakeSender{err: boom}, "noreply@example.com", "", "http://localhost", false)

	err := svc.SendWelcomeEmail(context.Background(), "a@example.com", "A")
	if !errors.Is(err, boom) {
		t.Errorf("SendWelcomeEmail() error = %v, want wrapped %v", err, boom)
	}
}

func TestRenderPracticeListEmpty(t *testing.T) {
	_, text := renderPracticeList("Kim", nil)
	if !strings.Contains(text, "Nothing to practice") {
		t.Errorf("text = %q", text)
	}
}
