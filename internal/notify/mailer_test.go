package notify

import (
	"strings"
	"testing"
)

func TestNewMailerWithoutHost(t *testing.T) {
	m := NewMailer("", 587, "", "", "no-reply@example.com")
	if _, ok := m.(Noop); !ok {
		t.Fatalf("NewMailer(\"\") = %T, want Noop", m)
	}
	if err := m.SendCredentials("a@example.com", "lead1", "secret", "created"); err != nil {
		t.Errorf("Noop.SendCredentials() error = %v", err)
	}
}

func TestCredentialsBody(t *testing.T) {
	body := credentialsBody("lead1", "Tmp-Pass1", "created")
	for _, want := range []string{"Hello lead1", "Username: lead1", "Temporary password: Tmp-Pass1", "was created"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}
