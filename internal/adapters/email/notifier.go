package email

import (
	"context"
	"fmt"
	"log/slog"
)

// Notifier dispatches the two account emails. Dispatch is fire-and-forget:
// sends happen on their own goroutine and a delivery failure is logged, never
// surfaced to the operation that triggered it. The sender, addresses and
// base URL are injected so tests can substitute a capturing double.
type Notifier struct {
	sender  Sender
	from    string
	replyTo string
	baseURL string
}

// NewNotifier creates a Notifier that builds links under baseURL.
// PRE: sender is non-nil; baseURL has no trailing slash
// POST: Returns a ready-to-use notifier
func NewNotifier(sender Sender, from, replyTo, baseURL string) *Notifier {
	return &Notifier{
		sender:  sender,
		from:    from,
		replyTo: replyTo,
		baseURL: baseURL,
	}
}

// SendConfirmation dispatches the email-confirmation link carrying token.
// POST: Returns immediately; delivery outcome is logged only
func (n *Notifier) SendConfirmation(to, token string) {
	url := fmt.Sprintf("%s/api/user/confirm/%s", n.baseURL, token)
	body := fmt.Sprintf(`Please click this link to confirm your email: <a href="%s">%s</a>`, url, url)
	n.dispatch(to, "Confirm Email.", body)
}

// SendPasswordReset dispatches the password-reset link carrying token.
// POST: Returns immediately; delivery outcome is logged only
func (n *Notifier) SendPasswordReset(to, token string) {
	url := fmt.Sprintf("%s/api/user/forgot/%s", n.baseURL, token)
	body := fmt.Sprintf(`Please click this link to reset your password: <a href="%s">%s</a>`, url, url)
	n.dispatch(to, "Reset Password.", body)
}

func (n *Notifier) dispatch(to, subject, body string) {
	req := SendRequest{
		To:      []string{to},
		From:    n.from,
		Subject: subject,
		HTML:    body,
		ReplyTo: n.replyTo,
	}
	go func() {
		if _, err := n.sender.Send(context.Background(), req); err != nil {
			slog.Error("email_dispatch_failed", "to", to, "subject", subject, "error", err)
		}
	}()
}
