package common

// EmailSender is the outbound mail contract. Implementations must be safe
// for concurrent use.
type EmailSender interface {
	Send(to, subject, html string) error
}

// Email is one captured outbound message.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// InMemoryEmail records messages instead of delivering them. Tests inspect
// Outbox directly.
type InMemoryEmail struct {
	Outbox []Email
}

func (m *InMemoryEmail) Send(to, subject, html string) error {
	if m == nil {
		return nil
	}
	m.Outbox = append(m.Outbox, Email{To: to, Subject: subject, HTML: html})
	return nil
}

// NopEmailSender discards every message. Used when no mail provider is
// configured.
type NopEmailSender struct{}

func (NopEmailSender) Send(string, string, string) error { return nil }
