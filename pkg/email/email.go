// Package email, uygulama genelinde email gönderimi için soyutlama katmanı sağlar.
//
// EmailSender interface'i ile gönderim detayları soyutlanır (Dependency Inversion).
// Şu anki implementasyon Resend API kullanır. İleride farklı bir sağlayıcıya
// geçmek için yeni bir implementasyon yazıp constructor'da değiştirmek yeterli.
//
// Bu paket dışarıya iki şey sunar:
// 1. EmailSender interface — service'ler buna bağımlı olur
// 2. NewResendSender constructor — main.go'da wire-up için
package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"
)

// EmailSender, email gönderimi için interface.
// Service katmanı bu interface'e bağımlıdır, concrete Resend implementasyonuna değil.
type EmailSender interface {
	// SendVerificationCode, kayıt sonrası email doğrulama kodunu gönderir.
	SendVerificationCode(ctx context.Context, toEmail, code string) error

	// SendResetCode, şifre sıfırlama kodunu gönderir.
	SendResetCode(ctx context.Context, toEmail, code string) error
}

// resendSender, Resend API ile email gönderen EmailSender implementasyonu.
type resendSender struct {
	client    *resend.Client
	fromEmail string // Gönderici adresi (ör: noreply@vita.app)
	appName   string
}

// NewResendSender, Resend API client'ı ile yeni bir EmailSender oluşturur.
//
// apiKey: Resend dashboard'dan alınan API key (re_xxxxxxxx formatında).
// fromEmail: Gönderici adresi — Resend'de doğrulanmış domain altında olmalı.
func NewResendSender(apiKey, fromEmail string) EmailSender {
	return &resendSender{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		appName:   "vita",
	}
}

// SendVerificationCode, 6 haneli doğrulama kodunu email ile gönderir.
//
// Kod email'de plaintext olarak bulunur — zaten kısa ömürlü (15 dk)
// ve 3 deneme limiti var. Link yerine kod kullanıyoruz çünkü mobil
// client'larda deep link yönetimi gerektirmez.
func (s *resendSender) SendVerificationCode(ctx context.Context, toEmail, code string) error {
	return s.sendCode(ctx, toEmail, code,
		"Verify Your Email — vita",
		"Email Verification",
		"Welcome to vita! Enter the code below to verify your email address.")
}

// SendResetCode, şifre sıfırlama kodunu email ile gönderir.
func (s *resendSender) SendResetCode(ctx context.Context, toEmail, code string) error {
	return s.sendCode(ctx, toEmail, code,
		"Reset Your Password — vita",
		"Password Reset Request",
		"We received a request to reset your password. Enter the code below to continue.")
}

// sendCode, iki kod email'inin ortak HTML şablonunu doldurup gönderir.
func (s *resendSender) sendCode(ctx context.Context, toEmail, code, subject, heading, intro string) error {
	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin:0;padding:0;background-color:#0f172a;font-family:Arial,Helvetica,sans-serif;">
  <table width="100%%" cellpadding="0" cellspacing="0" style="background-color:#0f172a;padding:40px 0;">
    <tr>
      <td align="center">
        <table width="480" cellpadding="0" cellspacing="0" style="background-color:#1e293b;border-radius:8px;padding:40px;">
          <tr>
            <td>
              <h1 style="color:#e2e8f0;font-size:24px;margin:0 0 8px 0;">%s</h1>
              <h2 style="color:#e2e8f0;font-size:18px;margin:0 0 24px 0;">%s</h2>
              <p style="color:#94a3b8;font-size:15px;line-height:1.6;margin:0 0 24px 0;">
                %s
              </p>
              <table cellpadding="0" cellspacing="0" style="margin:0 0 24px 0;">
                <tr>
                  <td style="background-color:#10b981;border-radius:6px;padding:16px 40px;">
                    <span style="color:#ffffff;font-size:28px;font-weight:700;letter-spacing:8px;">%s</span>
                  </td>
                </tr>
              </table>
              <p style="color:#64748b;font-size:13px;line-height:1.6;margin:0;">
                This code will expire in 15 minutes. If you didn't request this, you can safely ignore this email.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`, s.appName, heading, intro, code)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.appName, s.fromEmail),
		To:      []string{toEmail},
		Subject: subject,
		Html:    html,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
