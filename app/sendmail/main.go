// Command sendmail pushes a sample purchase notification through the
// configured SMTP relay (e.g. a local Mailpit on :2025).
package main

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"example.com/storefront-cart/app/internal/config"
	domnotify "example.com/storefront-cart/app/internal/domain/notification"
	"example.com/storefront-cart/app/internal/infra/mail"
	"example.com/storefront-cart/app/internal/logging"
	checkoutuc "example.com/storefront-cart/app/internal/usecase/checkout"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, "console")
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.SMTPAddr == "" {
		cfg.SMTPAddr = "localhost:2025"
	}
	if cfg.FromEmail == "" {
		cfg.FromEmail = "test@example.com"
		cfg.NotifyTo = []string{"hello@yopmail.com"}
	}

	notifier := mail.NewSMTPNotifier(mail.Config{
		Addr:     cfg.SMTPAddr,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		Timeout:  cfg.SMTPTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	msg := domnotify.Message{
		Subject: checkoutuc.PurchaseSubject(cfg.StoreName),
		Body:    checkoutuc.PurchaseBody("test@example.com", nil),
		From:    cfg.FromEmail,
		To:      cfg.NotifyTo,
	}
	if err := notifier.Send(ctx, msg); err != nil {
		logger.Fatal("send mail", zap.String("smtp_addr", cfg.SMTPAddr), zap.Error(err))
	}
	logger.Info("mail sent", zap.Strings("to", msg.To))
}
