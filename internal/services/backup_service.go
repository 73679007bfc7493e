package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"order_tracker/internal/metrics"
	"order_tracker/pkg/whatsapp"
)

var (
	ErrBackupNotAllowed = errors.New("backup request is not available for this order")
	ErrGatewayDisabled  = errors.New("whatsapp gateway is not configured")
)

type MessageSender interface {
	SendTextMessage(ctx context.Context, phone, message string) (*whatsapp.SendMessageResponse, error)
}

// BackupService asks the studio to re-share finished files of an approved
// order, either through a wa.me link or directly over the gateway.
type BackupService interface {
	RequestURL(ctx context.Context, sess *Session, code string) (string, error)
	Send(ctx context.Context, sess *Session, code string) error
}

type backupService struct {
	pricing PricingSource
	sender  MessageSender
	metrics *metrics.Registry
}

// NewBackupService builds the service. sender may be nil when no gateway is
// configured; Send then reports ErrGatewayDisabled.
func NewBackupService(pricingSource PricingSource, sender MessageSender, reg *metrics.Registry) BackupService {
	return &backupService{pricing: pricingSource, sender: sender, metrics: reg}
}

func (s *backupService) RequestURL(ctx context.Context, sess *Session, code string) (string, error) {
	number, template, fields, err := s.prepare(ctx, sess, code)
	if err != nil {
		return "", err
	}
	link, err := whatsapp.ChatURL(number, template, fields)
	if err != nil {
		return "", err
	}
	s.metrics.ObserveBackupRequest("link")
	return link, nil
}

func (s *backupService) Send(ctx context.Context, sess *Session, code string) error {
	if s.sender == nil {
		return ErrGatewayDisabled
	}
	number, template, fields, err := s.prepare(ctx, sess, code)
	if err != nil {
		return err
	}
	if strings.TrimSpace(number) == "" || strings.TrimSpace(template) == "" {
		return whatsapp.ErrNotConfigured
	}
	digits := whatsapp.SanitizeNumber(number)
	if digits == "" {
		return whatsapp.ErrInvalidNumber
	}

	// Send through the gateway
	if _, err := s.sender.SendTextMessage(ctx, digits, whatsapp.RenderBackupMessage(template, fields)); err != nil {
		return fmt.Errorf("failed to send backup request: %w", err)
	}
	s.metrics.ObserveBackupRequest("gateway")
	return nil
}

func (s *backupService) prepare(ctx context.Context, sess *Session, code string) (string, string, whatsapp.BackupFields, error) {
	result, ok := sess.LastResult(code)
	if !ok || result.Outcome != OutcomeFound || result.Order == nil {
		return "", "", whatsapp.BackupFields{}, ErrNoOrder
	}
	if !result.CanRequestBackup {
		return "", "", whatsapp.BackupFields{}, ErrBackupNotAllowed
	}

	// Contact number and template live in the pricing config
	prices, _, err := loadPricing(ctx, sess, s.pricing, s.metrics)
	if err != nil {
		return "", "", whatsapp.BackupFields{}, fmt.Errorf("failed to load pricing configuration: %w", err)
	}

	order := result.Order
	fields := whatsapp.BackupFields{
		Title:       order.Title,
		ProjectCode: order.ProjectCode,
		OrderCode:   order.OrderCode,
	}
	return prices.WhatsApp, prices.BackupRequestMessage, fields, nil
}
