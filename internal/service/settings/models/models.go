package models

import (
	"time"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	"github.com/m04kA/SMC-CarWashBooking/pkg/types"
)

// UpdateSettingsRequest обновление настроек. Незаданные поля сохраняют текущее значение
type UpdateSettingsRequest struct {
	BusinessName         *string `json:"businessName,omitempty"`
	WhatsappNumber       *string `json:"whatsappNumber,omitempty"`
	Address              *string `json:"address,omitempty"`
	WelcomeMessage       *string `json:"welcomeMessage,omitempty"`
	Currency             *string `json:"currency,omitempty"`
	OpenTime             *string `json:"openTime,omitempty"`
	CloseTime            *string `json:"closeTime,omitempty"`
	SlotDuration         *int    `json:"slotDuration,omitempty"`
	MaxSlotsPerTime      *int    `json:"maxSlotsPerTime,omitempty"`
	WorkingDays          []int   `json:"workingDays,omitempty"`
	BookingBufferMinutes *int    `json:"bookingBufferMinutes,omitempty"`
	Timezone             *string `json:"timezone,omitempty"`
}

// ApplyTo накладывает заданные поля на текущие настройки
func (r *UpdateSettingsRequest) ApplyTo(current *domain.Settings) *domain.Settings {
	s := *current
	s.ID = domain.SettingsID

	if r.BusinessName != nil {
		s.BusinessName = *r.BusinessName
	}
	if r.WhatsappNumber != nil {
		s.WhatsappNumber = *r.WhatsappNumber
	}
	if r.Address != nil {
		s.Address = *r.Address
	}
	if r.WelcomeMessage != nil {
		s.WelcomeMessage = *r.WelcomeMessage
	}
	if r.Currency != nil {
		s.Currency = *r.Currency
	}
	if r.OpenTime != nil {
		s.OpenTime = types.TimeString(*r.OpenTime)
	}
	if r.CloseTime != nil {
		s.CloseTime = types.TimeString(*r.CloseTime)
	}
	if r.SlotDuration != nil {
		s.SlotDurationMinutes = *r.SlotDuration
	}
	if r.MaxSlotsPerTime != nil {
		s.MaxSlotsPerTime = *r.MaxSlotsPerTime
	}
	if r.WorkingDays != nil {
		days := make([]time.Weekday, 0, len(r.WorkingDays))
		for _, d := range r.WorkingDays {
			days = append(days, time.Weekday(d))
		}
		s.WorkingDays = days
	}
	if r.BookingBufferMinutes != nil {
		s.BookingBufferMinutes = *r.BookingBufferMinutes
	}
	if r.Timezone != nil {
		s.Timezone = *r.Timezone
	}

	return &s
}

// SettingsResponse настройки мойки
type SettingsResponse struct {
	BusinessName         string     `json:"businessName"`
	WhatsappNumber       string     `json:"whatsappNumber"`
	Address              string     `json:"address"`
	WelcomeMessage       string     `json:"welcomeMessage"`
	Currency             string     `json:"currency"`
	OpenTime             string     `json:"openTime"`
	CloseTime            string     `json:"closeTime"`
	SlotDuration         int        `json:"slotDuration"`
	MaxSlotsPerTime      int        `json:"maxSlotsPerTime"`
	WorkingDays          []int      `json:"workingDays"`
	BookingBufferMinutes int        `json:"bookingBufferMinutes"`
	Timezone             string     `json:"timezone"`
	UpdatedAt            *time.Time `json:"updatedAt,omitempty"`
}

// FromDomainSettings конвертирует domain модель в DTO
func FromDomainSettings(s *domain.Settings) *SettingsResponse {
	days := make([]int, 0, len(s.WorkingDays))
	for _, d := range s.WorkingDays {
		days = append(days, int(d))
	}

	resp := &SettingsResponse{
		BusinessName:         s.BusinessName,
		WhatsappNumber:       s.WhatsappNumber,
		Address:              s.Address,
		WelcomeMessage:       s.WelcomeMessage,
		Currency:             s.Currency,
		OpenTime:             s.OpenTime.String(),
		CloseTime:            s.CloseTime.String(),
		SlotDuration:         s.SlotDurationMinutes,
		MaxSlotsPerTime:      s.MaxSlotsPerTime,
		WorkingDays:          days,
		BookingBufferMinutes: s.BookingBufferMinutes,
		Timezone:             s.Timezone,
	}
	if !s.UpdatedAt.IsZero() {
		updatedAt := s.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}
