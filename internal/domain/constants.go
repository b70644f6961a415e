package domain

import "github.com/m04kA/SMC-CarWashBooking/pkg/types"

// SettingsID идентификатор единственной записи настроек
const SettingsID = "main"

// Значения по умолчанию
const (
	DefaultOpenTime             types.TimeString = "08:00"
	DefaultCloseTime            types.TimeString = "18:00"
	DefaultSlotDurationMinutes                   = 30
	DefaultMaxSlotsPerTime                       = 1
	DefaultBookingBufferMinutes                  = 10
	DefaultTimezone                              = "America/Asuncion"
	DefaultBusinessName                          = "Lavadero"
	DefaultCurrency                              = "PYG"
	DefaultBookingsLimit                         = 50
)

// Ограничения бизнес-валидации
const (
	MinSlotDurationMinutes  = 5
	MaxSlotDurationMinutes  = 480
	MinSlotsPerTime         = 1
	MaxSlotsPerTime         = 100
	MaxBookingBufferMinutes = 1440
	MaxBookingsLimit        = 200
	MaxNotesLength          = 500
	MaxNameLength           = 100
	MaxPlateLength          = 16
	MaxReferenceCodeLength  = 32
	MaxPaymentMethodLength  = 32
	MaxModelLength          = 100
	MaxPhoneLength          = 32
)

// Форматы времени
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ReferenceCodePrefix префикс кода бронирования
const ReferenceCodePrefix = "LAV"
