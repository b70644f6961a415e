package create_booking

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	"github.com/m04kA/SMC-CarWashBooking/internal/domain/schedule"
	"github.com/m04kA/SMC-CarWashBooking/internal/service/identity"
	"github.com/m04kA/SMC-CarWashBooking/pkg/types"
)

// validateRequest проверяет запрос до любых обращений к БД
func validateRequest(req *Request, region string) (*command, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty request", ErrInvalidInput)
	}

	if strings.TrimSpace(req.Date) == "" {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	date, err := schedule.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}

	if strings.TrimSpace(req.StartTime) == "" {
		return nil, fmt.Errorf("%w: time is required", ErrInvalidInput)
	}
	startTime, err := types.NewTimeStringFromString(strings.TrimSpace(req.StartTime))
	if err != nil {
		return nil, fmt.Errorf("%w: time must be HH:MM", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return nil, fmt.Errorf("%w: serviceId must be positive", ErrInvalidInput)
	}

	paymentMethod := strings.TrimSpace(req.PaymentMethod)
	if paymentMethod == "" {
		return nil, fmt.Errorf("%w: paymentMethod is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(paymentMethod) > domain.MaxPaymentMethodLength {
		return nil, fmt.Errorf("%w: paymentMethod is too long", ErrInvalidInput)
	}

	name := strings.TrimSpace(req.Customer.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > domain.MaxNameLength {
		return nil, fmt.Errorf("%w: customer name is too long", ErrInvalidInput)
	}

	phone, err := identity.NormalizePhone(req.Customer.Phone, region)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	plate, err := identity.NormalizePlate(req.Customer.Plate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	model := identity.NormalizeModel(req.Customer.Model)
	if model != nil && utf8.RuneCountInString(*model) > domain.MaxModelLength {
		return nil, fmt.Errorf("%w: vehicle model is too long", ErrInvalidInput)
	}

	if req.Notes != nil && utf8.RuneCountInString(*req.Notes) > domain.MaxNotesLength {
		return nil, fmt.Errorf("%w: notes are too long", ErrInvalidInput)
	}

	cmd := &command{
		date:          date,
		startTime:     startTime,
		serviceID:     req.ServiceID,
		paymentMethod: paymentMethod,
		name:          name,
		phone:         phone,
		plate:         plate,
		model:         model,
		notes:         req.Notes,
	}

	if req.ReferenceCode != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.ReferenceCode))
		if code == "" || len(code) > domain.MaxReferenceCodeLength {
			return nil, fmt.Errorf("%w: invalid referenceCode", ErrInvalidInput)
		}
		cmd.referenceCode = code
		cmd.codeSupplied = true
	}

	return cmd, nil
}
