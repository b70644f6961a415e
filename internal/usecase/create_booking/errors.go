package create_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrDayClosed возвращается, когда дата выпадает на нерабочий день
	ErrDayClosed = errors.New("create_booking: car wash is closed on this date")

	// ErrSlotFull возвращается, когда в слоте не осталось мест
	ErrSlotFull = errors.New("create_booking: slot is full")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrReferenceCodeTaken возвращается, когда переданный клиентом код бронирования уже занят
	ErrReferenceCodeTaken = errors.New("create_booking: reference code already taken")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
