package identity

import "errors"

var (
	// ErrInvalidPhone возвращается для пустого или нераспознанного телефона
	ErrInvalidPhone = errors.New("identity: invalid phone number")

	// ErrInvalidPlate возвращается для пустого или слишком длинного номера авто
	ErrInvalidPlate = errors.New("identity: invalid vehicle plate")

	// ErrInvalidName возвращается для пустого имени клиента
	ErrInvalidName = errors.New("identity: invalid customer name")

	// ErrInternal возвращается при ошибках хранилища
	ErrInternal = errors.New("identity: internal error")
)
