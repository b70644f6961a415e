package settings

import "errors"

var (
	// ErrCacheMiss возвращается, когда настроек нет в кэше
	ErrCacheMiss = errors.New("settings.cache: cache miss")

	// ErrCache возвращается при ошибках Redis или декодирования
	ErrCache = errors.New("settings.cache: redis error")
)
