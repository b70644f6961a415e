package schedule

import (
	"time"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
)

// BusinessNow текущий момент в часовом поясе мойки
type BusinessNow struct {
	Date        time.Time // полночь текущих суток в Location
	MinuteOfDay int
	Location    *time.Location
}

// DateString дата в формате YYYY-MM-DD
func (b BusinessNow) DateString() string {
	return b.Date.Format(domain.DateFormat)
}

// IsToday true, если дата (YYYY-MM-DD) совпадает с текущими сутками мойки
func (b BusinessNow) IsToday(date string) bool {
	return b.DateString() == date
}

// LoadLocation загружает часовой пояс. Пустое или неизвестное имя
// заменяется на domain.DefaultTimezone, а если и он недоступен, на UTC
func LoadLocation(name string) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	if loc, err := time.LoadLocation(domain.DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}

// ResolveBusinessNow переводит момент now в часовой пояс мойки
func ResolveBusinessNow(now time.Time, timezone string) BusinessNow {
	loc := LoadLocation(timezone)
	local := now.In(loc)

	return BusinessNow{
		Date:        time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc),
		MinuteOfDay: local.Hour()*60 + local.Minute(),
		Location:    loc,
	}
}

// ParseDate разбирает дату YYYY-MM-DD как календарный день (UTC полночь).
// Время суток и часовой пояс у бронирования не используются
func ParseDate(s string) (time.Time, error) {
	return time.Parse(domain.DateFormat, s)
}
