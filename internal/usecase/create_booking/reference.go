package create_booking

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
)

const (
	referenceSuffixLength = 4
	base36Alphabet        = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// generateReferenceCode формирует код вида LAV-<millis base36>-<4 случайных символа>
func generateReferenceCode(now time.Time) string {
	suffix := make([]byte, referenceSuffixLength)
	for i := range suffix {
		suffix[i] = base36Alphabet[rand.IntN(len(base36Alphabet))]
	}

	millis := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	return domain.ReferenceCodePrefix + "-" + millis + "-" + string(suffix)
}
