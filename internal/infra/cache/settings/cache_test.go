package settings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
)

func TestEncodeDecode_PreservesScheduleFields(t *testing.T) {
	src := domain.DefaultSettings()
	src.OpenTime = "07:30"
	src.CloseTime = "19:00"
	src.MaxSlotsPerTime = 3
	src.WorkingDays = []time.Weekday{time.Sunday, time.Saturday}
	src.Timezone = "America/Sao_Paulo"
	src.UpdatedAt = time.UnixMilli(1735689600123)

	raw, err := encode(src)
	require.NoError(t, err)

	got, err := decode(raw)
	require.NoError(t, err)

	assert.Equal(t, src.OpenTime, got.OpenTime)
	assert.Equal(t, src.CloseTime, got.CloseTime)
	assert.Equal(t, src.MaxSlotsPerTime, got.MaxSlotsPerTime)
	assert.Equal(t, src.WorkingDays, got.WorkingDays)
	assert.Equal(t, src.Timezone, got.Timezone)
	assert.True(t, src.UpdatedAt.Equal(got.UpdatedAt))
	assert.True(t, got.IsWorkingDay(time.Sunday))
	assert.False(t, got.IsWorkingDay(time.Monday))
}

func TestDecode_Garbage(t *testing.T) {
	_, err := decode([]byte("{not json"))
	assert.Error(t, err)
}
