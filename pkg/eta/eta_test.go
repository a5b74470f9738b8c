package eta

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatDate_SameYear(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "by Mar 22", FormatDate(3, now))
	require.Equal(t, "by Mar 8", FormatDate(1, now))
}

func TestFormatDate_NextYear(t *testing.T) {
	now := time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "by Jan 3, 2025", FormatDate(2, now))
}

func TestTarget_IsExactMinuteOffset(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC)
	for _, p := range []int{1, 2, 7, 10} {
		got := Target(p, now)
		require.Equal(t, time.Duration(p*10080)*time.Minute, got.Sub(now))
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes float64
		want    string
	}{
		{0, "1 min"},
		{0.4, "1 min"},
		{45, "45 min"},
		{59.4, "59 min"},
		{60, "1 hr"},
		{90, "2 hr"},
		{23 * 60, "23 hr"},
		{24 * 60, "1 day"},
		{36 * 60, "2 days"},
		{10080, "7 days"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, FormatDuration(tt.minutes), "minutes=%v", tt.minutes)
	}
}

func TestFormatPositionDuration(t *testing.T) {
	require.Equal(t, "7 days", FormatPositionDuration(1))
	require.Equal(t, "21 days", FormatPositionDuration(3))
}

func TestTarget_LargePositionsStayInTheFuture(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	atMax := Target(MaxPosition, now)
	require.True(t, atMax.After(now))
	require.Equal(t, time.Duration(MaxPosition)*MinutesPerSlot*time.Minute, atMax.Sub(now))

	for _, p := range []int{MaxPosition + 1, 16000, 1000000, math.MaxInt} {
		got := Target(p, now)
		require.True(t, got.After(now), "position=%d", p)
		require.Equal(t, atMax, got, "position=%d", p)
	}

	require.Equal(t, "by Oct 27, 2215", FormatDate(MaxPosition, now))
	require.Equal(t, FormatPositionDuration(MaxPosition), FormatPositionDuration(math.MaxInt))
	require.Equal(t, "70000 days", FormatPositionDuration(MaxPosition))
}
