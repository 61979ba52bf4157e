package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fatflowers/financeplus/pkg/types"
)

func TestAddInterval(t *testing.T) {
	d := func(y int, m time.Month, day int) time.Time { return time.Date(y, m, day, 9, 30, 0, 0, time.UTC) }
	tests := []struct {
		name     string
		start    time.Time
		interval types.Interval
		n        int
		want     time.Time
	}{
		{name: "plain month", start: d(2024, 5, 1), interval: types.IntervalMonth, n: 1, want: d(2024, 6, 1)},
		{name: "jan 31 leap", start: d(2024, 1, 31), interval: types.IntervalMonth, n: 1, want: d(2024, 2, 29)},
		{name: "jan 31 common", start: d(2023, 1, 31), interval: types.IntervalMonth, n: 1, want: d(2023, 2, 28)},
		{name: "mar 31 to apr 30", start: d(2024, 3, 31), interval: types.IntervalMonth, n: 1, want: d(2024, 4, 30)},
		{name: "year rollover", start: d(2024, 12, 15), interval: types.IntervalMonth, n: 1, want: d(2025, 1, 15)},
		{name: "several months", start: d(2024, 8, 31), interval: types.IntervalMonth, n: 6, want: d(2025, 2, 28)},
		{name: "feb 29 plus a year", start: d(2024, 2, 29), interval: types.IntervalYear, n: 1, want: d(2025, 2, 28)},
		{name: "feb 29 plus four years", start: d(2024, 2, 29), interval: types.IntervalYear, n: 4, want: d(2028, 2, 29)},
		{name: "plain year", start: d(2024, 5, 1), interval: types.IntervalYear, n: 1, want: d(2025, 5, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, AddInterval(tt.start, tt.interval, tt.n))
		})
	}
}
