package market

import (
	"fmt"
	"time"

	"stonk-trader/internal/store"
)

// Hours validates trading hours against an exchange calendar: a fixed
// local time zone, a daily open/close window, weekends off, and a
// year-independent MM-DD holiday list. All instants cross the API as
// UTC; weekday and time-of-day checks happen in the exchange zone so
// daylight-saving transitions are handled by the zone database.
type Hours struct {
	enforce  bool
	loc      *time.Location
	openMin  int // minutes since local midnight
	closeMin int
	holidays map[string]struct{}
}

func NewHours(cfg store.MarketHoursConfig) (*Hours, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("market_hours.timezone: %w", err)
	}
	openMin, err := parseClock(cfg.Open)
	if err != nil {
		return nil, fmt.Errorf("market_hours.open: %w", err)
	}
	closeMin, err := parseClock(cfg.Close)
	if err != nil {
		return nil, fmt.Errorf("market_hours.close: %w", err)
	}
	if closeMin <= openMin {
		return nil, fmt.Errorf("market close %q must be after open %q", cfg.Close, cfg.Open)
	}
	holidays := make(map[string]struct{}, len(cfg.Holidays))
	for _, d := range cfg.Holidays {
		holidays[d] = struct{}{}
	}
	return &Hours{
		enforce:  cfg.Enforce,
		loc:      loc,
		openMin:  openMin,
		closeMin: closeMin,
		holidays: holidays,
	}, nil
}

func (h *Hours) Enforced() bool { return h.enforce }

// IsOpen reports whether the market is trading at now. With enforcement
// disabled the market is always open.
func (h *Hours) IsOpen(now time.Time) bool {
	if !h.enforce {
		return true
	}
	local := now.In(h.loc)
	if !h.isTradingDay(local) {
		return false
	}
	m := minuteOfDay(local)
	return m >= h.openMin && m < h.closeMin
}

// NextOpen returns the next opening instant in UTC. The second return
// is false when enforcement is disabled and no deferral is ever needed.
// The forward scan is capped at ten days to bound holiday runs; past
// that it falls back to the following Monday's open.
func (h *Hours) NextOpen(now time.Time) (time.Time, bool) {
	if !h.enforce {
		return time.Time{}, false
	}
	local := now.In(h.loc)

	if minuteOfDay(local) < h.openMin && h.isTradingDay(local) {
		return h.openOn(local), true
	}

	day := local.AddDate(0, 0, 1)
	for i := 0; i < 10; i++ {
		if h.isTradingDay(day) {
			return h.openOn(day), true
		}
		day = day.AddDate(0, 0, 1)
	}

	daysUntilMonday := (int(time.Monday) - int(local.Weekday()) + 7) % 7
	if daysUntilMonday == 0 {
		daysUntilMonday = 7
	}
	return h.openOn(local.AddDate(0, 0, daysUntilMonday)), true
}

func (h *Hours) isTradingDay(local time.Time) bool {
	if local.Weekday() == time.Saturday || local.Weekday() == time.Sunday {
		return false
	}
	_, holiday := h.holidays[local.Format("01-02")]
	return !holiday
}

// openOn builds the opening instant on the given local calendar day.
func (h *Hours) openOn(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), h.openMin/60, h.openMin%60, 0, 0, h.loc).UTC()
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
