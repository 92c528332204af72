package evaluation

import (
	"fmt"
	"time"

	"github.com/gatewise/accesssim/models"
	"github.com/gatewise/accesssim/services"
)

// Clock bounds used when a time window omits one side.
const (
	defaultWindowStart = "00:00"
	defaultWindowEnd   = "23:59"
)

// parseClock converts an "HH:MM" string to minutes after midnight.
// Malformed input is a policy authoring defect and fails fast; it is never
// silently replaced with a default.
func parseClock(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", value, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// minuteOfDay reduces an instant to hours:minutes resolution, the
// granularity time windows are expressed in.
func minuteOfDay(at time.Time) int {
	return at.Hour()*60 + at.Minute()
}

// effectiveBounds fills in the default for any omitted side of a window.
func effectiveBounds(window *models.TimeWindow) (string, string) {
	start := window.StartTime
	if start == "" {
		start = defaultWindowStart
	}
	end := window.EndTime
	if end == "" {
		end = defaultWindowEnd
	}
	return start, end
}

// matchTimeWindow reports whether the instant falls inside the window,
// inclusive on both ends. A nil window always matches. When the end
// precedes the start the literal comparison never holds, so overnight
// windows never match; that mirrors the documented (non-)support for
// cross-midnight ranges.
func matchTimeWindow(window *models.TimeWindow, at time.Time) (bool, error) {
	if window == nil {
		return true, nil
	}

	startStr, endStr := effectiveBounds(window)

	start, err := parseClock(startStr)
	if err != nil {
		return false, services.WrapError(services.ErrorTypeMalformedCondition, "malformed time window start", err)
	}
	end, err := parseClock(endStr)
	if err != nil {
		return false, services.WrapError(services.ErrorTypeMalformedCondition, "malformed time window end", err)
	}

	now := minuteOfDay(at)
	return start <= now && now <= end, nil
}

// matchLocation reports whether the context location is in the allowed
// set. An absent or empty set is vacuously true.
func matchLocation(allowed []string, ctx models.RequestContext) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, loc := range allowed {
		if ctx.Location == loc {
			return true
		}
	}
	return false
}

// matchDeviceHealth reports whether the context device posture equals the
// required label, case-sensitively. An absent requirement is vacuously true.
func matchDeviceHealth(required string, ctx models.RequestContext) bool {
	if required == "" {
		return true
	}
	return ctx.DeviceHealth == required
}

// MatchConditions evaluates a policy's condition predicate against a
// context snapshot at the given instant. All declared conditions must
// hold; absent conditions hold vacuously. The only error case is a
// malformed time window, which callers must surface rather than skip.
func MatchConditions(cond models.Conditions, ctx models.RequestContext, at time.Time) (bool, string, error) {
	ok, err := matchTimeWindow(cond.Time, at)
	if err != nil {
		return false, "", err
	}
	if !ok {
		start, end := effectiveBounds(cond.Time)
		return false, fmt.Sprintf("time %s outside window %s-%s",
			at.Format("15:04"), start, end), nil
	}

	if !matchLocation(cond.Locations, ctx) {
		return false, fmt.Sprintf("location %q not in allowed set", ctx.Location), nil
	}

	if !matchDeviceHealth(cond.DeviceHealth, ctx) {
		return false, fmt.Sprintf("device health %q does not satisfy required %q",
			ctx.DeviceHealth, cond.DeviceHealth), nil
	}

	return true, "", nil
}
