package validation

import "timeclock/internal/models"

const (
	maxShiftHours      = 12.0
	longShiftHours     = 6.0
	minBreakMinutes    = 30
	nightStartHour     = 22
	nightEndHour       = 6
	nightCautionHours  = 8.0
	maxBreakShareTotal = 0.5
)

type Result struct {
	IsValid        bool                  `json:"is_valid"`
	TotalHours     float64               `json:"total_hours"`
	BreakHours     float64               `json:"break_hours"`
	EffectiveHours float64               `json:"effective_hours"`
	Warnings       []models.LaborWarning `json:"warnings"`
}

// Validate applies all labor rules to the proposed interval and
// accumulates every applicable warning. Rules never short-circuit:
// an invalid range still collects the break-related warnings its
// numbers trigger. Pure, no I/O.
func Validate(iv models.ShiftInterval) Result {
	warnings := make([]models.LaborWarning, 0, 2)

	totalHours := iv.End.Sub(iv.Start).Hours()
	breakHours := float64(iv.BreakMinutes) / 60.0
	// Not clamped at zero when the break exceeds the duration; callers
	// must guard against negative effective hours themselves.
	effectiveHours := totalHours - breakHours

	if !iv.End.After(iv.Start) {
		warnings = append(warnings, models.LaborWarning{
			Kind:     models.WarnInvalidRange,
			Severity: models.SeverityError,
			Code:     "invalid-range",
			Message:  "Shift end must be after shift start",
		})
	}

	if totalHours > maxShiftHours {
		warnings = append(warnings, models.LaborWarning{
			Kind:     models.WarnMaxDurationExceeded,
			Severity: models.SeverityError,
			Code:     "max-duration",
			Message:  "Shift exceeds the maximum of 12 hours",
		})
	}

	if totalHours >= longShiftHours && iv.BreakMinutes < minBreakMinutes {
		warnings = append(warnings, models.LaborWarning{
			Kind:     models.WarnMinBreakRecommended,
			Severity: models.SeverityWarning,
			Code:     "min-break",
			Message:  "A break of at least 30 minutes is recommended for shifts of 6 hours or more",
		})
	}

	if breakHours > maxBreakShareTotal*totalHours {
		warnings = append(warnings, models.LaborWarning{
			Kind:     models.WarnBreakTooLong,
			Severity: models.SeverityWarning,
			Code:     "break-too-long",
			Message:  "Break takes up more than half of the shift",
		})
	}

	// Wall-clock hour of each timestamp, deliberately not timezone
	// normalized. A 23:00-07:00 shift is caught via the start hour.
	if (iv.Start.Hour() >= nightStartHour || iv.End.Hour() <= nightEndHour) && totalHours > nightCautionHours {
		warnings = append(warnings, models.LaborWarning{
			Kind:     models.WarnNightShiftCaution,
			Severity: models.SeverityWarning,
			Code:     "night-shift",
			Message:  "Long night shift, extra rest rules may apply",
		})
	}

	isValid := true
	for _, w := range warnings {
		if w.Severity == models.SeverityError {
			isValid = false
			break
		}
	}

	return Result{
		IsValid:        isValid,
		TotalHours:     totalHours,
		BreakHours:     breakHours,
		EffectiveHours: effectiveHours,
		Warnings:       warnings,
	}
}
