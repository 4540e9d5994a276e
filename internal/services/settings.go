package services

import (
	"context"
	"fmt"
	"strings"

	"moneytracker/internal/core"
	"moneytracker/internal/i18n"
	"moneytracker/internal/log"
)

// Settings returns the current settings.
func (t *Tracker) Settings() core.Settings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settings
}

// SetCurrency selects an ISO 4217 currency. Blank input and unknown codes
// are Rejected with core.ErrInvalidCurrency; the previous currency stays.
func (t *Tracker) SetCurrency(ctx context.Context, code string) (core.Settings, Outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if strings.TrimSpace(code) == "" {
		return t.settings, Rejected, fmt.Errorf("%w: empty code", core.ErrInvalidCurrency)
	}
	parsed, err := i18n.ParseCurrency(code)
	if err != nil {
		t.logger.InfoContext(ctx, "Currency rejected", "currency", code, log.FieldError, err)
		return t.settings, Rejected, err
	}
	t.settings.Currency = parsed
	t.saveSettings(ctx)
	return t.settings, Applied, nil
}

// ToggleTheme flips between light and dark.
func (t *Tracker) ToggleTheme(ctx context.Context) core.Settings {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.settings.Theme = t.settings.Theme.Toggle()
	t.saveSettings(ctx)
	return t.settings
}

// SetTheme selects "light" or "dark".
func (t *Tracker) SetTheme(ctx context.Context, theme string) (core.Settings, Outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	parsed, err := core.ParseTheme(theme)
	if err != nil {
		return t.settings, Rejected, err
	}
	t.settings.Theme = parsed
	t.saveSettings(ctx)
	return t.settings, Applied, nil
}

func (t *Tracker) saveSettings(ctx context.Context) {
	if err := t.settingsRepo.Save(ctx, t.settings); err != nil {
		t.storageFailure(ctx, log.OpWrite, err)
		return
	}
	t.logger.DebugContext(ctx, "Settings saved",
		"currency", t.settings.Currency,
		"theme", t.settings.Theme)
}
