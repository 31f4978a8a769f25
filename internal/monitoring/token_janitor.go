package monitoring

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// TokenPurger clears expired verification and reset tokens.
type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

// TokenJanitor periodically purges expired verification and password-reset
// tokens so stale tokens do not linger in the database.
type TokenJanitor struct {
	purger   TokenPurger
	schedule string
	cron     *cron.Cron
}

// NewTokenJanitor creates a janitor running on the given cron schedule,
// e.g. "@hourly".
func NewTokenJanitor(purger TokenPurger, schedule string) *TokenJanitor {
	return &TokenJanitor{
		purger:   purger,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Run starts the janitor. It purges once immediately, then on the schedule.
func (j *TokenJanitor) Run() error {
	log.Info().Str("schedule", j.schedule).Msg("Starting token janitor...")
	j.purge()
	if _, err := j.cron.AddFunc(j.schedule, j.purge); err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop halts the janitor and waits for a running purge to finish.
func (j *TokenJanitor) Stop() {
	log.Info().Msg("Stopping token janitor.")
	<-j.cron.Stop().Done()
}

func (j *TokenJanitor) purge() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	purged, err := j.purger.PurgeExpiredTokens(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to purge expired tokens")
		return
	}
	if purged > 0 {
		log.Info().Int64("purged", purged).Msg("Cleared expired tokens")
	}
}
