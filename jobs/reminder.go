package jobs

import (
	"database/sql"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"go-plantcare/models"
)

// ReminderDigest periodically scans reminder-enabled plants and logs per-user
// overdue/upcoming counts. It observes only; delivering notifications is out
// of scope.
type ReminderDigest struct {
	DB   *sql.DB
	cron *cron.Cron
}

func NewReminderDigest(db *sql.DB) *ReminderDigest {
	return &ReminderDigest{DB: db}
}

// Start schedules the digest with a standard cron spec.
func (j *ReminderDigest) Start(spec string) error {
	j.cron = cron.New()
	if _, err := j.cron.AddFunc(spec, j.run); err != nil {
		return err
	}
	j.cron.Start()
	log.Info().Str("spec", spec).Msg("reminder digest scheduled")
	return nil
}

// Stop halts the scheduler. Safe to call when Start never ran.
func (j *ReminderDigest) Stop() {
	if j.cron != nil {
		j.cron.Stop()
	}
}

func (j *ReminderDigest) run() {
	rows, err := j.DB.Query(`
		SELECT user_id, next_watering FROM plants
		WHERE is_active = 1 AND reminder_enabled = 1`)
	if err != nil {
		log.Error().Err(err).Msg("reminder digest query failed")
		return
	}
	defer rows.Close()

	byUser := make(map[int][]models.Plant)
	for rows.Next() {
		var userID int
		var nextWatering string
		if err := rows.Scan(&userID, &nextWatering); err != nil {
			log.Error().Err(err).Msg("reminder digest scan failed")
			return
		}
		next, err := models.ParseTime(nextWatering)
		if err != nil {
			log.Error().Err(err).Int("userId", userID).Msg("reminder digest bad timestamp")
			continue
		}
		// The WHERE clause already guarantees active + reminders on.
		byUser[userID] = append(byUser[userID], models.Plant{
			UserID:   userID,
			IsActive: true,
			WateringNeeds: models.WateringNeeds{
				ReminderEnabled: true,
				NextWatering:    next,
			},
		})
	}
	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("reminder digest iteration failed")
		return
	}

	now := time.Now()
	for userID, plants := range byUser {
		n := models.ClassifyNotifications(plants, now)
		if n.Count.Total == 0 {
			continue
		}
		log.Info().
			Int("userId", userID).
			Int("overdue", n.Count.Overdue).
			Int("upcoming", n.Count.Upcoming).
			Msg("watering reminder digest")
	}
}
