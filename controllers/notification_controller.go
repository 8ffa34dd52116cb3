package controllers

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"go-plantcare/models"
	"go-plantcare/utils"
)

// NotificationController handles watering reminders: buckets, snooze, and the
// per-plant reminder flag.
type NotificationController struct {
	DB *sql.DB
}

// NewNotificationController creates a new NotificationController instance.
func NewNotificationController(db *sql.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetNotifications buckets the caller's active, reminder-enabled plants into
// overdue and upcoming relative to now.
func (c *NotificationController) GetNotifications(ctx *gin.Context) {
	userID := ctx.GetInt("userID")

	rows, err := c.DB.Query(
		"SELECT "+plantColumns+" FROM plants WHERE user_id = ? AND is_active = 1 AND reminder_enabled = 1",
		userID,
	)
	if err != nil {
		utils.InternalServerError(ctx, "Error querying plants: "+err.Error())
		return
	}
	defer rows.Close()

	plants := []models.Plant{}
	for rows.Next() {
		p, err := scanPlant(rows)
		if err != nil {
			utils.InternalServerError(ctx, "Error scanning plant row: "+err.Error())
			return
		}
		plants = append(plants, *p)
	}
	if err = rows.Err(); err != nil {
		utils.InternalServerError(ctx, "Error iterating plant rows: "+err.Error())
		return
	}

	notifications := models.ClassifyNotifications(plants, time.Now())
	utils.Success(ctx, "Notifications retrieved successfully", notifications)
}

// Snooze defers a plant's due date by one hour. Repeated calls stack.
func (c *NotificationController) Snooze(ctx *gin.Context) {
	userID := ctx.GetInt("userID")
	plantID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		utils.BadRequest(ctx, "Invalid plant ID")
		return
	}

	plant, err := fetchPlant(c.DB, plantID, userID)
	if err != nil {
		respondPlantError(ctx, err)
		return
	}

	plant.Snooze()
	if err := saveWateringState(c.DB, plant); err != nil {
		utils.InternalServerError(ctx, "Failed to snooze plant: "+err.Error())
		return
	}

	utils.Success(ctx, "Watering reminder snoozed for 1 hour", plant)
}

// EnableReminders turns notifications back on for a plant.
func (c *NotificationController) EnableReminders(ctx *gin.Context) {
	c.setReminderEnabled(ctx, true, "Reminders enabled")
}

// DisableReminders turns notifications off for a plant.
func (c *NotificationController) DisableReminders(ctx *gin.Context) {
	c.setReminderEnabled(ctx, false, "Reminders disabled")
}

func (c *NotificationController) setReminderEnabled(ctx *gin.Context, enabled bool, message string) {
	userID := ctx.GetInt("userID")
	plantID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		utils.BadRequest(ctx, "Invalid plant ID")
		return
	}

	plant, err := fetchPlant(c.DB, plantID, userID)
	if err != nil {
		respondPlantError(ctx, err)
		return
	}

	plant.WateringNeeds.ReminderEnabled = enabled
	if err := saveWateringState(c.DB, plant); err != nil {
		utils.InternalServerError(ctx, "Failed to update reminders: "+err.Error())
		return
	}

	utils.Success(ctx, message, plant)
}
