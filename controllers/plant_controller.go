package controllers

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"go-plantcare/models"
	"go-plantcare/utils"
)

// PlantController handles the plant collection endpoints.
type PlantController struct {
	DB *sql.DB
}

// NewPlantController creates a new PlantController instance.
func NewPlantController(db *sql.DB) *PlantController {
	return &PlantController{DB: db}
}

// WateringNeedsRequest carries the watering configuration on plant creation.
type WateringNeedsRequest struct {
	QuantityInLiters   float64 `json:"quantityInLiters" binding:"required,gt=0"`
	Frequency          int     `json:"frequency" binding:"required,gt=0"`
	FrequencyUnit      string  `json:"frequencyUnit" binding:"omitempty,oneof=days weeks"`
	LastWatered        string  `json:"lastWatered"`
	PreferredTimeOfDay string  `json:"preferredTimeOfDay" binding:"omitempty,oneof=morning afternoon evening"`
	ReminderEnabled    *bool   `json:"reminderEnabled"`
}

// CreatePlantRequest is the payload for POST /plants.
type CreatePlantRequest struct {
	Name          string               `json:"name" binding:"required"`
	Species       string               `json:"species" binding:"required"`
	PurchaseDate  string               `json:"purchaseDate" binding:"required"`
	Image         string               `json:"image"`
	Notes         string               `json:"notes"`
	WateringNeeds WateringNeedsRequest `json:"wateringNeeds" binding:"required"`
}

// UpdateWateringNeedsRequest is a partial update of the watering configuration.
type UpdateWateringNeedsRequest struct {
	QuantityInLiters   *float64 `json:"quantityInLiters" binding:"omitempty,gt=0"`
	Frequency          *int     `json:"frequency" binding:"omitempty,gt=0"`
	FrequencyUnit      *string  `json:"frequencyUnit" binding:"omitempty,oneof=days weeks"`
	LastWatered        *string  `json:"lastWatered"`
	PreferredTimeOfDay *string  `json:"preferredTimeOfDay" binding:"omitempty,oneof=morning afternoon evening"`
	ReminderEnabled    *bool    `json:"reminderEnabled"`
}

// UpdatePlantRequest is the payload for PATCH /plants/:id.
type UpdatePlantRequest struct {
	Name          *string                     `json:"name"`
	Species       *string                     `json:"species"`
	PurchaseDate  *string                     `json:"purchaseDate"`
	Image         *string                     `json:"image"`
	Notes         *string                     `json:"notes"`
	WateringNeeds *UpdateWateringNeedsRequest `json:"wateringNeeds"`
}

// WaterPlantRequest is the payload for POST /plants/:id/water. The amount can
// come as numeric litres or as a human string like "500ml" or "1.5L".
type WaterPlantRequest struct {
	QuantityInLiters float64 `json:"quantityInLiters" binding:"omitempty,gt=0"`
	Quantity         string  `json:"quantity"`
	WateredAt        string  `json:"wateredAt"`
	Notes            string  `json:"notes"`
}

// parseTimestamp accepts RFC3339 or a plain date. The result is anchored to
// the server zone so stored wall clocks and derived due dates stay consistent.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(time.Local), nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// CreatePlant adds a plant to the caller's collection. The derived due date
// is computed before the insert so it is never stale.
func (c *PlantController) CreatePlant(ctx *gin.Context) {
	userID := ctx.GetInt("userID")

	var req CreatePlantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(ctx, err.Error())
		return
	}

	purchaseDate, err := parseTimestamp(req.PurchaseDate)
	if err != nil {
		utils.BadRequest(ctx, "Invalid purchaseDate: "+err.Error())
		return
	}

	plant := models.Plant{
		UserID:       userID,
		Name:         req.Name,
		Species:      req.Species,
		PurchaseDate: purchaseDate,
		IsActive:     true,
		WateringNeeds: models.WateringNeeds{
			QuantityInLiters:   req.WateringNeeds.QuantityInLiters,
			Frequency:          req.WateringNeeds.Frequency,
			FrequencyUnit:      req.WateringNeeds.FrequencyUnit,
			PreferredTimeOfDay: req.WateringNeeds.PreferredTimeOfDay,
			ReminderEnabled:    true,
		},
	}
	if req.Image != "" {
		plant.Image = &req.Image
	}
	if req.Notes != "" {
		plant.Notes = &req.Notes
	}
	if req.WateringNeeds.ReminderEnabled != nil {
		plant.WateringNeeds.ReminderEnabled = *req.WateringNeeds.ReminderEnabled
	}
	if req.WateringNeeds.LastWatered != "" {
		lastWatered, err := parseTimestamp(req.WateringNeeds.LastWatered)
		if err != nil {
			utils.BadRequest(ctx, "Invalid lastWatered: "+err.Error())
			return
		}
		plant.WateringNeeds.LastWatered = lastWatered
	}

	now := time.Now()
	plant.WateringNeeds.ApplyDefaults(now)
	if err := plant.WateringNeeds.Validate(); err != nil {
		utils.BadRequest(ctx, err.Error())
		return
	}
	plant.RefreshSchedule()
	plant.CreatedAt = now
	plant.UpdatedAt = now

	result, err := c.DB.Exec(`
		INSERT INTO plants (
			user_id, name, species, purchase_date, image, notes,
			quantity_in_liters, frequency, frequency_unit, last_watered, next_watering,
			preferred_time_of_day, reminder_enabled, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		plant.UserID, plant.Name, plant.Species, models.FormatTime(plant.PurchaseDate),
		plant.Image, plant.Notes,
		plant.WateringNeeds.QuantityInLiters, plant.WateringNeeds.Frequency,
		plant.WateringNeeds.FrequencyUnit,
		models.FormatTime(plant.WateringNeeds.LastWatered),
		models.FormatTime(plant.WateringNeeds.NextWatering),
		plant.WateringNeeds.PreferredTimeOfDay, plant.WateringNeeds.ReminderEnabled,
		models.FormatTime(now), models.FormatTime(now),
	)
	if err != nil {
		utils.InternalServerError(ctx, "Failed to insert plant: "+err.Error())
		return
	}

	id, err := result.LastInsertId()
	if err != nil {
		utils.InternalServerError(ctx, "Failed to get last insert ID: "+err.Error())
		return
	}
	plant.ID = int(id)

	utils.Created(ctx, "Plant created successfully", plant)
}

// Columns accepted by the sortBy query parameter.
var plantSortColumns = map[string]string{
	"name":         "name",
	"species":      "species",
	"purchaseDate": "purchase_date",
	"nextWatering": "next_watering",
	"createdAt":    "created_at",
}

// ListPlants returns the caller's plants with optional filtering and sorting.
func (c *PlantController) ListPlants(ctx *gin.Context) {
	userID := ctx.GetInt("userID")

	// Build base query
	query := "SELECT " + plantColumns + " FROM plants WHERE user_id = ?"
	queryParams := []interface{}{userID}

	// Search by name or species
	if search := ctx.Query("search"); search != "" {
		query += " AND (name LIKE ? OR species LIKE ?)"
		searchLike := "%" + search + "%"
		queryParams = append(queryParams, searchLike, searchLike)
	}

	// Filter by active flag, only when provided
	if isActive := ctx.Query("isActive"); isActive != "" {
		active, err := strconv.ParseBool(isActive)
		if err != nil {
			utils.BadRequest(ctx, "Invalid isActive parameter")
			return
		}
		query += " AND is_active = ?"
		queryParams = append(queryParams, active)
	}

	// Plants already due for water
	if needs := ctx.Query("needsWatering"); needs != "" {
		needsWatering, err := strconv.ParseBool(needs)
		if err != nil {
			utils.BadRequest(ctx, "Invalid needsWatering parameter")
			return
		}
		if needsWatering {
			query += " AND next_watering <= ?"
			queryParams = append(queryParams, models.FormatTime(time.Now()))
		}
	}

	// Sorting, whitelisted columns only
	sortColumn, ok := plantSortColumns[ctx.DefaultQuery("sortBy", "createdAt")]
	if !ok {
		utils.BadRequest(ctx, "Invalid sortBy parameter")
		return
	}
	order := "ASC"
	if ctx.Query("sortOrder") == "desc" {
		order = "DESC"
	}
	query += " ORDER BY " + sortColumn + " " + order

	rows, err := c.DB.Query(query, queryParams...)
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

	utils.Success(ctx, "Plants retrieved successfully", plants)
}

// GetPlant returns one plant owned by the caller.
func (c *PlantController) GetPlant(ctx *gin.Context) {
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

	utils.Success(ctx, "Plant retrieved successfully", plant)
}

// UpdatePlant applies a partial update. When any of the four schedule inputs
// changes (lastWatered, frequency, frequencyUnit, preferredTimeOfDay) the due
// date is recomputed before the write, so the derived field never goes stale.
func (c *PlantController) UpdatePlant(ctx *gin.Context) {
	userID := ctx.GetInt("userID")
	plantID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		utils.BadRequest(ctx, "Invalid plant ID")
		return
	}

	var req UpdatePlantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(ctx, err.Error())
		return
	}

	plant, err := fetchPlant(c.DB, plantID, userID)
	if err != nil {
		respondPlantError(ctx, err)
		return
	}

	if req.Name != nil {
		plant.Name = *req.Name
	}
	if req.Species != nil {
		plant.Species = *req.Species
	}
	if req.PurchaseDate != nil {
		purchaseDate, err := parseTimestamp(*req.PurchaseDate)
		if err != nil {
			utils.BadRequest(ctx, "Invalid purchaseDate: "+err.Error())
			return
		}
		plant.PurchaseDate = purchaseDate
	}
	if req.Image != nil {
		plant.Image = req.Image
	}
	if req.Notes != nil {
		plant.Notes = req.Notes
	}

	needsRecompute := false
	if n := req.WateringNeeds; n != nil {
		if n.QuantityInLiters != nil {
			plant.WateringNeeds.QuantityInLiters = *n.QuantityInLiters
		}
		if n.Frequency != nil {
			plant.WateringNeeds.Frequency = *n.Frequency
			needsRecompute = true
		}
		if n.FrequencyUnit != nil {
			plant.WateringNeeds.FrequencyUnit = *n.FrequencyUnit
			needsRecompute = true
		}
		if n.PreferredTimeOfDay != nil {
			plant.WateringNeeds.PreferredTimeOfDay = *n.PreferredTimeOfDay
			needsRecompute = true
		}
		if n.LastWatered != nil {
			lastWatered, err := parseTimestamp(*n.LastWatered)
			if err != nil {
				utils.BadRequest(ctx, "Invalid lastWatered: "+err.Error())
				return
			}
			plant.WateringNeeds.LastWatered = lastWatered
			needsRecompute = true
		}
		if n.ReminderEnabled != nil {
			plant.WateringNeeds.ReminderEnabled = *n.ReminderEnabled
		}
	}

	if err := plant.WateringNeeds.Validate(); err != nil {
		utils.BadRequest(ctx, err.Error())
		return
	}
	if needsRecompute {
		plant.RefreshSchedule()
	}
	plant.UpdatedAt = time.Now()

	_, err = c.DB.Exec(`
		UPDATE plants SET
			name = ?, species = ?, purchase_date = ?, image = ?, notes = ?,
			quantity_in_liters = ?, frequency = ?, frequency_unit = ?,
			last_watered = ?, next_watering = ?, preferred_time_of_day = ?,
			reminder_enabled = ?, updated_at = ?
		WHERE id = ?`,
		plant.Name, plant.Species, models.FormatTime(plant.PurchaseDate),
		plant.Image, plant.Notes,
		plant.WateringNeeds.QuantityInLiters, plant.WateringNeeds.Frequency,
		plant.WateringNeeds.FrequencyUnit,
		models.FormatTime(plant.WateringNeeds.LastWatered),
		models.FormatTime(plant.WateringNeeds.NextWatering),
		plant.WateringNeeds.PreferredTimeOfDay, plant.WateringNeeds.ReminderEnabled,
		models.FormatTime(plant.UpdatedAt), plant.ID,
	)
	if err != nil {
		utils.InternalServerError(ctx, "Failed to update plant: "+err.Error())
		return
	}

	utils.Success(ctx, "Plant updated successfully", plant)
}

// DeletePlant soft-deletes a plant. The row stays for history; list and
// notification queries exclude it through the is_active flag.
func (c *PlantController) DeletePlant(ctx *gin.Context) {
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

	plant.IsActive = false
	_, err = c.DB.Exec("UPDATE plants SET is_active = 0, updated_at = ? WHERE id = ?",
		models.FormatTime(time.Now()), plant.ID)
	if err != nil {
		utils.InternalServerError(ctx, "Failed to delete plant: "+err.Error())
		return
	}

	utils.Success(ctx, "Plant deleted successfully", plant)
}

// WaterPlant records a watering and moves the schedule. Early waterings keep
// the planned due date; on-time or late ones re-anchor it to the watering
// moment. Record insert and plant update happen in one transaction.
func (c *PlantController) WaterPlant(ctx *gin.Context) {
	userID := ctx.GetInt("userID")
	plantID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		utils.BadRequest(ctx, "Invalid plant ID")
		return
	}

	var req WaterPlantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(ctx, err.Error())
		return
	}

	quantity := req.QuantityInLiters
	if req.Quantity != "" {
		parsed, err := utils.ParseWaterQuantity(req.Quantity)
		if err != nil {
			utils.BadRequest(ctx, "Invalid quantity: "+err.Error())
			return
		}
		quantity = parsed
	}
	if quantity <= 0 {
		utils.BadRequest(ctx, "A positive quantityInLiters or quantity is required")
		return
	}

	plant, err := fetchPlant(c.DB, plantID, userID)
	if err != nil {
		respondPlantError(ctx, err)
		return
	}

	wateredAt := time.Now()
	if req.WateredAt != "" {
		if wateredAt, err = parseTimestamp(req.WateredAt); err != nil {
			utils.BadRequest(ctx, "Invalid wateredAt: "+err.Error())
			return
		}
	}

	outcome := plant.ApplyWatering(wateredAt)

	record := models.WateringRecord{
		PlantID:          plant.ID,
		UserID:           userID,
		WateredAt:        wateredAt,
		QuantityInLiters: quantity,
		CreatedAt:        time.Now(),
	}
	if req.Notes != "" {
		record.Notes = &req.Notes
	}

	tx, err := c.DB.Begin()
	if err != nil {
		utils.InternalServerError(ctx, "Failed to start transaction: "+err.Error())
		return
	}

	result, err := tx.Exec(`
		INSERT INTO watering_records (plant_id, user_id, watered_at, quantity_in_liters, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		record.PlantID, record.UserID, models.FormatTime(record.WateredAt),
		record.QuantityInLiters, record.Notes, models.FormatTime(record.CreatedAt),
	)
	if err != nil {
		tx.Rollback()
		utils.InternalServerError(ctx, "Failed to insert watering record: "+err.Error())
		return
	}
	recordID, err := result.LastInsertId()
	if err != nil {
		tx.Rollback()
		utils.InternalServerError(ctx, "Failed to get last insert ID: "+err.Error())
		return
	}
	record.ID = int(recordID)

	if err := saveWateringState(tx, plant); err != nil {
		tx.Rollback()
		utils.InternalServerError(ctx, "Failed to update plant: "+err.Error())
		return
	}

	if err := tx.Commit(); err != nil {
		utils.InternalServerError(ctx, "Failed to commit transaction: "+err.Error())
		return
	}

	utils.Success(ctx, outcome.Message, gin.H{
		"plant":          plant,
		"wateringRecord": record,
		"quantity":       utils.FormatWaterQuantity(quantity),
		"message":        outcome.Message,
		"wasEarly":       outcome.WasEarly,
	})
}

// GetWateringHistory returns a plant's watering records, newest first, with
// pagination.
func (c *PlantController) GetWateringHistory(ctx *gin.Context) {
	userID := ctx.GetInt("userID")
	plantID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		utils.BadRequest(ctx, "Invalid plant ID")
		return
	}

	if _, err := fetchPlant(c.DB, plantID, userID); err != nil {
		respondPlantError(ctx, err)
		return
	}

	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil || page <= 0 {
		utils.BadRequest(ctx, "Invalid page parameter. Page should be a positive integer")
		return
	}
	pageSize, err := strconv.Atoi(ctx.DefaultQuery("pageSize", "20"))
	if err != nil || pageSize <= 0 {
		utils.BadRequest(ctx, "Invalid pageSize parameter. Page size should be a positive integer")
		return
	}

	rows, err := c.DB.Query(`
		SELECT id, plant_id, user_id, watered_at, quantity_in_liters, notes, created_at
		FROM watering_records WHERE plant_id = ?
		ORDER BY watered_at DESC LIMIT ? OFFSET ?`,
		plantID, pageSize, (page-1)*pageSize,
	)
	if err != nil {
		utils.InternalServerError(ctx, "Error querying watering records: "+err.Error())
		return
	}
	defer rows.Close()

	records := []models.WateringRecord{}
	for rows.Next() {
		r, err := scanWateringRecord(rows)
		if err != nil {
			utils.InternalServerError(ctx, "Error scanning watering record row: "+err.Error())
			return
		}
		records = append(records, *r)
	}
	if err = rows.Err(); err != nil {
		utils.InternalServerError(ctx, "Error iterating watering record rows: "+err.Error())
		return
	}

	var totalCount int
	if err := c.DB.QueryRow("SELECT COUNT(*) FROM watering_records WHERE plant_id = ?", plantID).Scan(&totalCount); err != nil {
		utils.InternalServerError(ctx, "Error getting total count: "+err.Error())
		return
	}

	utils.SuccessWithPagination(ctx, "Watering history retrieved successfully", records, totalCount, page, pageSize)
}

// GetPlantStats returns display-only statistics derived from the full
// watering history.
func (c *PlantController) GetPlantStats(ctx *gin.Context) {
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

	rows, err := c.DB.Query(`
		SELECT id, plant_id, user_id, watered_at, quantity_in_liters, notes, created_at
		FROM watering_records WHERE plant_id = ?
		ORDER BY watered_at DESC`, plantID)
	if err != nil {
		utils.InternalServerError(ctx, "Error querying watering records: "+err.Error())
		return
	}
	defer rows.Close()

	records := []models.WateringRecord{}
	for rows.Next() {
		r, err := scanWateringRecord(rows)
		if err != nil {
			utils.InternalServerError(ctx, "Error scanning watering record row: "+err.Error())
			return
		}
		records = append(records, *r)
	}
	if err = rows.Err(); err != nil {
		utils.InternalServerError(ctx, "Error iterating watering record rows: "+err.Error())
		return
	}

	stats := models.ComputeStats(plant, records)
	utils.Success(ctx, "Plant statistics retrieved successfully", stats)
}
