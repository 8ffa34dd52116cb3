package controllers

import (
	"database/sql"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"go-plantcare/models"
	"go-plantcare/utils"
)

var (
	errPlantNotFound  = errors.New("plant not found")
	errPlantForbidden = errors.New("plant owned by another user")
)

const plantColumns = `id, user_id, name, species, purchase_date, image, notes,
	quantity_in_liters, frequency, frequency_unit, last_watered, next_watering,
	preferred_time_of_day, reminder_enabled, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// scanPlant 从一行查询结果构造植物模型
func scanPlant(row rowScanner) (*models.Plant, error) {
	var p models.Plant
	var image, notes, createdAt, updatedAt sql.NullString
	var purchaseDate, lastWatered, nextWatering string

	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Species, &purchaseDate, &image, &notes,
		&p.WateringNeeds.QuantityInLiters, &p.WateringNeeds.Frequency, &p.WateringNeeds.FrequencyUnit,
		&lastWatered, &nextWatering, &p.WateringNeeds.PreferredTimeOfDay,
		&p.WateringNeeds.ReminderEnabled, &p.IsActive, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if p.PurchaseDate, err = models.ParseTime(purchaseDate); err != nil {
		return nil, err
	}
	if p.WateringNeeds.LastWatered, err = models.ParseTime(lastWatered); err != nil {
		return nil, err
	}
	if p.WateringNeeds.NextWatering, err = models.ParseTime(nextWatering); err != nil {
		return nil, err
	}
	if image.Valid {
		p.Image = &image.String
	}
	if notes.Valid {
		p.Notes = &notes.String
	}
	if createdAt.Valid {
		p.CreatedAt, _ = models.ParseTime(createdAt.String)
	}
	if updatedAt.Valid {
		p.UpdatedAt, _ = models.ParseTime(updatedAt.String)
	}
	return &p, nil
}

// fetchPlant 按ID查询植物：不存在返回404错误，归属他人返回403错误
func fetchPlant(db *sql.DB, plantID, userID int) (*models.Plant, error) {
	row := db.QueryRow("SELECT "+plantColumns+" FROM plants WHERE id = ?", plantID)
	p, err := scanPlant(row)
	if err == sql.ErrNoRows {
		return nil, errPlantNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, errPlantForbidden
	}
	return p, nil
}

// respondPlantError 将查询错误映射为对应的HTTP响应
func respondPlantError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errPlantNotFound):
		utils.NotFound(c, "Plant not found")
	case errors.Is(err, errPlantForbidden):
		utils.Forbidden(c, "You do not have access to this plant")
	default:
		utils.InternalServerError(c, "Database error: "+err.Error())
	}
}

// saveWateringState 持久化浇水相关的派生字段
func saveWateringState(exec execer, p *models.Plant) error {
	_, err := exec.Exec(
		"UPDATE plants SET last_watered = ?, next_watering = ?, reminder_enabled = ?, updated_at = ? WHERE id = ?",
		models.FormatTime(p.WateringNeeds.LastWatered),
		models.FormatTime(p.WateringNeeds.NextWatering),
		p.WateringNeeds.ReminderEnabled,
		models.FormatTime(time.Now()),
		p.ID,
	)
	return err
}

// scanWateringRecord 从一行查询结果构造浇水记录
func scanWateringRecord(row rowScanner) (*models.WateringRecord, error) {
	var r models.WateringRecord
	var notes, createdAt sql.NullString
	var wateredAt string

	err := row.Scan(&r.ID, &r.PlantID, &r.UserID, &wateredAt, &r.QuantityInLiters, &notes, &createdAt)
	if err != nil {
		return nil, err
	}
	if r.WateredAt, err = models.ParseTime(wateredAt); err != nil {
		return nil, err
	}
	if notes.Valid {
		r.Notes = &notes.String
	}
	if createdAt.Valid {
		r.CreatedAt, _ = models.ParseTime(createdAt.String)
	}
	return &r, nil
}
