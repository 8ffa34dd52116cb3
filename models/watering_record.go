package models

import "time"

// WateringRecord 浇水记录，只追加不修改
type WateringRecord struct {
	ID               int       `json:"id"`
	PlantID          int       `json:"plantId"`
	UserID           int       `json:"userId"`
	WateredAt        time.Time `json:"wateredAt"`
	QuantityInLiters float64   `json:"quantityInLiters"`
	Notes            *string   `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// TableName 设置表名
func (WateringRecord) TableName() string {
	return "watering_records"
}
