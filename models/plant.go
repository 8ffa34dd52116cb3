package models

import (
	"fmt"
	"time"
)

// 时间在数据库中统一存为该格式的字符串
const TimeLayout = "2006-01-02 15:04:05"

// FormatTime 格式化时间用于入库，统一转为服务器本地时区
func FormatTime(t time.Time) string {
	return t.In(time.Local).Format(TimeLayout)
}

// ParseTime 解析数据库中的时间字符串
func ParseTime(s string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, s, time.Local)
}

// 浇水频率单位
const (
	FrequencyUnitDays  = "days"
	FrequencyUnitWeeks = "weeks"
)

// 偏好浇水时段
const (
	TimeOfDayMorning   = "morning"
	TimeOfDayAfternoon = "afternoon"
	TimeOfDayEvening   = "evening"
)

// WateringNeeds 植物的浇水需求，每株植物各持有一份
type WateringNeeds struct {
	QuantityInLiters   float64   `json:"quantityInLiters"`
	Frequency          int       `json:"frequency"`
	FrequencyUnit      string    `json:"frequencyUnit"`
	LastWatered        time.Time `json:"lastWatered"`
	NextWatering       time.Time `json:"nextWatering"`
	PreferredTimeOfDay string    `json:"preferredTimeOfDay"`
	ReminderEnabled    bool      `json:"reminderEnabled"`
}

// ApplyDefaults 填充缺省值。lastWatered 为零值时取当前时间。
func (n *WateringNeeds) ApplyDefaults(now time.Time) {
	if n.FrequencyUnit == "" {
		n.FrequencyUnit = FrequencyUnitDays
	}
	if n.PreferredTimeOfDay == "" {
		n.PreferredTimeOfDay = TimeOfDayMorning
	}
	if n.LastWatered.IsZero() {
		n.LastWatered = now
	}
}

// Validate 校验浇水需求，入库前调用
func (n *WateringNeeds) Validate() error {
	if n.QuantityInLiters <= 0 {
		return fmt.Errorf("quantityInLiters must be positive, got %v", n.QuantityInLiters)
	}
	if n.Frequency <= 0 {
		return fmt.Errorf("frequency must be positive, got %d", n.Frequency)
	}
	if n.FrequencyUnit != FrequencyUnitDays && n.FrequencyUnit != FrequencyUnitWeeks {
		return fmt.Errorf("unrecognized frequencyUnit %q", n.FrequencyUnit)
	}
	switch n.PreferredTimeOfDay {
	case TimeOfDayMorning, TimeOfDayAfternoon, TimeOfDayEvening:
	default:
		return fmt.Errorf("unrecognized preferredTimeOfDay %q", n.PreferredTimeOfDay)
	}
	return nil
}

// Plant 植物模型
type Plant struct {
	ID            int           `json:"id"`
	UserID        int           `json:"userId"`
	Name          string        `json:"name"`
	Species       string        `json:"species"`
	PurchaseDate  time.Time     `json:"purchaseDate"`
	Image         *string       `json:"image,omitempty"`
	Notes         *string       `json:"notes,omitempty"`
	WateringNeeds WateringNeeds `json:"wateringNeeds"`
	IsActive      bool          `json:"isActive"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// TableName 设置表名
func (Plant) TableName() string {
	return "plants"
}
