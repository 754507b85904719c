package ds

import "time"

// @Schema(description="Data category grouping data items")
type DataCategory struct {
	ID          int       `gorm:"primaryKey;column:id" json:"id"`
	Name        string    `gorm:"column:name;size:128;not null" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Status      string    `gorm:"column:status;size:16;default:active" json:"status"`
	CreatedBy   int       `gorm:"column:created_by" json:"created_by"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedBy   int       `gorm:"column:updated_by" json:"updated_by"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (DataCategory) TableName() string {
	return "data_categories"
}

// @Schema(description="Data item belonging to a data category")
type DataItem struct {
	ID         int           `gorm:"primaryKey;column:id" json:"id"`
	Name       string        `gorm:"column:name;size:128;not null" json:"name"`
	CategoryID int           `gorm:"column:category_id;index;not null" json:"category_id"`
	Category   *DataCategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"-"`
	Content    string        `gorm:"column:content;type:text" json:"content"`
	DataType   string        `gorm:"column:data_type;size:32" json:"data_type"`
	Status     string        `gorm:"column:status;size:16;default:active" json:"status"`
	Attachment string        `gorm:"column:attachment;size:255" json:"attachment"`
	CreatedBy  int           `gorm:"column:created_by" json:"created_by"`
	CreatedAt  time.Time     `gorm:"column:created_at" json:"created_at"`
	UpdatedBy  int           `gorm:"column:updated_by" json:"updated_by"`
	UpdatedAt  time.Time     `gorm:"column:updated_at" json:"updated_at"`

	// заполняется через LEFT JOIN data_categories
	CategoryName *string `gorm:"column:category_name;->;-:migration" json:"category_name"`
}

func (DataItem) TableName() string {
	return "data_items"
}
