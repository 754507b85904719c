package ds

type BusinessCategory struct {
	ID          int    `gorm:"primaryKey;column:id" json:"id"`
	Name        string `gorm:"column:name;size:128;not null" json:"name"`
	Description string `gorm:"column:description;type:text" json:"description"`
	Status      string `gorm:"column:status;size:16;default:active" json:"status"`
}

func (BusinessCategory) TableName() string {
	return "business_categories"
}

type Region struct {
	ID     int    `gorm:"primaryKey;column:id" json:"id"`
	Name   string `gorm:"column:name;size:128;not null" json:"name"`
	Code   string `gorm:"column:code;size:32" json:"code"`
	Status string `gorm:"column:status;size:16;default:active" json:"status"`
}

func (Region) TableName() string {
	return "regions"
}

type BusinessService struct {
	ID          int               `gorm:"primaryKey;column:id" json:"id"`
	CategoryID  int               `gorm:"column:category_id;index;not null" json:"category_id"`
	Category    *BusinessCategory `gorm:"foreignKey:CategoryID" json:"-"`
	Name        string            `gorm:"column:name;size:128;not null" json:"name"`
	Description string            `gorm:"column:description;type:text" json:"description"`
	Status      string            `gorm:"column:status;size:16;default:active" json:"status"`
}

func (BusinessService) TableName() string {
	return "business_services"
}

type BusinessData struct {
	ID        int              `gorm:"primaryKey;column:id" json:"id"`
	ServiceID int              `gorm:"column:service_id;index;not null" json:"service_id"`
	Service   *BusinessService `gorm:"foreignKey:ServiceID" json:"-"`
	RegionID  int              `gorm:"column:region_id;index;not null" json:"region_id"`
	Region    *Region          `gorm:"foreignKey:RegionID" json:"-"`
	Value     float64          `gorm:"column:value" json:"value"`
	Unit      string           `gorm:"column:unit;size:32" json:"unit"`
	Year      int              `gorm:"column:year;index" json:"year"`
	Month     int              `gorm:"column:month" json:"month"`
}

func (BusinessData) TableName() string {
	return "business_data"
}

// ServiceRow is a business service joined with its category name.
type ServiceRow struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// BusinessDataRow is one line of the business data listing.
type BusinessDataRow struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Region   string  `json:"region"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit"`
	Year     int     `json:"year"`
	Month    int     `json:"month"`
	Status   string  `json:"status"`
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&DataCategory{},
		&DataItem{},
		&BusinessCategory{},
		&Region{},
		&BusinessService{},
		&BusinessData{},
	}
}
