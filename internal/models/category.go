package models

type Category struct {
	BaseModel
	Name string `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
}

func (Category) TableName() string {
	return "categories"
}
