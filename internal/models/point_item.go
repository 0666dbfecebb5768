package models

// PointItem é a tabela de junção N:N entre Point e Item.
type PointItem struct {
	PointID uint  `gorm:"column:point_id;primaryKey" json:"point_id"`
	Point   Point `gorm:"foreignKey:PointID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	ItemID  uint  `gorm:"column:item_id;primaryKey;index" json:"item_id"`
	Item    Item  `gorm:"foreignKey:ItemID;references:ID" json:"-"`
}

func (PointItem) TableName() string {
	return "points_items"
}
