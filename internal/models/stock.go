package models

import "time"

// StockItem is a named spare part and its current balance.
// bal_qty is guarded by a CHECK constraint so no adjustment can drive it negative.
type StockItem struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	StockID    string    `gorm:"column:stockid;uniqueIndex;size:64;not null" json:"stockid"`
	StockDesc  string    `gorm:"column:stock_desc;size:255;not null;default:''" json:"stockDesc"`
	BalQty     int64     `gorm:"column:bal_qty;not null;default:0;check:chk_stock_items_bal_qty,bal_qty >= 0" json:"balQty"`
	Deleted    bool      `gorm:"not null;default:false;index" json:"-"`
	CreatedBy  string    `gorm:"size:16;not null" json:"createdBy"`
	ModifiedBy string    `gorm:"size:16;not null" json:"modifiedBy"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TableName overrides the table name for StockItem
func (StockItem) TableName() string {
	return "stock_items"
}

// Stock movement types recorded in StockAudit
const (
	AuditIn         = "IN"
	AuditOut        = "OUT"
	AuditAdjustment = "ADJUSTMENT"
)

// StockAudit records one balance movement of a stock item
type StockAudit struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	AuditID   string    `gorm:"column:auditid;uniqueIndex;size:64;not null" json:"auditid"`
	RefID     string    `gorm:"column:refid;size:64" json:"refid,omitempty"`
	Module    string    `gorm:"size:16;not null" json:"module"`
	StockID   string    `gorm:"column:stockid;size:64;not null;index" json:"stockid"`
	StockDesc string    `gorm:"column:stock_desc;size:255" json:"stockDesc"`
	PrevQty   int64     `gorm:"not null" json:"prevQty"`
	AdjQty    int64     `gorm:"not null" json:"adjQty"`
	BalQty    int64     `gorm:"not null" json:"balQty"`
	Type      string    `gorm:"size:16;not null" json:"type"`
	Operator  string    `gorm:"size:16;not null" json:"operator"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName overrides the table name for StockAudit
func (StockAudit) TableName() string {
	return "stock_audits"
}
