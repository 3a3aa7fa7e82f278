package models

import "time"

// PartRequest status values. CANCELLED is terminal; Closed is what queries
// filter on, so new terminal statuses need no query changes.
const (
	PRStatusNew       = "NEW"
	PRStatusOrdered   = "ORDERED"
	PRStatusDelivered = "DELIVERED"
	PRStatusReturned  = "RETURNED"
	PRStatusCancelled = "CANCELLED"
)

// PartRequest is one request for a stock item raised from a job
type PartRequest struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	PrqID      string    `gorm:"column:prqid;uniqueIndex;size:64;not null" json:"prqid"`
	JobID      string    `gorm:"column:jobid;size:32;not null;index" json:"jobid"`
	StockID    string    `gorm:"column:stockid;size:64;not null;index" json:"stockid"`
	StockDesc  string    `gorm:"column:stock_desc;size:255" json:"stockDesc"`
	ReqQty     int64     `gorm:"column:req_qty;not null;check:chk_part_requests_req_qty,req_qty > 0" json:"reqQty"`
	Status     string    `gorm:"size:16;not null;default:NEW" json:"status"`
	Closed     bool      `gorm:"not null;default:false;index" json:"-"`
	CreatedBy  string    `gorm:"size:16;not null" json:"createdBy"`
	ModifiedBy string    `gorm:"size:16;not null" json:"modifiedBy"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `gorm:"index" json:"modifiedAt"`
}

// TableName overrides the table name for PartRequest
func (PartRequest) TableName() string {
	return "part_requests"
}
