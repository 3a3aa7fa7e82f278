package models

import "time"

// Sequence holds the running number for one identifier namespace
type Sequence struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	SeqID     string `gorm:"column:seqid;uniqueIndex;size:64;not null"`
	NextSeq   int64  `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the table name for Sequence
func (Sequence) TableName() string {
	return "sequences"
}
