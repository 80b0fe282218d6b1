package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReportPending   = "pending"
	ReportResolved  = "resolved"
	ReportDismissed = "dismissed"
)

type Report struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ReporterID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_report_once,priority:1" json:"reporter_id"`
	ContentID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_report_once,priority:2;index" json:"content_id"`
	Reason         string     `gorm:"size:30;not null" json:"reason"` // spam, inappropriate, wrong_answer, copyright, other
	Details        string     `gorm:"type:text" json:"details"`
	Status         string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ResolvedBy     *uuid.UUID `gorm:"type:uuid" json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	ResolutionNote string     `gorm:"type:text" json:"resolution_note,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Reporter *User    `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	Content  *Content `gorm:"foreignKey:ContentID;constraint:OnDelete:CASCADE" json:"content,omitempty"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
