package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// ExternalRefs holds the identifiers handed back by the publish channels,
// kept so a later delete event can retract what was published.
type ExternalRefs struct {
	IGPostID string `json:"ig_post_id,omitempty"`
	FBPostID string `json:"fb_post_id,omitempty"`
}

// Value implements the driver.Valuer interface
func (r ExternalRefs) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements the sql.Scanner interface
func (r *ExternalRefs) Scan(value interface{}) error {
	if value == nil {
		*r = ExternalRefs{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	default:
		return errors.New("type assertion to []byte failed")
	}
}

func (r ExternalRefs) Empty() bool {
	return r.IGPostID == "" && r.FBPostID == ""
}

// ProcessingRecord is the pipeline's durable memory of having processed an
// item. One row exists per item that completed processing at least once.
type ProcessingRecord struct {
	ItemID             int64        `gorm:"primaryKey" json:"item_id"`
	LastProcessedAt    time.Time    `gorm:"not null" json:"last_processed_at"`
	ContentFingerprint string       `gorm:"type:text" json:"content_fingerprint"`
	ExternalRefs       ExternalRefs `gorm:"type:text" json:"external_refs"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// TableName specifies the table name for ProcessingRecord
func (ProcessingRecord) TableName() string {
	return "processing_records"
}
