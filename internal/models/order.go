package models

import (
	"strings"
	"time"
)

// OrderRecord is one sheet row resolved through the column map and
// normalized for display.
type OrderRecord struct {
	Title          string     `json:"title"`
	ProgressStatus string     `json:"progress_status"`
	OrderDate      string     `json:"order_date"`
	FinishDate     string     `json:"finish_date"`
	FinishDateTime *time.Time `json:"finish_date_time,omitempty"`
	BackupExpired  string     `json:"backup_expired"`
	FileStatus     string     `json:"file_status"`
	ProjectCode    string     `json:"project_code"`
	OrderCode      string     `json:"order_code"`
	Revision       int        `json:"revision"`
}

// CanRequestBackup reports whether the finished files may be requested again.
func (o *OrderRecord) CanRequestBackup() bool {
	return strings.TrimSpace(o.ProgressStatus) == "Approved" &&
		strings.TrimSpace(o.FileStatus) == "File Tersedia"
}

type ProgressStatus string

const (
	ProgressWaitingAsset   ProgressStatus = "waiting asset"
	ProgressPreparingAsset ProgressStatus = "preparing asset"
	ProgressRendering      ProgressStatus = "rendering"
	ProgressRevision       ProgressStatus = "revision"
	ProgressPayment        ProgressStatus = "payment"
	ProgressApproved       ProgressStatus = "approved"
	ProgressOngoing        ProgressStatus = "ongoing"
	ProgressNone           ProgressStatus = "none"
)

// ParseProgressStatus folds a sheet value onto a known status; anything
// unrecognized is ProgressNone. Values starting with "ongoing" are ongoing.
func ParseProgressStatus(value string) ProgressStatus {
	lower := strings.ToLower(strings.TrimSpace(value))
	if strings.HasPrefix(lower, string(ProgressOngoing)) {
		return ProgressOngoing
	}
	switch s := ProgressStatus(lower); s {
	case ProgressWaitingAsset, ProgressPreparingAsset, ProgressRendering,
		ProgressRevision, ProgressPayment, ProgressApproved:
		return s
	}
	return ProgressNone
}

func (s ProgressStatus) Color() string {
	switch s {
	case ProgressWaitingAsset:
		return "#ff9800"
	case ProgressPreparingAsset:
		return "#ffc107"
	case ProgressRendering:
		return "#2196f3"
	case ProgressRevision:
		return "#9c27b0"
	case ProgressPayment:
		return "#4caf50"
	case ProgressApproved:
		return "#2e7d32"
	case ProgressOngoing:
		return "#fbc02d"
	default:
		return "#9e9e9e"
	}
}

type FileStatus string

const (
	FileAvailable   FileStatus = "file tersedia"
	FileUnavailable FileStatus = "file tidak tersedia"
	FileUnknown     FileStatus = "unknown"
)

func ParseFileStatus(value string) FileStatus {
	switch s := FileStatus(strings.ToLower(strings.TrimSpace(value))); s {
	case FileAvailable, FileUnavailable:
		return s
	}
	return FileUnknown
}

func (s FileStatus) Style() string {
	switch s {
	case FileAvailable:
		return "color:#4CAF50;font-weight:bold"
	case FileUnavailable:
		return "color:#F44336;font-weight:bold"
	default:
		return "font-weight:bold"
	}
}
