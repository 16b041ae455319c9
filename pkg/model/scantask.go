package model

import "time"

type ScanStatus string

const (
	ScanStatusPending   ScanStatus = "pending"
	ScanStatusRunning   ScanStatus = "running"
	ScanStatusCompleted ScanStatus = "completed"
	ScanStatusFailed    ScanStatus = "failed"
	ScanStatusCancelled ScanStatus = "cancelled"
)

// Terminal reports whether the status is absorbing (no further transitions).
func (s ScanStatus) Terminal() bool {
	switch s {
	case ScanStatusCompleted, ScanStatusFailed, ScanStatusCancelled:
		return true
	}
	return false
}

type ScanType string

const (
	ScanTypeQuick         ScanType = "quick"
	ScanTypeComprehensive ScanType = "comprehensive"
	ScanTypeSNMP          ScanType = "snmp"
	ScanTypeARP           ScanType = "arp"
	ScanTypeARPTable      ScanType = "arp_table"
)

// ScanTask tracks one network scan executing on the backend. At most one
// task is active (pending or running) system-wide.
type ScanTask struct {
	ID           int64      `json:"id"`
	Target       string     `json:"target"` // CIDR or address range
	ScanType     ScanType   `json:"scan_type"`
	Status       ScanStatus `json:"status"`
	Progress     int        `json:"progress"` // 0..100
	CompletedIPs int        `json:"completed_ips"`
	TotalIPs     int        `json:"total_ips"`
	CurrentIP    string     `json:"current_ip,omitempty"`
	Error        string     `json:"error,omitempty"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
}

func (t ScanTask) EntityID() int64 { return t.ID }

// Active reports whether the task still counts as the active scan.
func (t ScanTask) Active() bool { return !t.Status.Terminal() }
