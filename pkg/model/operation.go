package model

import "time"

type OperationType string

const (
	OperationTypeCommand   OperationType = "command"
	OperationTypeScript    OperationType = "script"
	OperationTypeWakeOnLAN OperationType = "wake_on_lan"
	OperationTypeReboot    OperationType = "reboot"
)

// Operation is a named remote action the backend can run against assets.
// Params are interpreted per operation type by the backend.
type Operation struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	OperationType OperationType  `json:"operation_type"`
	Params        map[string]any `json:"params,omitempty"`
}

func (o Operation) EntityID() int64 { return o.ID }

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Job is one execution of an operation against a set of assets.
type Job struct {
	ID          int64     `json:"id"`
	OperationID int64     `json:"operation_id"`
	Status      JobStatus `json:"status"`
	Progress    int       `json:"progress"` // 0..100
	AssetIDs    []int64   `json:"asset_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

func (j Job) EntityID() int64 { return j.ID }
