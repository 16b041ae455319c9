package console

import (
	"context"
	"fmt"
	"net/http"

	"asset-console/pkg/model"
)

// RefreshScanTasks reloads scan history from the backend.
func (c *Console) RefreshScanTasks(ctx context.Context) ([]model.ScanTask, error) {
	var items []model.ScanTask
	if err := c.api.Call(ctx, http.MethodGet, "/scan-tasks", nil, &items); err != nil {
		return nil, fmt.Errorf("list scan tasks: %w", err)
	}
	c.store.ScanTasks.ReplaceAll(items)
	return items, nil
}

// CreateScanTask starts a scan and kicks the poller so the UI shows the
// running task immediately instead of waiting out a poll interval.
func (c *Console) CreateScanTask(ctx context.Context, target string, scanType model.ScanType) (model.ScanTask, error) {
	req := struct {
		Target   string         `json:"target"`
		ScanType model.ScanType `json:"scan_type"`
	}{Target: target, ScanType: scanType}
	var created model.ScanTask
	if err := c.api.Call(ctx, http.MethodPost, "/scan-tasks", req, &created); err != nil {
		c.mutationFailed()
		return model.ScanTask{}, fmt.Errorf("create scan task: %w", err)
	}
	c.store.ScanTasks.Upsert(created)
	if created.Active() {
		c.store.SetActiveScanTask(&created)
		c.poller.Kick()
	}
	c.mutated("scan-task", "create", created.ID, created.Target)
	c.publish("scan of %s started", created.Target)
	return created, nil
}

// CancelScanTask is the one optimistic mutation: once the cancel call
// resolves, the active slot is cleared without waiting for the next poll
// tick. The backend is expected to honor the cancel, and a stale "still
// running" view is worse than a slightly early clear. Marking bumps the
// store epoch, so an in-flight poll tick that still saw the task running
// cannot resurrect it, and remembers the id so a progress frame buffered
// before the cancel cannot either.
func (c *Console) CancelScanTask(ctx context.Context, id int64) error {
	var cancelled model.ScanTask
	if err := c.api.Call(ctx, http.MethodPost, fmt.Sprintf("/scan-tasks/%d/cancel", id), nil, &cancelled); err != nil {
		c.mutationFailed()
		return fmt.Errorf("cancel scan task %d: %w", id, err)
	}
	if cancelled.ID != 0 {
		c.store.ScanTasks.Upsert(cancelled)
	}
	c.store.MarkScanCancelled(id)
	c.poller.Idle()
	c.mutated("scan-task", "cancel", id, "")
	c.publish("scan cancelled")
	return nil
}

// fetchActiveScanTask is the poller's fetch: nil without error is the valid
// "no active scan" observation (204 or JSON null).
func (c *Console) fetchActiveScanTask(ctx context.Context) (*model.ScanTask, error) {
	var task *model.ScanTask
	if err := c.api.CallQuiet(ctx, http.MethodGet, "/scan-tasks/active", nil, &task); err != nil {
		return nil, err
	}
	return task, nil
}
