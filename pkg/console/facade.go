package console

import (
	"context"
	"fmt"
	"net/http"

	"asset-console/pkg/model"
)

// RefreshAssets reloads the asset list from the backend.
func (c *Console) RefreshAssets(ctx context.Context) ([]model.Asset, error) {
	var items []model.Asset
	if err := c.api.Call(ctx, http.MethodGet, "/assets", nil, &items); err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	c.store.Assets.ReplaceAll(items)
	return items, nil
}

func (c *Console) CreateAsset(ctx context.Context, draft model.Asset) (model.Asset, error) {
	var created model.Asset
	if err := c.api.Call(ctx, http.MethodPost, "/assets", draft, &created); err != nil {
		c.mutationFailed()
		return model.Asset{}, fmt.Errorf("create asset: %w", err)
	}
	c.store.Assets.Upsert(created)
	c.mutated("asset", "create", created.ID, created.Name)
	c.publish("asset %q created", created.Name)
	return created, nil
}

func (c *Console) UpdateAsset(ctx context.Context, id int64, draft model.Asset) (model.Asset, error) {
	var updated model.Asset
	if err := c.api.Call(ctx, http.MethodPut, fmt.Sprintf("/assets/%d", id), draft, &updated); err != nil {
		c.mutationFailed()
		return model.Asset{}, fmt.Errorf("update asset %d: %w", id, err)
	}
	c.store.Assets.Upsert(updated)
	c.mutated("asset", "update", updated.ID, updated.Name)
	c.publish("asset %q updated", updated.Name)
	return updated, nil
}

// DeleteAsset removes the asset only after the backend confirms, so the UI
// never shows an item gone while the server still has it.
func (c *Console) DeleteAsset(ctx context.Context, id int64) error {
	if err := c.api.Call(ctx, http.MethodDelete, fmt.Sprintf("/assets/%d", id), nil, nil); err != nil {
		c.mutationFailed()
		return fmt.Errorf("delete asset %d: %w", id, err)
	}
	c.store.Assets.Remove(id)
	c.mutated("asset", "delete", id, "")
	c.publish("asset deleted")
	return nil
}

func (c *Console) RefreshAssetGroups(ctx context.Context) ([]model.AssetGroup, error) {
	var items []model.AssetGroup
	if err := c.api.Call(ctx, http.MethodGet, "/asset-groups", nil, &items); err != nil {
		return nil, fmt.Errorf("list asset groups: %w", err)
	}
	c.store.Groups.ReplaceAll(items)
	return items, nil
}

func (c *Console) CreateAssetGroup(ctx context.Context, draft model.AssetGroup) (model.AssetGroup, error) {
	var created model.AssetGroup
	if err := c.api.Call(ctx, http.MethodPost, "/asset-groups", draft, &created); err != nil {
		c.mutationFailed()
		return model.AssetGroup{}, fmt.Errorf("create asset group: %w", err)
	}
	c.store.Groups.Upsert(created)
	c.mutated("asset-group", "create", created.ID, created.Name)
	c.publish("group %q created", created.Name)
	return created, nil
}

func (c *Console) UpdateAssetGroup(ctx context.Context, id int64, draft model.AssetGroup) (model.AssetGroup, error) {
	var updated model.AssetGroup
	if err := c.api.Call(ctx, http.MethodPut, fmt.Sprintf("/asset-groups/%d", id), draft, &updated); err != nil {
		c.mutationFailed()
		return model.AssetGroup{}, fmt.Errorf("update asset group %d: %w", id, err)
	}
	c.store.Groups.Upsert(updated)
	c.mutated("asset-group", "update", updated.ID, updated.Name)
	c.publish("group %q updated", updated.Name)
	return updated, nil
}

func (c *Console) DeleteAssetGroup(ctx context.Context, id int64) error {
	if err := c.api.Call(ctx, http.MethodDelete, fmt.Sprintf("/asset-groups/%d", id), nil, nil); err != nil {
		c.mutationFailed()
		return fmt.Errorf("delete asset group %d: %w", id, err)
	}
	c.store.Groups.Remove(id)
	c.mutated("asset-group", "delete", id, "")
	c.publish("group deleted")
	return nil
}

func (c *Console) RefreshLabels(ctx context.Context) ([]model.Label, error) {
	var items []model.Label
	if err := c.api.Call(ctx, http.MethodGet, "/labels", nil, &items); err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	c.store.Labels.ReplaceAll(items)
	return items, nil
}

func (c *Console) CreateLabel(ctx context.Context, draft model.Label) (model.Label, error) {
	var created model.Label
	if err := c.api.Call(ctx, http.MethodPost, "/labels", draft, &created); err != nil {
		c.mutationFailed()
		return model.Label{}, fmt.Errorf("create label: %w", err)
	}
	c.store.Labels.Upsert(created)
	c.mutated("label", "create", created.ID, created.Name)
	c.publish("label %q created", created.Name)
	return created, nil
}

func (c *Console) RefreshCredentials(ctx context.Context) ([]model.Credential, error) {
	var items []model.Credential
	if err := c.api.Call(ctx, http.MethodGet, "/credentials", nil, &items); err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	c.store.Credentials.ReplaceAll(items)
	return items, nil
}

func (c *Console) CreateCredential(ctx context.Context, draft model.Credential) (model.Credential, error) {
	var created model.Credential
	if err := c.api.Call(ctx, http.MethodPost, "/credentials", draft, &created); err != nil {
		c.mutationFailed()
		return model.Credential{}, fmt.Errorf("create credential: %w", err)
	}
	c.store.Credentials.Upsert(created)
	c.mutated("credential", "create", created.ID, created.Name)
	c.publish("credential %q created", created.Name)
	return created, nil
}

func (c *Console) UpdateCredential(ctx context.Context, id int64, draft model.Credential) (model.Credential, error) {
	var updated model.Credential
	if err := c.api.Call(ctx, http.MethodPut, fmt.Sprintf("/credentials/%d", id), draft, &updated); err != nil {
		c.mutationFailed()
		return model.Credential{}, fmt.Errorf("update credential %d: %w", id, err)
	}
	c.store.Credentials.Upsert(updated)
	c.mutated("credential", "update", updated.ID, updated.Name)
	c.publish("credential %q updated", updated.Name)
	return updated, nil
}

func (c *Console) DeleteCredential(ctx context.Context, id int64) error {
	if err := c.api.Call(ctx, http.MethodDelete, fmt.Sprintf("/credentials/%d", id), nil, nil); err != nil {
		c.mutationFailed()
		return fmt.Errorf("delete credential %d: %w", id, err)
	}
	c.store.Credentials.Remove(id)
	c.mutated("credential", "delete", id, "")
	c.publish("credential deleted")
	return nil
}

func (c *Console) RefreshOperations(ctx context.Context) ([]model.Operation, error) {
	var items []model.Operation
	if err := c.api.Call(ctx, http.MethodGet, "/operations", nil, &items); err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	c.store.Operations.ReplaceAll(items)
	return items, nil
}

// RunOperation asks the backend to execute an operation against the given
// assets; the resulting job lands in the jobs collection.
func (c *Console) RunOperation(ctx context.Context, operationID int64, assetIDs []int64) (model.Job, error) {
	req := struct {
		OperationID int64   `json:"operation_id"`
		AssetIDs    []int64 `json:"asset_ids"`
	}{OperationID: operationID, AssetIDs: assetIDs}
	var job model.Job
	if err := c.api.Call(ctx, http.MethodPost, "/operations/run", req, &job); err != nil {
		c.mutationFailed()
		return model.Job{}, fmt.Errorf("run operation %d: %w", operationID, err)
	}
	c.store.Jobs.Upsert(job)
	c.mutated("job", "create", job.ID, fmt.Sprintf("operation=%d assets=%d", operationID, len(assetIDs)))
	c.publish("operation started on %d assets", len(assetIDs))
	return job, nil
}

func (c *Console) RefreshJobs(ctx context.Context) ([]model.Job, error) {
	var items []model.Job
	if err := c.api.Call(ctx, http.MethodGet, "/jobs", nil, &items); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	c.store.Jobs.ReplaceAll(items)
	return items, nil
}
