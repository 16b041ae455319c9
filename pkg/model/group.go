package model

// AssetGroup bundles assets for bulk operations. AssetIDs are weak
// references; the backend may leave ids of deleted assets in place.
type AssetGroup struct {
	ID       int64      `json:"id"`
	Name     string     `json:"name"`
	Labels   []LabelRef `json:"labels,omitempty"`
	AssetIDs []int64    `json:"asset_ids"`
}

func (g AssetGroup) EntityID() int64 { return g.ID }
