package model

// Label is a free-form tag. Name uniqueness is enforced by the backend.
type Label struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (l Label) EntityID() int64 { return l.ID }
