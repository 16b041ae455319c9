package model

// LabelRef points at a label attached to an asset or group.
type LabelRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Asset is a discovered or manually registered network device.
type Asset struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	PrimaryIP  string     `json:"primary_ip"`
	MACAddress string     `json:"mac_address,omitempty"`
	Hostname   string     `json:"hostname,omitempty"`
	Vendor     string     `json:"vendor,omitempty"`
	Labels     []LabelRef `json:"labels,omitempty"`
	IsManaged  bool       `json:"is_managed"`
}

func (a Asset) EntityID() int64 { return a.ID }
