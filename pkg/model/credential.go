package model

type CredentialType string

const (
	CredentialTypeSSH   CredentialType = "ssh"
	CredentialTypeSNMP  CredentialType = "snmp"
	CredentialTypeWinRM CredentialType = "winrm"
)

// Credential identifies stored access material for remote operations.
// The secret itself stays on the backend and never crosses this API.
type Credential struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	CredentialType CredentialType `json:"credential_type"`
	Username       string         `json:"username,omitempty"`
	Port           int            `json:"port,omitempty"`
}

func (c Credential) EntityID() int64 { return c.ID }
