package models

// ==================== Purchase API DTOs ====================

// PurchaseRequest is the order submitted by the storefront backend. Field
// names follow the storefront's JSON contract.
type PurchaseRequest struct {
	PlanID      string `json:"planId"`
	Email       string `json:"email"`
	OrderType   string `json:"orderType"`   // STANDARD (default) or MAG_DEVICE
	MACAddress  string `json:"macAddress"`  // required for MAG_DEVICE orders
	IsFreeTrial bool   `json:"isFreeTrial"` // accepted, not consulted by the flow yet
}

// PurchaseResponse is the wire form of a PurchaseResult. The conditional
// field groups never appear together: serverUrl/backupServers/m3uUrl/epgUrl
// on standard orders, macAddress/portalURL on MAG orders, neither on
// failure. backupServers and portalURL are pointers so an empty configured
// value still serializes for the matching order type.
type PurchaseResponse struct {
	RequestID string `json:"requestId"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	Username  string `json:"username"`
	Password  string `json:"password"`

	// STANDARD only
	ServerURL     string  `json:"serverUrl,omitempty"`
	BackupServers *string `json:"backupServers,omitempty"`
	M3UURL        string  `json:"m3uUrl,omitempty"`
	EPGURL        string  `json:"epgUrl,omitempty"`

	// MAG_DEVICE only
	MACAddress string  `json:"macAddress,omitempty"`
	PortalURL  *string `json:"portalURL,omitempty"`
}

// ToResponse flattens a PurchaseResult for serialization.
func (r *PurchaseResult) ToResponse() *PurchaseResponse {
	resp := &PurchaseResponse{
		RequestID: r.RequestID,
		Success:   r.Success,
		Error:     r.Error,
		Username:  r.Username,
		Password:  r.Password,
	}

	switch access := r.Access.(type) {
	case *StandardAccess:
		resp.ServerURL = access.ServerURL
		resp.BackupServers = &access.BackupServers
		resp.M3UURL = access.M3UURL
		resp.EPGURL = access.EPGURL
	case *MAGAccess:
		resp.MACAddress = access.MACAddress
		resp.PortalURL = &access.PortalURL
	}

	return resp
}
