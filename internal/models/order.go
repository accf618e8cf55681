package models

// OrderType selects between a standard account purchase and a MAG
// set-top-box purchase on the provider portal.
type OrderType string

const (
	OrderTypeStandard OrderType = "STANDARD"
	OrderTypeMAG      OrderType = "MAG_DEVICE"
)

// ParseOrderType maps the wire value onto an OrderType. Only the exact
// MAG_DEVICE string selects the MAG flow; everything else, including an
// empty value, is a standard order.
func ParseOrderType(s string) OrderType {
	if s == string(OrderTypeMAG) {
		return OrderTypeMAG
	}
	return OrderTypeStandard
}

// Access carries the order-type-specific delivery details of a completed
// purchase. Exactly one concrete type backs it, chosen by the order type.
type Access interface {
	OrderType() OrderType
}

// StandardAccess is the delivery payload for standard orders: the streaming
// server plus playlist and guide URLs built from the issued credentials.
type StandardAccess struct {
	ServerURL     string
	BackupServers string
	M3UURL        string
	EPGURL        string
}

func (StandardAccess) OrderType() OrderType { return OrderTypeStandard }

// MAGAccess is the delivery payload for MAG device orders: the device MAC
// the line is bound to and the portal URL the box should be pointed at.
type MAGAccess struct {
	MACAddress string
	PortalURL  string
}

func (MAGAccess) OrderType() OrderType { return OrderTypeMAG }

// PurchaseResult is the orchestrator's only output. On success, Username and
// Password hold the issued credentials and Access the delivery payload. On
// failure, Error holds the captured message, Kind its classification, and
// the credential fields are empty.
type PurchaseResult struct {
	RequestID string
	Username  string
	Password  string
	Success   bool
	Error     string
	Kind      ErrorKind
	Access    Access
}
