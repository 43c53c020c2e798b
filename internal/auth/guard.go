package auth

// Decision is the outcome of an ownership check.
type Decision bool

const (
	Allowed Decision = true
	Denied  Decision = false
)

// Authorize decides whether callerID may mutate a resource owned by ownerID.
// An empty identity on either side is always denied.
func Authorize(ownerID, callerID string) Decision {
	if ownerID == "" || callerID == "" {
		return Denied
	}
	return Decision(ownerID == callerID)
}
