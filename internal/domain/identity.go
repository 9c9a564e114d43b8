package domain

// NoClientID is the wire value clients send when they have no client id.
const NoClientID int64 = 1<<32 - 1

// Identity is the in-game identity a connection declares through the id event.
// ClientID is nil when the client did not provide one.
type Identity struct {
	PlayerID int64  `json:"playerId"`
	ClientID *int64 `json:"clientId"`
}

func NewIdentity(playerID int64, wireClientID int64) Identity {
	return Identity{
		PlayerID: playerID,
		ClientID: NormalizeClientID(wireClientID),
	}
}

// NormalizeClientID converts a wire client id into its optional form.
func NormalizeClientID(wireClientID int64) *int64 {
	if wireClientID == NoClientID {
		return nil
	}
	id := wireClientID
	return &id
}

// HasClientID reports whether the identity carries a client id.
func (i Identity) HasClientID() bool {
	return i.ClientID != nil
}

// SameClient reports whether both sides carry the same non-nil client id.
func SameClient(a, b *int64) bool {
	return a != nil && b != nil && *a == *b
}

// ClientIDEqual reports whether two optional client ids are equal, nil included.
func ClientIDEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Clients maps connection ids to their stored identities.
type Clients map[string]Identity
