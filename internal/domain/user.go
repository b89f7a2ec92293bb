package domain

type User struct {
	ID        int32  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsStaff   bool   `json:"is_staff"`
	CreatedOn string `json:"created_on"`
}

// Requester is the authenticated identity behind a call, as supplied by the identity provider.
type Requester struct {
	UserID  int32
	IsStaff bool
}

// CanSee reports whether the requester may view a record owned by ownerID.
func (r Requester) CanSee(ownerID int32) bool {
	return r.IsStaff || r.UserID == ownerID
}
