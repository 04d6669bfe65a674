package agent

// Account is the cached snapshot of the signed-in user, mirrored durably so
// the UI can render optimistically before the session is re-validated.
type Account struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	IsVerified     bool   `json:"isVerified"`
	ProfilePicture string `json:"profilePicture"`
}

func (a *Account) IsAdmin() bool {
	return a != nil && a.Role == "admin"
}

// State is the in-memory session state. Account is nil when unauthenticated.
// SuggestReset is a UX hint set after repeated failed logins, not a security
// control.
type State struct {
	Account         *Account
	IsAuthenticated bool
	IsCheckingAuth  bool
	SuggestReset    bool
}
