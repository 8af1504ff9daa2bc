package user

// Principal is the authenticated caller resolved from a bearer token by the
// external account service.
type Principal struct {
	UserID string
	Email  string
	Name   string
}
