package competition

import "time"

// Competition is the catalog entry groups attach to. Standings computation
// for competitions lives outside this service.
type Competition struct {
	ID        string
	Name      string
	Season    string
	CreatedAt time.Time
}
