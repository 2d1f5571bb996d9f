package match

import "time"

// Match is one played match as reported by GET /v1/matches.
type Match struct {
	MatchID   string    `json:"matchId"`
	CourtID   string    `json:"courtId"`
	Sport     string    `json:"sport"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Teams     []Team    `json:"teams"`
}

// Team is one side of a match.
type Team struct {
	ID      string   `json:"id"`
	Players []Player `json:"players"`
}

// Player is a team member.
type Player struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// Duration is the scheduled length of the match.
func (m Match) Duration() time.Duration {
	return m.EndDate.Sub(m.StartDate)
}

// PlayerIDs returns the user IDs of every player across both teams, in
// team order.
func (m Match) PlayerIDs() []string {
	var ids []string
	for _, t := range m.Teams {
		for _, p := range t.Players {
			ids = append(ids, p.UserID)
		}
	}
	return ids
}
