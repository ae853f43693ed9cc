package dribl

import (
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
)

type fixturesEnvelope struct {
	Data []fixtureItem `json:"data"`
	Meta fixturesMeta  `json:"meta"`
}

type fixturesMeta struct {
	NextCursor *string `json:"next_cursor"`
}

type fixtureItem struct {
	HashID     flexString        `json:"hash_id"`
	Attributes fixtureAttributes `json:"attributes"`
}

type fixtureAttributes struct {
	Date         flexString `json:"date"`
	LeagueName   flexString `json:"league_name"`
	Round        flexString `json:"round"`
	Status       flexString `json:"status"`
	Name         flexString `json:"name"`
	HomeTeamName flexString `json:"home_team_name"`
	AwayTeamName flexString `json:"away_team_name"`
	GroundName   flexString `json:"ground_name"`
	FieldName    flexString `json:"field_name"`
	MatchHashID  flexString `json:"match_hash_id"`
}

// flexString accepts a JSON string, number, bool or null. Rounds and field
// names are sometimes published as numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "" || raw == "null":
		*f = ""
		return nil
	case raw[0] == '"':
		var s string
		if err := sonic.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	case raw == "true" || raw == "false":
		*f = flexString(raw)
		return nil
	default:
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return &unsupportedValueError{raw: raw}
		}
		*f = flexString(raw)
		return nil
	}
}

func (f flexString) String() string {
	return strings.TrimSpace(string(f))
}

type unsupportedValueError struct {
	raw string
}

func (e *unsupportedValueError) Error() string {
	return "unsupported fixture attribute value " + abbreviateBody([]byte(e.raw))
}
