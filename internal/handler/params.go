package handler

import (
	"encoding/json"
	"strings"
)

// userID accepts either a JSON string or a bare number, since clients
// have historically sent both.
type userID string

func (u *userID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*u = userID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*u = userID(n.String())
	return nil
}

func (u userID) String() string {
	return string(u)
}

func (u userID) Blank() bool {
	return strings.TrimSpace(string(u)) == ""
}
