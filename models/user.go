package models

import "encoding/json"

// User is a subject identity record. Only the ID participates in
// evaluation; every other profile attribute is opaque to the engine and
// preserved verbatim for callers that want to display it.
type User struct {
	ID         string
	Attributes map[string]any
}

// UnmarshalJSON keeps the id field and collects the remaining attributes.
func (u *User) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if id, ok := raw["id"].(string); ok {
		u.ID = id
	}
	delete(raw, "id")
	u.Attributes = raw
	return nil
}

// MarshalJSON emits the id alongside the opaque attributes.
func (u User) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(u.Attributes)+1)
	for k, v := range u.Attributes {
		out[k] = v
	}
	out["id"] = u.ID
	return json.Marshal(out)
}

// SubjectDirectory is the document shape identity records arrive in. A
// nil Users slice means the top-level key was absent; an empty slice is a
// legal directory with no subjects.
type SubjectDirectory struct {
	Users []User `json:"users"`
}

// FindUser returns the record for the given subject id, or nil when the
// subject is not present in the directory.
func (d *SubjectDirectory) FindUser(subjectID string) *User {
	for i := range d.Users {
		if d.Users[i].ID == subjectID {
			return &d.Users[i]
		}
	}
	return nil
}
