// Package users provides user lookups, member filtering and user creation.
package users

// User is a record returned by a user lookup.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Member is a user with the attributes needed for filtering.
type Member struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Age      int    `json:"age"`
	IsActive bool   `json:"is_active"`
}

// AdultAge is the minimum age at which a member counts as an adult.
const AdultAge = 20

// IsActiveAdult reports whether m is active and at least AdultAge.
func (m Member) IsActiveAdult() bool {
	return m.IsActive && m.Age >= AdultAge
}
