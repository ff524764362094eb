package model

// Address is a pickup location registered by a user.  Latitude and
// Longitude are optional and stored as strings to avoid float drift on
// DECIMAL columns.
type Address struct {
	ID        string // addresses.id
	UserID    string // addresses.user_id
	Street    string // addresses.street
	Number    string // addresses.number
	City      string // addresses.city
	State     string // addresses.state
	Zipcode   string // addresses.zipcode
	Latitude  string // addresses.latitude (DECIMAL(10,8), may be empty)
	Longitude string // addresses.longitude (DECIMAL(11,8), may be empty)
}
