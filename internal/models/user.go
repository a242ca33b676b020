package models

// User is the account returned by the API at login.
type User struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Credentials is a login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is a successful login: the bearer token and who it belongs to.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
