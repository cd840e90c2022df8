package schemas

// LoginSchema struct
type LoginSchema struct {
	Username string `json:"username" validate:"required,max=64"`
}

// AuthResponse struct
type AuthResponse struct {
	Token string `json:"token" validate:"required"`
}
