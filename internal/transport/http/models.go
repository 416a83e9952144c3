package http

// RegisterRequest carries email registration fields.
type RegisterRequest struct {
	Email    string  `json:"email" example:"user@example.com"`
	Password string  `json:"password" example:"StrongPass!234"`
	Name     *string `json:"name,omitempty" example:"Nok"`
}

// LoginRequest carries email login fields.
type LoginRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"StrongPass!234"`
}

// GoogleLoginRequest carries the Google ID token for login.
type GoogleLoginRequest struct {
	IDToken string `json:"id_token"`
}

type StatusRequest struct {
	Status    string  `json:"status" example:"accepted"`
	AdminNote *string `json:"admin_note,omitempty"`
}

type PlaceRefRequest struct {
	PlaceID string `json:"place_id"`
}

type ProfileRequest struct {
	Name *string `json:"name"`
}

type RoleRequest struct {
	Role string `json:"role" example:"owner"`
}
