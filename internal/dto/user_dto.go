package dto

type CreateUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Gender    string `json:"gender"`
	Telephone string `json:"telephone"`
}

// CreateUserResponse carries the temporary password. It is shown once and never stored in plain text.
type CreateUserResponse struct {
	User              UserResponse `json:"user"`
	TemporaryPassword string       `json:"temporary_password"`
}

// ResetPasswordRequest leaves NewPassword empty to have one generated.
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

type ResetPasswordResponse struct {
	TemporaryPassword string `json:"temporary_password"`
}
