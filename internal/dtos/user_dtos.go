package dtos

type RegisterUserRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
	Password    string `json:"password" validate:"required,min=8"`
}
type RegisterUserResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}
