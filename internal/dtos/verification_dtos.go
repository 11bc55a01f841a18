package dtos

// ----------------------
// Code issuance / check
// ----------------------

type RequestCodeRequest struct {
	Destination string `json:"destination" validate:"required"`
	Channel     string `json:"channel" validate:"required,oneof=sms call email"`
}
type RequestCodeResponse struct {
	Message string `json:"message"`
}

type VerifyCodeRequest struct {
	Destination string `json:"destination" validate:"required"`
	Code        string `json:"code" validate:"required,numeric,min=4,max=10"`
}
type VerifyCodeResponse struct {
	Message  string `json:"message"`
	Verified bool   `json:"verified"`
}
