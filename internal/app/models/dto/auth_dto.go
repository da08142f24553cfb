package dto

// LoginRequest is the credential payload for token issuance
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"owner@communio.app"`
	Password string `json:"password" binding:"required" example:"secret"`
}

// LoginResponse carries the issued access token
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int    `json:"expiresIn" example:"3600"`
	UserID      int64  `json:"userId"`
	Role        string `json:"role" example:"OWNER" enums:"OWNER,RESIDENT"`
}
