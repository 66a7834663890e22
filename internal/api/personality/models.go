package personality

// Token is the answer of the token endpoint.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Registration covers both shapes the register endpoint answers with: a token,
// or the created account.
type Registration struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ID          string `json:"id"`
	Username    string `json:"username"`
}

type Account struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
