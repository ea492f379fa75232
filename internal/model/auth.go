package model

// AuthRequest is the inbound login body. Both the ra/password and
// login/senha field pairs are accepted for frontend compatibility.
type AuthRequest struct {
	RA       string `json:"ra"`
	Login    string `json:"login"`
	Password string `json:"password"`
	Senha    string `json:"senha"`
}

// Credentials resolves the effective student id and secret
func (r AuthRequest) Credentials() (id, password string) {
	id = r.RA
	if id == "" {
		id = r.Login
	}
	password = r.Password
	if password == "" {
		password = r.Senha
	}
	return id, password
}

// UserInfo is the subset of the upstream registration response we surface
type UserInfo struct {
	AuthToken  string `json:"auth_token"`
	Nick       string `json:"nick"`
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
}

// AuthResponse is the login response. AuthToken and Nick are duplicated
// top-level for older frontends that expect them there.
type AuthResponse struct {
	Success   bool     `json:"success"`
	UserInfo  UserInfo `json:"user_info"`
	AuthToken string   `json:"auth_token"`
	Nick      string   `json:"nick"`
}
