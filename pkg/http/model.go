package http

// APIResponse represents standard API response.
type APIResponse struct {
	Status  int         `json:"status" example:"200"`
	Message string      `json:"message" example:"OK"`
	Data    interface{} `json:"data,omitempty"`
}

// APIResponse401Err represents 401 error response. Redirect names the view the
// caller should navigate to.
type APIResponse401Err struct {
	Status   int    `json:"status" example:"401"`
	Message  string `json:"message" example:"Unauthorized"`
	Data     string `json:"data,omitempty" example:"Session expired"`
	Redirect string `json:"redirect,omitempty" example:"/admin/login"`
}

// ValidationError represents validation error detail.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_REQUIRED"`
	Field   string                 `json:"field,omitempty" example:"name"`
	Message string                 `json:"message,omitempty" example:"Name is required"`
	Params  map[string]interface{} `json:"params,omitempty"`
}
