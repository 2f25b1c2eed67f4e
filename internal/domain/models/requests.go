package models

// LoginRequest is the console login form.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=256"`
}

// SymbolQuery selects the symbol of a view; empty keeps the current selection.
type SymbolQuery struct {
	Symbol string `query:"symbol" validate:"omitempty,max=32,printascii"`
}
