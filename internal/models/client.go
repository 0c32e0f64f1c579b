package models

import "time"

// Client is an import company whose goods are stored in the yard.
type Client struct {
	ID        string
	Name      string
	TaxID     string // CNPJ
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a copy.
func (c *Client) Clone() *Client {
	cp := *c
	return &cp
}
