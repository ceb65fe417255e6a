package models

type Location struct {
	ID        int     `json:"id" db:"id"`
	TenantID  int     `json:"tenant_id" db:"tenant_id"`
	Name      string  `json:"name" db:"name"`
	Address   *string `json:"address" db:"address"`
	IsPrimary bool    `json:"is_primary" db:"is_primary"`
}
