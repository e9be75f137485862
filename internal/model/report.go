package model

// Summary is the aggregate inventory report.
type Summary struct {
	TotalItems   int `json:"total_items"`
	InStock      int `json:"in_stock"`
	LowStock     int `json:"low_stock"`
	OutOfStock   int `json:"out_of_stock"`
	OpenLoans    int `json:"open_loans"`
	OverdueLoans int `json:"overdue_loans"`
	Movements    int `json:"movements"`
}
