package entities

// AdminStats is computed live on every call
type AdminStats struct {
	TotalUsers       int64                   `json:"totalUsers"`
	TotalDonors      int64                   `json:"totalDonors"`
	TotalRequests    int64                   `json:"totalRequests"`
	TotalFunding     float64                 `json:"totalFunding"`
	RequestsByStatus map[RequestStatus]int64 `json:"requestsByStatus"`
}

// Identity is the verified caller extracted from an ID token.
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}
