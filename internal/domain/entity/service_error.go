package entity

// ServiceError is the error body returned to API consumers.
type ServiceError struct {
	Kind    string `json:"kind"`
	TokenID string `json:"tokenId,omitempty"`
	Address string `json:"address,omitempty"`
	Message string `json:"message"`
}
