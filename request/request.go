package request

type LoginRequest struct {
	InitDataString string `json:"initDataString"`
}

type BoosterRequest struct {
	Multiplier   int `json:"multiplier"`
	OptionNumber int `json:"optionNumber"`
}

type AdWatchedRequest struct {
	ProviderID string `json:"providerId"`
}

// NewBoosterRequest picks the paid option once there is enough energy to
// make the x2 worthwhile.
func NewBoosterRequest(energy, threshold, multiplier int) BoosterRequest {
	if energy > threshold {
		return BoosterRequest{Multiplier: multiplier, OptionNumber: 3}
	}
	return BoosterRequest{Multiplier: multiplier, OptionNumber: 1}
}
