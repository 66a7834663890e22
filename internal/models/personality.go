package models

const (
	ModelOCEAN  = "OCEAN"
	ModelMBTI   = "MBTI"
	ModelRIASEC = "RIASEC"
)

// PersonalityModel is one scored (model, parameter) pair produced by the backend.
type PersonalityModel struct {
	ID         string    `json:"id"`
	Model      string    `json:"model"`
	Parameter  string    `json:"parameter"`
	Confidence float64   `json:"confidence"`
	CreatedAt  Timestamp `json:"created_at"`
	UpdatedAt  Timestamp `json:"updated_at"`
}

// ParameterScore is a grouped view of a PersonalityModel without its model name.
type ParameterScore struct {
	Parameter  string  `json:"parameter"`
	Confidence float64 `json:"confidence"`
}

// Filter narrows a candidate list; it only ever lives in board state.
type Filter struct {
	Model     string  `json:"model"`
	Parameter string  `json:"parameter"`
	Threshold float64 `json:"threshold"`
}

func ModelOptions() []string {
	return []string{
		ModelOCEAN,
		ModelMBTI,
		ModelRIASEC,
	}
}

func IsValidModel(model string) bool {
	for _, m := range ModelOptions() {
		if m == model {
			return true
		}
	}
	return false
}
