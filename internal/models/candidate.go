package models

// Candidate is a submitted applicant card with its derived personality scores.
type Candidate struct {
	ID                string             `json:"id"`
	PersonalityModels []PersonalityModel `json:"personality_models"`
	VideoLink         string             `json:"video_link"`
	ResumeLink        string             `json:"resume_link"`
	MotivationLetter  string             `json:"motivation_letter,omitempty"`
	Transcription     string             `json:"transcription,omitempty"`
	CreatedAt         Timestamp          `json:"created_at"`
	UpdatedAt         Timestamp          `json:"updated_at"`
}

// CandidateUpload is everything a candidate hands in for one card.
type CandidateUpload struct {
	ResumeName       string
	Resume           []byte
	VideoName        string
	Video            []byte
	MotivationLetter string
}
