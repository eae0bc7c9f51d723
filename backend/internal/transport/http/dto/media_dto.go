package dto

type PetitionImageResponse struct {
	Key      string           `json:"key"`
	URL      string           `json:"url"`
	Petition PetitionResponse `json:"petition"`
}
