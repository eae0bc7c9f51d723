package dto

type ConfigResponse struct {
	Appeals ConfigAppealsResponse `json:"appeals"`
	Images  ConfigImagesResponse  `json:"images"`
}

type ConfigAppealsResponse struct {
	MessagesPerMinute    int `json:"messages_per_minute"`
	MessagesPer10Minutes int `json:"messages_per_10min"`
}

type ConfigImagesResponse struct {
	MaxBytes     int64    `json:"max_bytes"`
	AllowedTypes []string `json:"allowed_types"`
}
