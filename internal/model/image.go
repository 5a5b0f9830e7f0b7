package model

// Image describes an uploaded image object. URL is the API path that serves it
// and is what clients store in a record's image field.
type Image struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}
