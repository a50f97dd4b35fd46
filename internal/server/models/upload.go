package models

// UploadedFile describes a media object accepted into storage.
type UploadedFile struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimetype"`
	Size         int64  `json:"size"`
	URL          string `json:"url"`
	ObjectName   string `json:"objectName"`
}
