package request

type InitUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	TotalChunks int    `json:"total_chunks" binding:"required,min=1"`
}

type CompleteUploadPart struct {
	PartNumber int32  `json:"part_number" binding:"required,min=1"`
	ETag       string `json:"etag" binding:"required"`
}

type CompleteUploadRequest struct {
	// Parts are only required for direct-to-bucket uploads.
	Parts []CompleteUploadPart `json:"parts,omitempty"`
}
