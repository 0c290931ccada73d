package entity

import "time"

// Detection is one stored pipeline run.
type Detection struct {
	ID            string    `db:"id"`
	RequestID     string    `db:"request_id"`
	Source        string    `db:"source"`
	ImageHash     string    `db:"image_hash"`
	Profile       string    `db:"profile"`
	SelectionMode string    `db:"selection_mode"`
	FaceCount     int       `db:"face_count"`
	TopEmotion    string    `db:"top_emotion"`
	TopConfidence float64   `db:"top_confidence"`
	Faces         []byte    `db:"faces"`
	CreatedAt     time.Time `db:"created_at"`
}

// Upload is a file stored in object storage through the upload endpoints.
type Upload struct {
	ID          string    `db:"id"`
	Kind        string    `db:"kind"`
	FileName    string    `db:"file_name"`
	ObjectKey   string    `db:"object_key"`
	Location    string    `db:"location"`
	ContentType string    `db:"content_type"`
	Size        int64     `db:"size"`
	CreatedAt   time.Time `db:"created_at"`
}
