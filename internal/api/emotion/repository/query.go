package emotionRepository

const (
	queryCreateDetection = `
		INSERT INTO detections (
			id,
			request_id,
			source,
			image_hash,
			profile,
			selection_mode,
			face_count,
			top_emotion,
			top_confidence,
			faces,
			created_at
		) VALUES (
			:id,
			:request_id,
			:source,
			:image_hash,
			:profile,
			:selection_mode,
			:face_count,
			:top_emotion,
			:top_confidence,
			:faces,
			:created_at
		)
	`

	queryGetDetections = `
		SELECT
			id,
			request_id,
			source,
			image_hash,
			profile,
			selection_mode,
			face_count,
			top_emotion,
			top_confidence,
			faces,
			created_at
		FROM detections
		ORDER BY created_at DESC
		LIMIT :limit OFFSET :offset
	`

	queryCountDetections = `
		SELECT COUNT(*)
		FROM detections
	`

	queryCreateUpload = `
		INSERT INTO uploads (
			id,
			kind,
			file_name,
			object_key,
			location,
			content_type,
			size,
			created_at
		) VALUES (
			:id,
			:kind,
			:file_name,
			:object_key,
			:location,
			:content_type,
			:size,
			:created_at
		)
	`
)
