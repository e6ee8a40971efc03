package repository

const (
	claimCandidatesQuery = `SELECT job_id, project_id, video_id, mode, category, status, progress, error, selection, created_at, started_at, finished_at
					FROM queue_jobs
					WHERE status = 'pending'
					  AND (mode = 'ai_best_scenes' OR category = 'summary' OR mode LIKE 'ai\_%')
					ORDER BY created_at ASC
					LIMIT $1`
	claimJobQuery = `UPDATE queue_jobs
					SET status = 'running', started_at = now()
					WHERE job_id = $1 AND status = 'pending'`
	updateJobStatusQuery = `UPDATE queue_jobs
					SET status = $2,
					    error = NULLIF($3, ''),
					    finished_at = CASE WHEN $2 IN ('completed', 'failed') THEN now() ELSE finished_at END
					WHERE job_id = $1`
	updateJobProgressQuery  = `UPDATE queue_jobs SET progress = $2 WHERE job_id = $1`
	updateJobSelectionQuery = `UPDATE queue_jobs SET selection = $2 WHERE job_id = $1`
	getJobByIDQuery        = `SELECT job_id, project_id, video_id, mode, category, status, progress, error, selection, created_at, started_at, finished_at
					FROM queue_jobs WHERE job_id = $1`

	getProjectByIDQuery = `SELECT project_id, user_id, title, channel_name, status, progress, settings, created_at, updated_at
					FROM projects WHERE project_id = $1`
	getSourceVideoByIDQuery = `SELECT video_id, project_id, file_name, file_size, duration, storage_key, audio_codec, uploaded_at
					FROM source_videos WHERE video_id = $1`
	updateSourceVideoProbeQuery = `UPDATE source_videos
					SET duration = $2, audio_codec = $3
					WHERE video_id = $1`
	recomputeProjectProgressQuery = `UPDATE projects p
					SET progress = sub.avg_progress,
					    status = CASE
					        WHEN sub.failed > 0 AND sub.unfinished = 0 THEN 'failed'
					        WHEN sub.unfinished = 0 THEN 'ready'
					        ELSE 'processing'
					    END,
					    updated_at = now()
					FROM (
					    SELECT COALESCE(AVG(progress), 0) AS avg_progress,
					           COUNT(*) FILTER (WHERE status = 'failed') AS failed,
					           COUNT(*) FILTER (WHERE status NOT IN ('completed', 'failed')) AS unfinished
					    FROM queue_jobs WHERE project_id = $1
					) sub
					WHERE p.project_id = $1`

	getChunkResultQuery = `SELECT payload FROM ai_chunk_results
					WHERE project_id = $1 AND chunk_index = $2`
	upsertChunkResultQuery = `INSERT INTO ai_chunk_results (project_id, chunk_index, payload, updated_at)
					VALUES ($1, $2, $3, now())
					ON CONFLICT (project_id, chunk_index)
					DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`

	insertOutputQuery = `INSERT INTO output_videos (project_id, job_id, kind, file_name, storage_key, duration, scene_index)
					VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING *`
)
