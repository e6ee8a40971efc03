package repository

const (
	createProjectQuery = `INSERT INTO projects (user_id, title, channel_name, status, progress, settings, created_at, updated_at)
						VALUES ($1, $2, $3, 'draft', 0, COALESCE($4, '{}'::jsonb), now(), now())
						RETURNING *`
	getProjectByIDQuery = `SELECT project_id, user_id, title, channel_name, status, progress, settings, created_at, updated_at
						FROM projects WHERE project_id = $1`
	getTotalProjectsQuery = `SELECT COUNT(project_id) FROM projects WHERE user_id = $1`
	getProjectsQuery      = `SELECT project_id, user_id, title, channel_name, status, progress, settings, created_at, updated_at
						FROM projects
						WHERE user_id = $1
						ORDER BY created_at DESC
						OFFSET $2 LIMIT $3`
	updateProjectQuery = `UPDATE projects
						SET title = COALESCE(NULLIF($1, ''), title),
						    channel_name = COALESCE(NULLIF($2, ''), channel_name),
						    settings = COALESCE($3, settings),
						    updated_at = now()
						WHERE project_id = $4
						RETURNING *`
	deleteProjectQuery = `DELETE FROM projects WHERE project_id = $1 AND user_id = $2`

	createSourceVideoQuery = `INSERT INTO source_videos (project_id, file_name, file_size, duration, storage_key, audio_codec, uploaded_at)
						VALUES ($1, $2, $3, 0, $4, '', now())
						RETURNING *`
	getSourceVideoByIDQuery = `SELECT video_id, project_id, file_name, file_size, duration, storage_key, audio_codec, uploaded_at
						FROM source_videos WHERE video_id = $1`
	getSourceVideosQuery = `SELECT video_id, project_id, file_name, file_size, duration, storage_key, audio_codec, uploaded_at
						FROM source_videos WHERE project_id = $1 ORDER BY uploaded_at DESC`

	createJobQuery = `INSERT INTO queue_jobs (project_id, video_id, mode, category, status, progress, created_at)
						VALUES ($1, $2, $3, $4, 'pending', 0, now())
						RETURNING *`
	getJobByIDQuery = `SELECT job_id, project_id, video_id, mode, category, status, progress, error, selection, created_at, started_at, finished_at
						FROM queue_jobs WHERE job_id = $1`
	getJobsByProjectQuery = `SELECT job_id, project_id, video_id, mode, category, status, progress, error, selection, created_at, started_at, finished_at
						FROM queue_jobs WHERE project_id = $1 ORDER BY created_at DESC`
	submitJobSelectionQuery = `UPDATE queue_jobs
						SET selection = $2, status = 'pending', error = NULL
						WHERE job_id = $1 AND status = 'awaiting_selection'`
	requeueJobQuery = `UPDATE queue_jobs
						SET status = 'pending', progress = 0, error = NULL, started_at = NULL, finished_at = NULL
						WHERE job_id = $1 AND status IN ('completed', 'failed')`

	getOutputsQuery = `SELECT output_id, project_id, job_id, kind, file_name, storage_key, duration, scene_index, created_at
						FROM output_videos WHERE project_id = $1 ORDER BY created_at DESC, scene_index ASC`
)
