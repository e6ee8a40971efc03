package repository

const (
	createUser = `INSERT INTO users (username, email, password, role, created_at, updated_at)
						VALUES ($1, $2, $3, COALESCE(NULLIF($4, ''), 'user')::user_role, now(), now())
						RETURNING *`
	updateUser = `UPDATE users
						SET username = COALESCE(NULLIF($1, ''), username),
						    email = COALESCE(NULLIF($2, ''), email),
						    role = COALESCE(NULLIF($3, '')::user_role, role),
						    updated_at = now()
						WHERE user_id = $4
						RETURNING *`
	deleteUserQuery = `DELETE FROM users WHERE user_id = $1`

	getUserQuery = `SELECT user_id, username, email, role, created_at, updated_at
					 FROM users
					 WHERE user_id = $1`
	getUserByEmail = `SELECT user_id, username, email, password, role, created_at, updated_at
						FROM users WHERE email = $1`
)
