package schema

const schema = `CREATE TABLE notes (
	id BIGINT PRIMARY KEY,
	title TEXT,
	content TEXT,
	images TEXT,
	updatedAt BIGINT,
	createdAt BIGINT
)`

const dropSchema = `DROP TABLE notes`
