package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/go-arrower/bizadmin/postgres"
)

var ErrInvalidQuery = errors.New("invalid query")

// WithTable sets the table, including its schema, e.g. crm.email_type.
// ONLY applies to the postgres implementation.
func WithTable(table string) Option {
	return func(config *repoConfig) {
		config.table = table
	}
}

// WithOrderBy sets the columns All is ordered by.
// ONLY applies to the postgres implementation.
func WithOrderBy(columns ...string) Option {
	return func(config *repoConfig) {
		config.orderBy = columns
	}
}

// NewPostgresRepository returns an implementation of Repository for the given entity E.
// E is a flat struct, each field is a column. The column name is taken from the `db` tag,
// otherwise the field name in snake_case is used, the same way scany maps rows to structs.
// If not configured otherwise, the table is the snake_case name of E and All is ordered by the primary key.
func NewPostgresRepository[E any, ID id](pgx *pgxpool.Pool, opts ...Option) *PostgresRepository[E, ID] {
	repo := &PostgresRepository[E, ID]{
		PGx: pgx,
		repoConfig: repoConfig{
			idFieldName: "ID",
			table:       toSnakeCase(reflect.TypeOf(*new(E)).Name()),
		},
	}

	for _, opt := range opts {
		opt(&repo.repoConfig)
	}

	repo.Table = repo.table
	repo.Columns, repo.fields = columnNames(*new(E))
	repo.idColumn = columnOfField(reflect.TypeOf(*new(E)), repo.idFieldName)

	if len(repo.orderBy) == 0 {
		repo.orderBy = []string{repo.idColumn}
	}

	return repo
}

type PostgresRepository[E any, ID id] struct {
	PGx *pgxpool.Pool

	repoConfig

	Table    string
	Columns  []string
	fields   []string
	idColumn string
}

var _ Repository[struct{ ID string }, string] = (*PostgresRepository[struct{ ID string }, string])(nil)

type dbInterface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// TxOrConn returns the transaction in ctx, if present, and the pool otherwise.
func (repo *PostgresRepository[E, ID]) TxOrConn(ctx context.Context) dbInterface { //nolint:ireturn // tx or pool
	if tx, ok := ctx.Value(postgres.CtxTX).(pgx.Tx); ok {
		return tx
	}

	return repo.PGx
}

// Builder is the squirrel statement builder for postgres.
// Use it when extending a PostgresRepository with own queries.
var Builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar) //nolint:gochecknoglobals // squirrel recommends this

// NextID returns a uuid version 7 for string ids and the next value of the primary key's sequence for integers.
func (repo *PostgresRepository[E, ID]) NextID(ctx context.Context) (ID, error) {
	var id ID

	switch reflect.TypeOf(id).Kind() {
	case reflect.String:
		uid, err := uuid.NewV7()
		if err != nil {
			return id, fmt.Errorf("%w: could not generate id: %v", ErrStorage, err) //nolint:errorlint // prevent err in api
		}

		reflect.ValueOf(&id).Elem().SetString(uid.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var serial int64

		err := pgxscan.Get(ctx, repo.TxOrConn(ctx), &serial,
			"SELECT nextval(pg_get_serial_sequence($1, $2))", repo.Table, repo.idColumn,
		)
		if err != nil {
			return id, fmt.Errorf("%w: could not get id from sequence: %v", ErrStorage, err) //nolint:errorlint // prevent err in api
		}

		if reflect.TypeOf(id).Kind() >= reflect.Uint {
			reflect.ValueOf(&id).Elem().SetUint(uint64(serial)) //nolint:gosec // sequences are positive
		} else {
			reflect.ValueOf(&id).Elem().SetInt(serial)
		}
	default:
		return id, fmt.Errorf("%w: unsupported type", errIDFieldWrong)
	}

	return id, nil
}

func (repo *PostgresRepository[E, ID]) All(ctx context.Context) ([]E, error) {
	sql, args, err := Builder.Select(repo.Columns...).From(repo.Table).OrderBy(repo.orderBy...).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: could not build query: %v", ErrInvalidQuery, err) //nolint:errorlint // prevent err in api
	}

	entities := []E{}

	if err = pgxscan.Select(ctx, repo.TxOrConn(ctx), &entities, sql, args...); err != nil {
		return nil, fmt.Errorf("%w: could not select: %w", ErrStorage, err)
	}

	return entities, nil
}

func (repo *PostgresRepository[E, ID]) FindByID(ctx context.Context, id ID) (E, error) { //nolint:ireturn,lll // valid use of generics
	sql, args, err := Builder.Select(repo.Columns...).From(repo.Table).Where(squirrel.Eq{repo.idColumn: id}).ToSql()
	if err != nil {
		return *new(E), fmt.Errorf("%w: could not build query: %v", ErrInvalidQuery, err) //nolint:errorlint,lll // prevent err in api
	}

	var entity E

	err = pgxscan.Get(ctx, repo.TxOrConn(ctx), &entity, sql, args...)
	if pgxscan.NotFound(err) {
		return *new(E), fmt.Errorf("%w: id=%v", ErrNotFound, id)
	}

	if err != nil {
		return *new(E), fmt.Errorf("%w: could not select: %w", ErrStorage, err)
	}

	return entity, nil
}

func (repo *PostgresRepository[E, ID]) FindByIDs(ctx context.Context, ids []ID) ([]E, error) {
	if len(ids) == 0 {
		return []E{}, nil
	}

	sql, args, err := Builder.Select(repo.Columns...).From(repo.Table).Where(squirrel.Eq{repo.idColumn: ids}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: could not build query: %v", ErrInvalidQuery, err) //nolint:errorlint // prevent err in api
	}

	found := []E{}
	if err = pgxscan.Select(ctx, repo.TxOrConn(ctx), &found, sql, args...); err != nil {
		return nil, fmt.Errorf("%w: could not select: %w", ErrStorage, err)
	}

	byID := make(map[ID]E, len(found))

	for _, e := range found {
		id, _ := getID[ID](repo.idFieldName, e)
		byID[id] = e
	}

	entities := make([]E, 0, len(ids))

	for _, id := range ids {
		e, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: id=%v", ErrNotFound, id)
		}

		entities = append(entities, e)
	}

	return entities, nil
}

func (repo *PostgresRepository[E, ID]) Exists(ctx context.Context, id ID) (bool, error) {
	sql, args, err := Builder.Select("1").From(repo.Table).Where(squirrel.Eq{repo.idColumn: id}).
		Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: could not build query: %v", ErrInvalidQuery, err) //nolint:errorlint // prevent err in api
	}

	var exists bool
	if err = pgxscan.Get(ctx, repo.TxOrConn(ctx), &exists, sql, args...); err != nil {
		return false, fmt.Errorf("%w: could not select: %w", ErrStorage, err)
	}

	return exists, nil
}

func (repo *PostgresRepository[E, ID]) Count(ctx context.Context) (int, error) {
	sql, args, err := Builder.Select("COUNT(*)").From(repo.Table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: could not build query: %v", ErrInvalidQuery, err) //nolint:errorlint // prevent err in api
	}

	var count int
	if err = pgxscan.Get(ctx, repo.TxOrConn(ctx), &count, sql, args...); err != nil {
		return 0, fmt.Errorf("%w: could not count: %w", ErrStorage, err)
	}

	return count, nil
}

func (repo *PostgresRepository[E, ID]) Add(ctx context.Context, entity E) error {
	id, err := getID[ID](repo.idFieldName, entity)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	sql, args, err := Builder.Insert(repo.Table).Columns(repo.Columns...).Values(repo.values(entity)...).ToSql()
	if err != nil {
		return fmt.Errorf("%w: could not build query: %v", ErrInvalidQuery, err) //nolint:errorlint // prevent err in api
	}

	_, err = repo.TxOrConn(ctx).Exec(ctx, sql, args...)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: id=%v", ErrAlreadyExists, id)
	}

	if err != nil {
		return fmt.Errorf("%w: could not insert: %w", ErrSaveFailed, err)
	}

	return nil
}

func (repo *PostgresRepository[E, ID]) Update(ctx context.Context, entity E) error {
	id, err := getID[ID](repo.idFieldName, entity)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	query := Builder.Update(repo.Table).Where(squirrel.Eq{repo.idColumn: id})

	values := repo.values(entity)
	for i, column := range repo.Columns {
		query = query.Set(column, values[i])
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("%w: could not build query: %v", ErrInvalidQuery, err) //nolint:errorlint // prevent err in api
	}

	res, err := repo.TxOrConn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%w: could not update entity with id=%v: %w", ErrSaveFailed, id, err)
	}

	if res.RowsAffected() == 0 {
		return fmt.Errorf("%w: id=%v", ErrNotFound, id)
	}

	return nil
}

func (repo *PostgresRepository[E, ID]) Save(ctx context.Context, entity E) error {
	if _, err := getID[ID](repo.idFieldName, entity); err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	updates := make([]string, 0, len(repo.Columns))

	for _, column := range repo.Columns {
		if column == repo.idColumn {
			continue
		}

		updates = append(updates, column+" = EXCLUDED."+column)
	}

	suffix := "ON CONFLICT (" + repo.idColumn + ") DO NOTHING"
	if len(updates) > 0 {
		suffix = "ON CONFLICT (" + repo.idColumn + ") DO UPDATE SET " + strings.Join(updates, ", ")
	}

	sql, args, err := Builder.Insert(repo.Table).Columns(repo.Columns...).Values(repo.values(entity)...).
		Suffix(suffix).ToSql()
	if err != nil {
		return fmt.Errorf("%w: could not build query: %v", ErrInvalidQuery, err) //nolint:errorlint // prevent err in api
	}

	if _, err = repo.TxOrConn(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("%w: could not upsert: %w", ErrSaveFailed, err)
	}

	return nil
}

func (repo *PostgresRepository[E, ID]) Delete(ctx context.Context, entity E) error {
	id, err := getID[ID](repo.idFieldName, entity)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	sql, args, err := Builder.Delete(repo.Table).Where(squirrel.Eq{repo.idColumn: id}).ToSql()
	if err != nil {
		return fmt.Errorf("%w: could not build query: %v", ErrInvalidQuery, err) //nolint:errorlint // prevent err in api
	}

	if _, err = repo.TxOrConn(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("%w: could not delete: %w", ErrSaveFailed, err)
	}

	return nil
}

func (repo *PostgresRepository[E, ID]) Clear(ctx context.Context) error {
	sql, args, err := Builder.Delete(repo.Table).ToSql()
	if err != nil {
		return fmt.Errorf("%w: could not build query: %v", ErrInvalidQuery, err) //nolint:errorlint // prevent err in api
	}

	if _, err = repo.TxOrConn(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("%w: could not delete: %w", ErrSaveFailed, err)
	}

	return nil
}

func (repo *PostgresRepository[E, ID]) values(entity E) []any {
	e := reflect.ValueOf(entity)
	values := make([]any, len(repo.fields))

	for i, name := range repo.fields {
		values[i] = e.FieldByName(name).Interface()
	}

	return values
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// columnNames returns the columns and the matching struct field names of entity.
func columnNames(entity any) ([]string, []string) {
	t := reflect.TypeOf(entity)

	columns := make([]string, 0, t.NumField())
	fields := make([]string, 0, t.NumField())

	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() || field.Tag.Get("db") == "-" {
			continue
		}

		columns = append(columns, columnOfField(t, field.Name))
		fields = append(fields, field.Name)
	}

	return columns, fields
}

func columnOfField(t reflect.Type, fieldName string) string {
	field, ok := t.FieldByName(fieldName)
	if !ok {
		return toSnakeCase(fieldName)
	}

	if tag := field.Tag.Get("db"); tag != "" {
		return tag
	}

	return toSnakeCase(field.Name)
}

// toSnakeCase converts e.g. UserID to user_id.
func toSnakeCase(s string) string {
	runes := []rune(s)
	b := strings.Builder{}

	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1]) && i > 0 && unicode.IsUpper(runes[i-1])

			if prevLower || nextLower {
				b.WriteRune('_')
			}
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}
