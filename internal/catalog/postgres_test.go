package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func productRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "slug", "title", "price"}).
		AddRow("p-1", "le-kis-kis", "Ле Кис-Кис", int64(200)).
		AddRow("p-2", "le-khokhloma", "Ле Хохлома", int64(300))
}

func TestPostgresRepositoryList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT (.+) FROM products WHERE active ORDER BY position, title`).
		WillReturnRows(productRows())

	repo := PostgresRepository{DB: mock}
	products, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, Product{ID: "p-2", Slug: "le-khokhloma", Title: "Ле Хохлома", Price: 300}, products[1])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepositoryBySlug(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT (.+) FROM products WHERE active AND slug = \$1`).
		WithArgs("le-kis-kis").
		WillReturnRows(pgxmock.NewRows([]string{"id", "slug", "title", "price"}).AddRow("p-1", "le-kis-kis", "Ле Кис-Кис", int64(200)))
	mock.ExpectQuery(`SELECT (.+) FROM products WHERE active AND slug = \$1`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "slug", "title", "price"}))

	repo := PostgresRepository{DB: mock}
	p, err := repo.BySlug(context.Background(), "le-kis-kis")
	require.NoError(t, err)
	require.Equal(t, "p-1", p.ID)

	_, err = repo.BySlug(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepositoryQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT (.+) FROM products WHERE active AND id::text = \$1`).
		WithArgs("p-9").
		WillReturnError(errors.New("connection reset"))

	repo := PostgresRepository{DB: mock}
	_, err = repo.ByID(context.Background(), "p-9")
	require.Error(t, err)
	require.Contains(t, err.Error(), "query products")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepositoryNotConfigured(t *testing.T) {
	_, err := PostgresRepository{}.List(context.Background())
	require.Error(t, err)
}
