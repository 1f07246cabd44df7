package database

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayadmin/homestay-editor/internal/models"
)

var homestayRowColumns = []string{
	"id", "title", "slug", "summary", "description",
	"address", "city", "province", "country", "latitude", "longitude",
	"base_price", "currency", "max_guests", "bedrooms", "bathrooms", "check_in_time", "check_out_time",
	"hero_image_url", "gallery_urls", "amenities", "tags", "keywords", "seo_title", "seo_description",
	"contact_phone", "contact_email", "status", "is_featured", "is_active", "created_at", "updated_at",
}

func setupHomestayRepositoryTest(t *testing.T) (*HomestayRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewHomestayRepository(sqlx.NewDb(db, "sqlmock"))
	cleanup := func() {
		db.Close()
	}
	return repo, mock, cleanup
}

func addHomestayRow(rows *sqlmock.Rows, id uuid.UUID, title, slug string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id.String(), title, slug, "", "",
		"", "Da Lat", "", "Vietnam", 11.94, nil,
		45.0, "USD", 4, nil, nil, "14:00", "12:00",
		"", []byte(`{"https://cdn.example.com/a.jpg"}`), nil, []byte(`{}`), []byte(`{}`), "", "",
		"", "", models.HomestayStatusPublished, false, true, now, now,
	)
}

func TestHomestayRepository_Search(t *testing.T) {
	repo, mock, cleanup := setupHomestayRepositoryTest(t)
	defer cleanup()

	id := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM homestays WHERE slug ILIKE`).
		WithArgs("%river\\_side%", "river_side", 5).
		WillReturnRows(addHomestayRow(sqlmock.NewRows(homestayRowColumns), id, "Riverside", "river_side"))

	results, err := repo.Search("river_side", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)

	h := results[0]
	assert.Equal(t, id, h.ID)
	assert.Equal(t, "river_side", h.Slug)
	require.NotNil(t, h.Latitude)
	assert.Equal(t, 11.94, *h.Latitude)
	assert.Nil(t, h.Longitude)
	require.NotNil(t, h.MaxGuests)
	assert.Equal(t, 4, *h.MaxGuests)
	assert.Equal(t, models.TextArray{"https://cdn.example.com/a.jpg"}, h.GalleryURLs)
	assert.Equal(t, models.TextArray{}, h.Amenities, "NULL arrays scan as empty")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHomestayRepository_SearchWithoutQuery(t *testing.T) {
	repo, mock, cleanup := setupHomestayRepositoryTest(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM homestays ORDER BY updated_at DESC`).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows(homestayRowColumns))

	results, err := repo.Search("   ", 20)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHomestayRepository_GetByID(t *testing.T) {
	repo, mock, cleanup := setupHomestayRepositoryTest(t)
	defer cleanup()

	id := uuid.New()
	roomID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM homestays WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(addHomestayRow(sqlmock.NewRows(homestayRowColumns), id, "Hillside", "hillside"))
	mock.ExpectQuery(`SELECT (.+) FROM homestay_rooms`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "homestay_id", "slug", "name", "description", "room_type", "max_guests", "bed_count",
			"base_price", "quantity", "amenities", "image_urls", "is_active", "position", "created_at", "updated_at",
		}).AddRow(
			roomID.String(), id.String(), "garden-1", "Garden", "", "double", 2, 1,
			30.0, 2, []byte(`{wifi,balcony}`), []byte(`{}`), true, 1, now, now,
		))
	mock.ExpectQuery(`SELECT (.+) FROM homestay_availability`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"homestay_id", "date", "status", "source", "notes"}).
			AddRow(id.String(), "2025-01-01", "BLOCKED", "manual", "Maintenance").
			AddRow(id.String(), "2025-01-02", "BLOCKED", "booking", ""))

	h, err := repo.GetByID(id)
	require.NoError(t, err)

	assert.Equal(t, "Hillside", h.Title)
	require.Len(t, h.Rooms, 1)
	assert.Equal(t, roomID, h.Rooms[0].ID)
	assert.Equal(t, models.TextArray{"wifi", "balcony"}, h.Rooms[0].Amenities)
	require.Len(t, h.Availability, 2)
	assert.Equal(t, "2025-01-01", h.Availability[0].Date)
	assert.Equal(t, "booking", h.Availability[1].Source)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHomestayRepository_GetByIDNotFound(t *testing.T) {
	repo, mock, cleanup := setupHomestayRepositoryTest(t)
	defer cleanup()

	id := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM homestays WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	h, err := repo.GetByID(id)
	assert.Nil(t, h)
	assert.ErrorIs(t, err, ErrHomestayNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHomestayRepository_SlugExists(t *testing.T) {
	repo, mock, cleanup := setupHomestayRepositoryTest(t)
	defer cleanup()

	self := uuid.New()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("hillside", self).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.SlugExists("hillside", self)
	require.NoError(t, err)
	assert.True(t, exists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHomestayRepository_Create(t *testing.T) {
	repo, mock, cleanup := setupHomestayRepositoryTest(t)
	defer cleanup()

	now := time.Now()
	h := &models.Homestay{
		Title:  "Lakeside",
		Slug:   "lakeside",
		Status: models.HomestayStatusDraft,
		Rooms: []models.HomestayRoom{
			{Slug: "twin-1", Name: "Twin", Quantity: 1},
		},
		Availability: []models.AvailabilityDay{
			{Date: "2025-03-01", Status: models.AvailabilityStatusBlocked, Source: models.AvailabilitySourceManual},
		},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO homestays`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectQuery(`INSERT INTO homestay_rooms`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec(`INSERT INTO homestay_availability`).
		WithArgs(sqlmock.AnyArg(), "2025-03-01", "BLOCKED", "manual", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Create(h)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, h.ID)
	assert.NotEqual(t, uuid.Nil, h.Rooms[0].ID)
	assert.Equal(t, h.ID, h.Rooms[0].HomestayID)
	assert.Equal(t, 1, h.Rooms[0].Position)
	assert.Equal(t, now, h.CreatedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHomestayRepository_CreateDuplicateSlug(t *testing.T) {
	repo, mock, cleanup := setupHomestayRepositoryTest(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO homestays`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := repo.Create(&models.Homestay{Title: "Lakeside", Slug: "lakeside"})
	assert.ErrorIs(t, err, ErrDuplicateSlug)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHomestayRepository_UpdateNotFound(t *testing.T) {
	repo, mock, cleanup := setupHomestayRepositoryTest(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE homestays SET`).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Update(&models.Homestay{ID: uuid.New(), Title: "Gone", Slug: "gone"})
	assert.ErrorIs(t, err, ErrHomestayNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHomestayRepository_UpdateReplacesRoomsAndManualRows(t *testing.T) {
	repo, mock, cleanup := setupHomestayRepositoryTest(t)
	defer cleanup()

	now := time.Now()
	keptRoom := uuid.New()
	h := &models.Homestay{
		ID:    uuid.New(),
		Title: "Hillside",
		Slug:  "hillside",
		Rooms: []models.HomestayRoom{
			{ID: keptRoom, Slug: "garden-1", Name: "Garden"},
			{Slug: "loft-2", Name: "Loft"},
		},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE homestays SET`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec(`DELETE FROM homestay_rooms`).
		WithArgs(h.ID, pq.StringArray{keptRoom.String()}).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO homestay_rooms`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectQuery(`INSERT INTO homestay_rooms`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec(`DELETE FROM homestay_availability`).
		WithArgs(h.ID, models.AvailabilitySourceManual).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	require.NoError(t, repo.Update(h))
	assert.Equal(t, keptRoom, h.Rooms[0].ID)
	assert.Equal(t, 2, h.Rooms[1].Position)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHomestayRepository_Delete(t *testing.T) {
	repo, mock, cleanup := setupHomestayRepositoryTest(t)
	defer cleanup()

	id := uuid.New()
	mock.ExpectExec(`DELETE FROM homestays WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM homestays WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(id))
	assert.ErrorIs(t, repo.Delete(id), ErrHomestayNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHomestayRepository_PurgeAvailabilityBefore(t *testing.T) {
	repo, mock, cleanup := setupHomestayRepositoryTest(t)
	defer cleanup()

	cutoff := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	mock.ExpectExec(`DELETE FROM homestay_availability WHERE date < \$1`).
		WithArgs("2025-01-15").
		WillReturnResult(sqlmock.NewResult(0, 12))

	purged, err := repo.PurgeAvailabilityBefore(cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(12), purged)

	assert.NoError(t, mock.ExpectationsWereMet())
}
