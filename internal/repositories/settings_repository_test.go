package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var settingsRowColumns = []string{
	"company_name", "work_start", "work_end", "max_check_in_time", "min_working_hours", "allow_remote",
	"office_lat", "office_lng", "office_radius", "office_address", "updated_at",
}

func TestSettingsGetKeepsConcurrentSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewSettingsRepository(db)

	// first read finds nothing; an admin save lands before the defaults insert,
	// so the insert is a no-op and the re-read returns the admin's row
	mock.ExpectQuery("FROM settings WHERE id = 1").
		WillReturnRows(sqlmock.NewRows(settingsRowColumns))
	mock.ExpectExec("ON CONFLICT \\(id\\) DO NOTHING").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM settings WHERE id = 1").
		WillReturnRows(sqlmock.NewRows(settingsRowColumns).AddRow(
			"Acme", "08:00", "16:00", "09:00", 7.5, true,
			1.0, 2.0, 50.0, "HQ", time.Now(),
		))

	st, err := repo.Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if st.CompanyName != "Acme" || st.WorkingHours.Start != "08:00" || !st.AttendanceRules.AllowRemote {
		t.Fatalf("admin settings overwritten: %+v", st)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSettingsGetExistingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM settings WHERE id = 1").
		WillReturnRows(sqlmock.NewRows(settingsRowColumns).AddRow(
			"PT. Perusahaan Contoh", "09:00", "17:00", "10:00", 8.0, false,
			-6.2088, 106.8456, 100.0, "Jakarta, Indonesia", time.Now(),
		))

	st, err := NewSettingsRepository(db).Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if st.OfficeLocation.Radius != 100 {
		t.Fatalf("unexpected settings %+v", st)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
